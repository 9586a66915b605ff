package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"gepay-web/internal/models"
	"gepay-web/internal/services"
)

const (
	SessionCookieName = "gepay_session"

	userKey      = "user"
	userIDKey    = "user_id"
	sessionIDKey = "session_id"
)

// SessionMiddleware resolves the current user from the session cookie or a
// Bearer token. Requests without a valid session pass through anonymously.
func SessionMiddleware(jwtService *services.JWTService, store services.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := sessionToken(c)
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			log.Debug().Err(err).Msg("Ignoring invalid session token")
			c.Next()
			return
		}

		user, err := store.Load(c.Request.Context(), claims.SessionID)
		if err != nil {
			log.Error().Err(err).Str("session_id", claims.SessionID).Msg("Failed to load session")
			c.Next()
			return
		}

		c.Set(sessionIDKey, claims.SessionID)
		if user != nil && user.ID == claims.UserID {
			c.Set(userKey, user)
			c.Set(userIDKey, user.ID)
		}

		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
		return ""
	}

	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie
	}
	return ""
}

// CurrentUser returns the signed-in user or nil.
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

// SessionID returns the session named by the request's token, if any.
func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

// RequireUser rejects anonymous requests with 401.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

type RateLimiter interface {
	CheckRateLimit(ctx context.Context, userID int64, action string, limit int, window time.Duration) (bool, error)
}

// RateLimitMiddleware allows limit requests per user and minute for action.
// Anonymous requests are not counted.
func RateLimitMiddleware(limiter RateLimiter, action string, limit int) gin.HandlerFunc {
	return rateLimit(limiter, action, limit, func(c *gin.Context) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":       "Rate limit exceeded",
			"retry_after": services.TTLRateLimitWindow.Seconds(),
		})
	})
}

// RateLimitPageMiddleware is RateLimitMiddleware for form posts: a limited
// request is answered by onLimited, which renders the page.
func RateLimitPageMiddleware(limiter RateLimiter, action string, limit int, onLimited gin.HandlerFunc) gin.HandlerFunc {
	return rateLimit(limiter, action, limit, onLimited)
}

func rateLimit(limiter RateLimiter, action string, limit int, reject gin.HandlerFunc) gin.HandlerFunc {
	window := services.TTLRateLimitWindow

	return func(c *gin.Context) {
		if limiter == nil || limit <= 0 {
			c.Next()
			return
		}

		userID := c.GetInt64(userIDKey)
		if userID == 0 {
			c.Next()
			return
		}

		allowed, err := limiter.CheckRateLimit(c.Request.Context(), userID, action, limit, window)
		if err != nil {
			log.Error().Err(err).Int64("user_id", userID).Str("action", action).Msg("Rate limit check failed")
		}
		if err != nil || !allowed {
			reject(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
