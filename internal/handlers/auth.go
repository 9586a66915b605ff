package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"gepay-web/internal/metrics"
	"gepay-web/internal/middleware"
	"gepay-web/internal/models"
	"gepay-web/internal/services"
)

type AuthHandler struct {
	auth         *services.Authenticator
	jwtService   *services.JWTService
	hub          *WebSocketHub
	pages        *PageHandler
	botToken     string
	maxAge       time.Duration
	cookieSecure bool
}

type AuthOptions struct {
	BotToken     string
	MaxAge       time.Duration
	CookieSecure bool
}

func NewAuthHandler(auth *services.Authenticator, jwtService *services.JWTService, hub *WebSocketHub, pages *PageHandler, opts AuthOptions) *AuthHandler {
	return &AuthHandler{
		auth:         auth,
		jwtService:   jwtService,
		hub:          hub,
		pages:        pages,
		botToken:     opts.BotToken,
		maxAge:       opts.MaxAge,
		cookieSecure: opts.CookieSecure,
	}
}

// TelegramCallback handles the Login Widget redirect. The widget's query
// parameters are the assertion. Without a bot token the signature is left to
// the auth function, but an unsigned callback is always refused.
func (h *AuthHandler) TelegramCallback(c *gin.Context) {
	values := c.Request.URL.Query()

	var event services.WidgetEvent
	if h.botToken != "" {
		if err := services.VerifyLoginWidget(values, h.botToken, h.maxAge, time.Now()); err != nil {
			event = services.WidgetFailed(err)
		}
	}
	if event.Err == nil {
		assertion, err := services.ParseLoginWidget(values)
		if err != nil {
			event = services.WidgetFailed(err)
		} else {
			event = services.AssertionReceived(assertion)
		}
	}

	user, token, err := h.login(c, event)
	if err != nil {
		metrics.RecordLogin("widget", "failed")
		log.Warn().Err(err).Msg("Telegram login failed")

		data := h.pages.page(c, TabHome, "")
		data.ShowAuth = true
		data.Notification = services.NotificationFor(err)
		c.HTML(http.StatusUnauthorized, TabHome, data)
		return
	}

	metrics.RecordLogin("widget", "success")
	h.setSessionCookie(c, token)
	log.Debug().Int64("user_id", user.ID).Msg("Widget login completed")
	c.Redirect(http.StatusSeeOther, "/profile")
}

type webAppLoginRequest struct {
	InitData string `json:"init_data" form:"init_data" binding:"required"`
}

// WebApp logs a Mini App user in from its init data.
func (h *AuthHandler) WebApp(c *gin.Context) {
	if h.botToken == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Mini App login is not configured"})
		return
	}

	var req webAppLoginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "init_data is required"})
		return
	}

	var event services.WidgetEvent
	assertion, err := services.AssertionFromInitData(req.InitData, h.botToken, h.maxAge)
	if err != nil {
		event = services.WidgetFailed(err)
	} else {
		event = services.AssertionReceived(assertion)
	}

	user, token, err := h.login(c, event)
	if err != nil {
		metrics.RecordLogin("webapp", "failed")
		log.Warn().Err(err).Msg("Mini App login failed")
		respondError(c, err)
		return
	}

	metrics.RecordLogin("webapp", "success")
	h.setSessionCookie(c, token)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"user":    user,
		"token":   token,
	})
}

func (h *AuthHandler) login(c *gin.Context, event services.WidgetEvent) (*models.User, string, error) {
	ctx := c.Request.Context()

	flow := services.NewAuthFlow()
	if err := flow.Begin(); err != nil {
		return nil, "", err
	}

	sessionID := models.NewSessionID()
	user, err := h.auth.Handle(ctx, flow, sessionID, event)
	if err != nil {
		return nil, "", err
	}

	if previous := middleware.SessionID(c); previous != "" {
		if err := h.auth.Logout(ctx, previous); err != nil {
			log.Warn().Err(err).Msg("Failed to drop previous session")
		}
	}

	token, err := h.jwtService.GenerateToken(user.ID, sessionID)
	if err != nil {
		h.auth.Logout(ctx, sessionID)
		return nil, "", err
	}
	return user, token, nil
}

// Logout ends the session and closes the user's live connections.
func (h *AuthHandler) Logout(c *gin.Context) {
	if sessionID := middleware.SessionID(c); sessionID != "" {
		if err := h.auth.Logout(c.Request.Context(), sessionID); err != nil {
			log.Error().Err(err).Msg("Failed to logout")
		}
	}
	if user := middleware.CurrentUser(c); user != nil {
		h.hub.Disconnect(user.ID)
	}

	h.clearSessionCookie(c)
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, token, int(h.jwtService.TTL().Seconds()), "/", "", h.cookieSecure, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", h.cookieSecure, true)
}
