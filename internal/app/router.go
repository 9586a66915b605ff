package app

import (
	"html/template"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"gepay-web/internal/handlers"
	"gepay-web/internal/metrics"
	"gepay-web/internal/middleware"
	"gepay-web/internal/services"
	"gepay-web/web"
)

func (app *App) Router() *gin.Engine {
	cfg := app.Config

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tmpl, err := web.Templates()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load templates")
	}

	return NewRouter(Deps{
		Store:     app.Store,
		Limiter:   app.Limiter,
		API:       app.API,
		Notifier:  app.Notifier,
		JWT:       services.NewJWTService(cfg),
		Templates: tmpl,
		Options: Options{
			BotToken:           cfg.BotToken,
			BotUsername:        cfg.BotUsername,
			AuthMaxAge:         cfg.AuthMaxAge,
			CookieSecure:       cfg.CookieSecure,
			ProgressSteps:      cfg.ProgressSteps,
			ProgressInterval:   cfg.ProgressInterval,
			StatusPollInterval: cfg.StatusPollInterval,
			StatusPollTimeout:  cfg.StatusPollTimeout,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
			CORSOrigins:        cfg.CORSOrigins,
		},
	})
}

// RemoteAPI is the set of remote functions the shell calls.
type RemoteAPI interface {
	services.AuthAPI
	services.TransactionAPI
	services.SupportAPI
}

type Deps struct {
	Store     Store
	Limiter   middleware.RateLimiter
	API       RemoteAPI
	Notifier  services.OperatorNotifier
	JWT       *services.JWTService
	Templates *template.Template
	Options   Options
}

type Options struct {
	BotToken           string
	BotUsername        string
	AuthMaxAge         time.Duration
	CookieSecure       bool
	ProgressSteps      int
	ProgressInterval   time.Duration
	StatusPollInterval time.Duration
	StatusPollTimeout  time.Duration
	RateLimitPerMinute int
	CORSOrigins        []string
}

func NewRouter(deps Deps) *gin.Engine {
	opts := deps.Options

	progress := services.NewProgress(opts.ProgressSteps, opts.ProgressInterval)
	orders := services.NewOrderService(deps.API, progress, deps.Notifier)
	history := services.NewHistoryService(deps.API)
	support := services.NewSupportService(deps.API, deps.Notifier)
	watcher := services.NewStatusWatcher(deps.API, opts.StatusPollInterval, opts.StatusPollTimeout)
	authenticator := services.NewAuthenticator(deps.API, deps.Store)

	hub := handlers.NewWebSocketHub()
	pageHandler := handlers.NewPageHandler(orders, history, support, opts.BotUsername)
	authHandler := handlers.NewAuthHandler(authenticator, deps.JWT, hub, pageHandler, handlers.AuthOptions{
		BotToken:     opts.BotToken,
		MaxAge:       opts.AuthMaxAge,
		CookieSecure: opts.CookieSecure,
	})
	userHandler := handlers.NewUserHandler(orders, history, support)
	wsHandler := handlers.NewWebSocketHandler(orders, watcher, hub)
	healthHandler := handlers.NewHealthHandler(deps.Store)

	router := gin.New()
	router.SetHTMLTemplate(deps.Templates)

	router.Use(middleware.RequestID())
	router.Use(gin.Recovery())
	router.Use(middleware.Metrics())
	router.Use(middleware.SessionMiddleware(deps.JWT, deps.Store))
	router.Use(middleware.Logger())

	router.StaticFS("/static", web.Static())

	router.GET("/health", healthHandler.Health)
	router.GET("/live", healthHandler.Live)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	limitPage := func(action, tab string) gin.HandlerFunc {
		return middleware.RateLimitPageMiddleware(deps.Limiter, action, opts.RateLimitPerMinute, pageHandler.RateLimited(tab))
	}

	router.GET("/", pageHandler.Home)
	router.GET("/topup", pageHandler.TopUp)
	router.POST("/topup", limitPage("topup", handlers.TabTopUp), pageHandler.SubmitTopUp)
	router.GET("/region", pageHandler.Region)
	router.POST("/region", limitPage("region", handlers.TabRegion), pageHandler.SubmitRegion)
	router.GET("/support", pageHandler.Support)
	router.POST("/support", limitPage("support", handlers.TabSupport), pageHandler.SendSupport)
	router.GET("/profile", pageHandler.Profile)

	router.GET("/auth/telegram", authHandler.TelegramCallback)
	router.POST("/logout", authHandler.Logout)

	corsConfig := cors.DefaultConfig()
	if containsWildcard(opts.CORSOrigins) {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = opts.CORSOrigins
		corsConfig.AllowCredentials = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept", "X-Request-ID"}
	allowCORS := cors.New(corsConfig)

	router.POST("/auth/webapp", allowCORS, authHandler.WebApp)

	protected := router.Group("/api")
	protected.Use(allowCORS)
	protected.Use(middleware.RequireUser())
	{
		protected.GET("/me", userHandler.GetCurrentUser)
		protected.GET("/transactions", userHandler.GetTransactions)
		protected.POST("/transactions", middleware.RateLimitMiddleware(deps.Limiter, "transactions", opts.RateLimitPerMinute), userHandler.CreateTransaction)
		protected.GET("/support", userHandler.GetSupportMessages)
		protected.POST("/support", middleware.RateLimitMiddleware(deps.Limiter, "support", opts.RateLimitPerMinute), userHandler.SendSupportMessage)
	}

	router.GET("/ws", middleware.RequireUser(), wsHandler.HandleWebSocket)

	return router
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return len(origins) == 0
}
