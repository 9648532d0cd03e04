package router

import (
	"time"

	"gameflix/config"
	"gameflix/handlers"
	"gameflix/middleware"
	"gameflix/monitoring"
	"gameflix/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// New builds the HTTP engine. db.DB must be set before it serves requests.
// Closing stop ends the rate limiter's background reset.
func New(cfg *config.Config, stop <-chan struct{}) *gin.Engine {
	if cfg.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	}

	monitoring.InitMetrics()
	handlers.Configure(handlers.Settings{
		Tokens:           utils.NewTokenManager(cfg.TokenSecret, cfg.TokenTTL),
		ExposeResetToken: cfg.ExposeResetToken,
	})

	r := gin.New()
	r.HandleMethodNotAllowed = true
	// X-Forwarded-For is honored only from configured proxies.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		utils.Log.WithError(err).Warn("Invalid trusted proxies, using the remote address")
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(middleware.Recovery(!cfg.IsRelease()))
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorLogger())
	r.Use(monitoring.PrometheusMiddleware())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.RemovePoweredBy())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	r.NoRoute(handlers.NotFound)
	r.NoMethod(handlers.MethodNotAllowed)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	limiter.StartCleanup(10*time.Minute, stop)
	limited := limiter.Handler()
	auth := handlers.AuthMiddleware()

	r.GET("/health", handlers.Health)
	r.GET("/metrics", monitoring.PrometheusHandler())

	// Accounts
	r.POST("/developers", handlers.RegisterDeveloper)
	r.POST("/customers", handlers.RegisterCustomer)
	r.POST("/login", limited, handlers.Login)
	r.GET("/users", auth, handlers.GetCurrentUser)
	r.POST("/users/password-reset-request", limited, handlers.RequestPasswordReset)
	r.POST("/users/password-reset", limited, handlers.ResetPassword)

	// Catalog
	r.GET("/categories", handlers.GetCategories)
	r.GET("/games", handlers.ListGames)
	r.GET("/games/search", handlers.SearchGames)
	r.GET("/games/:id", handlers.GetGame)
	r.POST("/games/:id/views", handlers.IncrementViews)
	r.GET("/games/:id/reviews", handlers.ListReviews)

	protected := r.Group("/", auth)
	{
		protected.POST("/games", handlers.CreateGame)
		protected.PUT("/games/:id", handlers.UpdateGame)
		protected.DELETE("/games/:id", handlers.DeleteGame)
		protected.PATCH("/games/:id/status", handlers.UpdateGameStatus)
		protected.POST("/games/:id/reviews", handlers.CreateReview)

		protected.GET("/developers/:id/games", handlers.ListDeveloperGames)
		protected.GET("/developers/:id/games/stats", handlers.DeveloperGameStats)
		protected.GET("/developers/:id/games/summary", handlers.DeveloperGamesSummary)

		protected.GET("/customers/:id/wishlist", handlers.GetWishlist)
		protected.POST("/customers/:id/wishlist", handlers.AddToWishlist)
		protected.DELETE("/customers/:id/wishlist/:gameId", handlers.RemoveFromWishlist)
		protected.GET("/customers/:id/games/purchases", handlers.ListPurchases)
		protected.POST("/customers/:id/games/purchases", handlers.PurchaseGame)
	}

	return r
}

// corsConfig allows credentials only for an explicit origin list.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length", "X-RateLimit-Limit"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
