package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/arsya371/apologyhub/internal/api/handlers"
	"github.com/arsya371/apologyhub/internal/api/middleware"
	"github.com/arsya371/apologyhub/internal/config"
	"github.com/arsya371/apologyhub/internal/guard"
	"github.com/arsya371/apologyhub/internal/metrics"
	"github.com/arsya371/apologyhub/internal/models"
	"github.com/arsya371/apologyhub/internal/services"
)

// Register wires up API routes and performs automatic migrations. The guard
// is constructed by the caller so the scheduler and seed tooling can share
// the same service instances.
func Register(router *gin.Engine, db *gorm.DB, cfg config.Config, g *guard.Guard) error {
	if err := db.AutoMigrate(
		&models.Apology{},
		&models.BlockedIP{},
		&models.AllowedIP{},
		&models.SecurityLog{},
		&models.User{},
		&models.Setting{},
		&models.ProfanityWord{},
		&models.ActivityLog{},
		&models.DailyStat{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	registry := prometheus.NewRegistry()
	metrics.Register(registry)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	router.GET("/api/v1/health", handlers.HealthHandler)

	apologyService := services.NewApologyService(db)
	moderationService := services.NewModerationService(db)
	settingsService := services.NewSettingsService(db)
	analyticsService := services.NewAnalyticsService(db)
	turnstileService := services.NewTurnstileService(cfg.TurnstileSecret)
	authService := services.NewAuthService(db, cfg.JWTSecret)

	apologyHandler := handlers.NewApologyHandler(apologyService, moderationService, settingsService, analyticsService, turnstileService, g)
	securityHandler := handlers.NewSecurityHandler(g)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	profanityHandler := handlers.NewProfanityHandler(moderationService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	authHandler := handlers.NewAuthHandler(authService)

	api := router.Group("/api/v1")

	// Public reads are shielded from bots and persisted blocks. The write
	// path additionally feeds the suspicion ledger; the submission quota
	// itself is enforced inside the create handler.
	public := api.Group("/")
	public.Use(g.Middleware(guard.Options{
		CheckBlocked: true,
		CheckBots:    true,
	}))
	apologyHandler.RegisterPublicReadRoutes(public)

	api.POST("/apologies", g.Middleware(guard.Options{
		CheckBlocked:    true,
		CheckSuspicious: true,
		CheckBots:       true,
		LogRequest:      true,
	}), apologyHandler.Create)

	// Admin login is shielded from bots and blocks but exempt from the
	// suspicion ledger so a locked-out operator can still reach it.
	api.POST("/auth/login", g.Middleware(guard.Options{
		CheckBlocked: true,
		CheckBots:    true,
	}), authHandler.Login)

	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(authService))
	{
		admin.GET("/auth/me", authHandler.Me)
		apologyHandler.RegisterAdminRoutes(admin)
		securityHandler.RegisterRoutes(admin)
		settingsHandler.RegisterRoutes(admin)
		profanityHandler.RegisterRoutes(admin)
		analyticsHandler.RegisterRoutes(admin)
	}

	return nil
}
