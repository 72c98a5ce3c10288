// internal/router/router.go
package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/javajoker/ifm-backend/internal/config"
	"github.com/javajoker/ifm-backend/internal/handlers"
	"github.com/javajoker/ifm-backend/internal/metrics"
	"github.com/javajoker/ifm-backend/internal/middleware"
	"github.com/javajoker/ifm-backend/internal/models"
	"github.com/javajoker/ifm-backend/internal/services"
	"github.com/javajoker/ifm-backend/internal/utils"
)

// Initialize wires services, handlers and routes. Collectors are registered
// on reg, which also backs the metrics endpoint.
func Initialize(db *gorm.DB, cfg *config.Config, reg *prometheus.Registry) *gin.Engine {
	m := metrics.New(reg)
	reg.MustRegister(collectors.NewGoCollector())

	// Initialize services
	authService := services.NewAuthService(db, cfg.JWT, m)
	dealService := services.NewDealService(db, m)
	resaleService := services.NewResaleService(db, m)
	catalogService := services.NewCatalogService(db)
	ideaService := services.NewIdeaService(db)
	userService := services.NewUserService(db)
	adminService := services.NewAdminService(db)

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authService)
	dealHandler := handlers.NewDealHandler(dealService)
	resaleHandler := handlers.NewResaleHandler(resaleService)
	ideaHandler := handlers.NewIdeaHandler(ideaService, catalogService)
	userHandler := handlers.NewUserHandler(userService)
	adminHandler := handlers.NewAdminHandler(adminService, resaleService)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.I18nMiddleware())
	r.Use(m.Middleware())
	if cfg.RateLimit.RequestsPerSecond > 0 {
		r.Use(middleware.NewRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst).Middleware())
	}

	r.NoRoute(func(c *gin.Context) {
		utils.NotFoundResponse(c, "")
	})

	r.GET("/health", healthHandler.Check)
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	}

	authRequired := middleware.AuthRequired(authService)
	buyerOnly := middleware.RequireRole(models.RoleBuyer)
	sellerOnly := middleware.RequireRole(models.RoleSeller)

	// Authentication routes
	auth := r.Group("/auth")
	if cfg.RateLimit.AuthPerMinute > 0 {
		perMinute := cfg.RateLimit.AuthPerMinute
		auth.Use(middleware.NewRateLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute).Middleware())
	}
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", authRequired, authHandler.GetProfile)
	}

	r.POST("/deals", authRequired, buyerOnly, dealHandler.CreateDeal)
	r.GET("/me/deals", authRequired, buyerOnly, userHandler.GetMyDeals)

	// Idea routes
	ideas := r.Group("/ideas")
	{
		ideas.GET("/recommended", authRequired, buyerOnly, ideaHandler.GetRecommended)
		ideas.GET("/mine", authRequired, sellerOnly, ideaHandler.GetMyIdeas)
		ideas.GET("/:id", ideaHandler.GetIdea)

		seller := ideas.Group("")
		seller.Use(authRequired, sellerOnly)
		{
			seller.POST("", ideaHandler.CreateIdea)
			seller.PUT("/:id/status", ideaHandler.UpdateStatus)
			seller.PUT("/:id/pricing", ideaHandler.UpdatePricing)
		}
	}

	// Resale routes
	resale := r.Group("/resale")
	{
		resale.GET("/market", resaleHandler.GetMarket)
		resale.POST("/list", authRequired, resaleHandler.ListForResale)
		resale.DELETE("/list/:idea_id", authRequired, resaleHandler.WithdrawListing)
		resale.POST("/buy", authRequired, buyerOnly, resaleHandler.Buy)
	}

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(authRequired, middleware.RequireRole(models.RoleAdmin))
	{
		admin.GET("/health", adminHandler.Health)
		admin.GET("/stats", adminHandler.GetDashboardStats)
		admin.GET("/audit-logs", adminHandler.GetAuditLogs)
		admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
		admin.POST("/resale/prune", adminHandler.PruneListings)
	}

	return r
}
