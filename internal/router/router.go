package router

import (
	"time"

	"github.com/EdinMesanovic/postinfo/internal/config"
	"github.com/EdinMesanovic/postinfo/internal/handler"
	"github.com/EdinMesanovic/postinfo/internal/middleware"
	"github.com/EdinMesanovic/postinfo/internal/repository"
	"github.com/EdinMesanovic/postinfo/internal/service"
	"github.com/EdinMesanovic/postinfo/internal/token"
	"github.com/EdinMesanovic/postinfo/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.Metrics())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Infrastructure ───────────────────────────────────────────────────────
	tokens := token.NewIssuer(
		cfg.JWTAccessSecret,
		cfg.JWTRefreshSecret,
		time.Duration(cfg.AccessTTLMinutes)*time.Minute,
		time.Duration(cfg.RefreshTTLDays)*24*time.Hour,
	)
	dispatcher := worker.NewDispatcher(rdb)

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	shipmentRepo := repository.NewShipmentRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, tokens)
	shipmentSvc := service.NewShipmentService(shipmentRepo, dispatcher, cfg)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	shipmentsH := handler.NewShipmentsHandler(shipmentSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", middleware.LoginRateLimiter(), authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(tokens)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.POST("/auth/logout", authH.Logout)
		v1.GET("/auth/me", authH.Me)

		// Scan endpoint — drivers (admins may scan too, e.g. during testing at the LDC)
		v1.POST("/shipments/scan/pickup", middleware.RequireRole("DRIVER", "ADMIN"), shipmentsH.ScanPickup)

		// Shipment management — admin only
		shipments := v1.Group("/shipments", middleware.RequireRole("ADMIN"))
		{
			shipments.POST("", shipmentsH.Create)
			shipments.GET("", shipmentsH.List)
			shipments.GET("/:id", shipmentsH.Get)
			shipments.GET("/:id/label", shipmentsH.Label)
		}

		users := v1.Group("/users", middleware.RequireRole("ADMIN"))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.DELETE("/:id", usersH.Disable)
			users.PATCH("/:id/reactivate", usersH.Reactivate)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
