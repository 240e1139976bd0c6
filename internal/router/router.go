package router

import (
	"github.com/psholiveira/barber-system/internal/config"
	"github.com/psholiveira/barber-system/internal/handler"
	"github.com/psholiveira/barber-system/internal/infra"
	"github.com/psholiveira/barber-system/internal/metrics"
	"github.com/psholiveira/barber-system/internal/middleware"
	"github.com/psholiveira/barber-system/internal/model"
	"github.com/psholiveira/barber-system/internal/repository"
	"github.com/psholiveira/barber-system/internal/service"
	"github.com/psholiveira/barber-system/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil: the catalog cache is skipped, rate limit counters stay in
// memory and bulk recalculation answers 503.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, m *metrics.Metrics) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	limitStore := middleware.NewLimiterStore(rdb)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.Metrics(m))
	r.Use(middleware.RateLimiter(limitStore, "api", cfg.RateLimit, "Muitas requisições. Tente novamente em instantes."))

	// ── Infrastructure ───────────────────────────────────────────────────────
	cache := infra.NewCache(rdb, infra.DefaultBreakerConfig())
	loc := cfg.Location()

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	serviceRepo := repository.NewServiceRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	recordRepo := repository.NewServiceRecordRepository(db)
	cashRepo := repository.NewCashRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	commissionRepo := repository.NewCommissionRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	catalogSvc := service.NewCatalogService(serviceRepo, cache, cfg.CatalogCacheTTL, m)
	customerSvc := service.NewCustomerService(customerRepo)
	appointmentSvc := service.NewAppointmentService(appointmentRepo, customerRepo, serviceRepo, loc)
	commissionSvc := service.NewCommissionService(commissionRepo, serviceRepo, recordRepo)
	cashSvc := service.NewCashService(cashRepo, m)
	saleSvc := service.NewSaleService(cashRepo, paymentRepo, appointmentRepo, commissionSvc, m)
	recordSvc := service.NewRecordService(recordRepo, serviceRepo, appointmentRepo, userRepo, saleSvc, m, cfg.PerformedAtSkew, loc)
	paymentSvc := service.NewPaymentService(paymentRepo)
	dashboardSvc := service.NewDashboardService(recordRepo, paymentRepo, commissionRepo, appointmentSvc, loc)

	// Bulk recalculation is processed by the worker pool started in cmd/server
	dispatcher := worker.NewDispatcher(rdb)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	usersH := handler.NewUsersHandler(authSvc)
	cashH := handler.NewCashHandler(cashSvc)
	recordsH := handler.NewRecordsHandler(recordSvc)
	paymentsH := handler.NewPaymentsHandler(paymentSvc)
	commissionsH := handler.NewCommissionsHandler(commissionSvc, dispatcher)
	servicesH := handler.NewServicesHandler(catalogSvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	appointmentsH := handler.NewAppointmentsHandler(appointmentSvc)
	dashboardH := handler.NewDashboardHandler(dashboardSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, cache))
	r.GET("/metrics", gin.WrapH(m.Handler()))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(limitStore, cfg.LoginRateLimit), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		v1.GET("/me", authH.Me)

		cash := v1.Group("/cash", middleware.RequireCapability(model.CapManageCash))
		{
			cash.POST("/sessions", cashH.Open)
			cash.GET("/sessions", cashH.List)
			cash.GET("/sessions/open", cashH.GetOpen)
			cash.GET("/sessions/:id", cashH.Report)
			cash.POST("/sessions/:id/close", cashH.Close)
			cash.GET("/sessions/:id/entries", cashH.ListEntries)
			cash.POST("/entries", cashH.RecordEntry)
			cash.GET("/summary", cashH.Summary)
		}

		v1.GET("/payments", middleware.RequireCapability(model.CapViewAllFinance), paymentsH.List)

		rules := v1.Group("/commission-rules", middleware.RequireCapability(model.CapManageCatalog))
		{
			rules.GET("", commissionsH.ListRules)
			rules.POST("", commissionsH.SaveRule)
			rules.PUT("/:id", commissionsH.UpdateRule)
			rules.DELETE("/:id", commissionsH.DeactivateRule)
		}

		// Barbers see their own commissions; the service scopes the query
		v1.GET("/commissions", commissionsH.List)
		v1.POST("/commissions/preview", commissionsH.Preview)
		v1.POST("/commissions/recalculate", middleware.RequireCapability(model.CapViewAllFinance), commissionsH.RecalculateRange)

		records := v1.Group("/service-records", middleware.RequireCapability(model.CapRegisterSale))
		{
			records.POST("", recordsH.Create)
			records.GET("", recordsH.List)
			records.GET("/today", recordsH.Today)
			records.GET("/:id", recordsH.Get)
		}
		v1.POST("/service-records/:id/commission", middleware.RequireCapability(model.CapViewAllFinance), commissionsH.Recalculate)

		// Services: everyone can read, catalog:manage can write
		v1.GET("/services", servicesH.List)
		services := v1.Group("/services", middleware.RequireCapability(model.CapManageCatalog))
		{
			services.POST("", servicesH.Create)
			services.PUT("/:id", servicesH.Update)
		}

		customers := v1.Group("/customers")
		{
			customers.GET("", customersH.Search)
			customers.POST("", customersH.Create)
			customers.GET("/:id", customersH.Get)
			customers.PUT("/:id", customersH.Update)
		}

		appointments := v1.Group("/appointments")
		{
			appointments.GET("", appointmentsH.List)
			appointments.POST("", appointmentsH.Create)
			appointments.PATCH("/:id/status", appointmentsH.SetStatus)
		}

		v1.GET("/dashboard/summary", dashboardH.Summary)
		v1.GET("/dashboard/revenue/by-month", dashboardH.RevenueByMonth)

		users := v1.Group("/users", middleware.RequireCapability(model.CapManageUsers))
		{
			users.POST("", usersH.Create)
			users.GET("", usersH.List)
			users.PUT("/:id", usersH.Update)
		}
	}

	// Swagger UI: only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
