package router

import (
	"time"

	"github.com/hummafaranpilot-stack/metatrim/internal/config"
	"github.com/hummafaranpilot-stack/metatrim/internal/handler"
	"github.com/hummafaranpilot-stack/metatrim/internal/infra"
	"github.com/hummafaranpilot-stack/metatrim/internal/middleware"
	"github.com/hummafaranpilot-stack/metatrim/internal/pricing"
	"github.com/hummafaranpilot-stack/metatrim/internal/repository"
	"github.com/hummafaranpilot-stack/metatrim/internal/service"
	"github.com/hummafaranpilot-stack/metatrim/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, ipqsCB *infra.CircuitBreaker) *gin.Engine {
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
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Pricing core ─────────────────────────────────────────────────────────
	normalizer := pricing.NewNormalizer()
	calc := calculatorFromConfig(cfg)

	// ── Repositories ─────────────────────────────────────────────────────────
	orderRepo := repository.NewOrderRepository(db)
	eventRepo := repository.NewEventRepository(db)
	pricingRepo := repository.NewPricingRepository(db)
	productRepo := repository.NewProductRepository(db)
	webhookLogRepo := repository.NewWebhookLogRepository(db)
	statsRepo := repository.NewStatsRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	dispatcher := worker.NewDispatcher(rdb)

	authSvc := service.NewAuthService(cfg)
	pricingSvc := service.NewPricingService(pricingRepo, rdb)
	productSvc := service.NewProductService(productRepo)
	orderSvc := service.NewOrderService(orderRepo, eventRepo, pricingSvc, normalizer, calc, dispatcher)
	recalcSvc := service.NewRecalcService(orderRepo, pricingSvc, normalizer, calc)
	importSvc := service.NewImportService(orderRepo, pricingSvc, recalcSvc)
	statsSvc := service.NewStatsService(statsRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	webhooksH := handler.NewWebhooksHandler(orderSvc, productSvc, webhookLogRepo)
	pricingH := handler.NewPricingHandler(pricingSvc)
	ordersH := handler.NewOrdersHandler(orderSvc, importSvc, recalcSvc)
	statsH := handler.NewStatsHandler(statsSvc)
	productsH := handler.NewProductsHandler(productSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, ipqsCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
	}

	// Webhook intake — authenticated by per-product token, not JWT
	r.POST("/v1/webhooks/:type", webhooksH.Receive)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		prc := v1.Group("/pricing")
		{
			prc.POST("", pricingH.Create)
			prc.GET("", pricingH.List)
			prc.GET("/base-price", pricingH.BasePrice)
			prc.GET("/:id", pricingH.Get)
			prc.PUT("/:id", pricingH.Update)
			prc.PATCH("/:id/active", pricingH.SetActive)
			prc.DELETE("/:id", pricingH.Delete)
		}

		ord := v1.Group("/orders")
		{
			ord.GET("", ordersH.List)
			ord.POST("/import-csv", ordersH.ImportCSV)
			ord.POST("/recalculate", ordersH.Recalculate)
			ord.GET("/:id", ordersH.Get)
			ord.DELETE("/:id", ordersH.Delete)
		}

		sts := v1.Group("/stats")
		{
			sts.GET("/dashboard", statsH.Dashboard)
			sts.GET("/revenue-by-day", statsH.RevenueByDay)
			sts.GET("/top-products", statsH.TopProducts)
			sts.GET("/recent-activity", statsH.RecentActivity)
		}

		v1.GET("/webhooks/logs", webhooksH.Logs)

		prd := v1.Group("/products")
		{
			prd.POST("", productsH.Create)
			prd.GET("", productsH.List)
			prd.PATCH("/:id/active", productsH.SetActive)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}

// calculatorFromConfig parses the fee rates from config, keeping the
// platform defaults when a rate is absent or malformed.
func calculatorFromConfig(cfg *config.Config) pricing.Calculator {
	calc := pricing.NewCalculator()
	if rate, err := decimal.NewFromString(cfg.ProcessingFeeRate); err == nil && rate.IsPositive() {
		calc.ProcessingFeeRate = rate
	}
	if rate, err := decimal.NewFromString(cfg.AllowanceHoldRate); err == nil && rate.IsPositive() {
		calc.AllowanceHoldRate = rate
	}
	return calc
}
