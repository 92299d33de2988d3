// Package v1 provides HTTP API version 1.
package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzhttp"

	"shopledger/internal/app"
	"shopledger/internal/infrastructure/http/v1/handlers"
	"shopledger/internal/infrastructure/http/v1/middleware"
	"shopledger/pkg/logger"
)

// maxMultipartMemory bounds in-memory multipart parsing of image uploads.
const maxMultipartMemory = 8 << 20

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Services are the shop operations behind every route
	Services *app.Services

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation; defaults to Services.JWT
	JWTValidator middleware.JWTValidator

	// Checks are probed by /health/ready (database, cache)
	Checks map[string]handlers.Pinger

	// MediaDir is served under MediaURL when both are set
	MediaDir string
	MediaURL string

	// Debug switches gin into debug mode
	Debug bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}
	if cfg.JWTValidator == nil {
		cfg.JWTValidator = cfg.Services.JWT
	}

	router := gin.New()
	router.MaxMultipartMemory = maxMultipartMemory

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Checks)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	if cfg.MediaDir != "" && strings.HasPrefix(cfg.MediaURL, "/") {
		router.Static(cfg.MediaURL, cfg.MediaDir)
	}

	base := handlers.NewBaseHandler()
	v1 := router.Group("/api/v1")
	{
		registerAuthRoutes(v1, base, cfg)

		protected := v1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		registerCatalogRoutes(protected, base, cfg)
		registerCustomerRoutes(protected, base, cfg)
		registerLedgerRoutes(protected, base, cfg)
		registerCreditRoutes(protected, base, cfg)
		registerDashboardRoutes(protected, base, cfg)
		registerReportRoutes(protected, base, cfg)
	}

	return router
}

// NewHandler wraps the router with response compression.
func NewHandler(cfg RouterConfig) http.Handler {
	return gzhttp.GzipHandler(NewRouter(cfg))
}

// registerAuthRoutes registers authentication endpoints.
func registerAuthRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	authHandler := handlers.NewAuthHandler(base, cfg.Services.Auth)

	public := rg.Group("/auth")
	{
		public.POST("/register", authHandler.Register)
		public.POST("/login", authHandler.Login)
	}

	protected := rg.Group("/auth")
	protected.Use(middleware.Auth(cfg.JWTValidator))
	{
		protected.GET("/me", authHandler.Me)
	}
}

func registerCatalogRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewCatalogHandler(base, cfg.Services.Catalog)

	categories := rg.Group("/categories")
	{
		categories.GET("", h.ListCategories)
		categories.POST("", h.CreateCategory)
		categories.GET("/:id", h.GetCategory)
		categories.PUT("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
		categories.GET("/:id/path", h.CategoryPath)
		categories.GET("/:id/history", h.CategoryHistory)
		categories.POST("/:id/rollup", h.RecomputeCategoryRollup)
	}

	products := rg.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.POST("", h.CreateProduct)
		products.GET("/:id", h.GetProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
		products.POST("/:id/stock", h.AdjustStock)
		products.POST("/:id/image", h.UploadImage)
	}
}

func registerCustomerRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewCustomerHandler(base, cfg.Services.Customers, cfg.Services.Clock.Location())

	customers := rg.Group("/customers")
	{
		customers.GET("", h.List)
		customers.POST("", h.Create)
		customers.GET("/:id", h.Get)
		customers.PUT("/:id", h.Update)
		customers.DELETE("/:id", h.Delete)
		customers.POST("/:id/statistics", h.RefreshStatistics)
	}
}

func registerLedgerRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewLedgerHandler(base, cfg.Services.Ledger, cfg.Services.Clock.Location())

	sales := rg.Group("/sales")
	{
		sales.GET("", h.ListSales)
		sales.POST("", h.CreateSale)
		sales.GET("/:id", h.GetSale)
		sales.DELETE("/:id", h.DeleteSale)
		sales.POST("/:id/void", h.VoidSale)
	}

	purchases := rg.Group("/purchases")
	{
		purchases.GET("", h.ListPurchases)
		purchases.POST("", h.CreatePurchase)
		purchases.GET("/:id", h.GetPurchase)
		purchases.DELETE("/:id", h.DeletePurchase)
		purchases.POST("/:id/status", h.ChangePurchaseStatus)
	}
}

func registerCreditRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewCreditHandler(base, cfg.Services.Credit)

	debts := rg.Group("/debts")
	{
		debts.GET("", h.List)
		debts.GET("/:id", h.Get)
		debts.POST("/:id/payments", h.ApplyPayment)
		debts.POST("/:id/cancel", h.Cancel)
	}
}

func registerDashboardRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewDashboardHandler(base, cfg.Services.Dashboard)

	dashboard := rg.Group("/dashboard")
	{
		dashboard.GET("", h.Range)
		dashboard.GET("/:date", h.Get)
		dashboard.POST("/:date/recompute", h.Recompute)
	}
}

func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewReportsHandler(base, cfg.Services.Reports, cfg.Services.Clock.Location())

	reports := rg.Group("/reports")
	{
		reports.GET("/sales", h.Sales)
	}
}
