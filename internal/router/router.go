package router

import (
	"time"

	"cabinetcpq/internal/config"
	"cabinetcpq/internal/handler"
	"cabinetcpq/internal/infra"
	"cabinetcpq/internal/middleware"
	"cabinetcpq/internal/repository"
	"cabinetcpq/internal/service"
	"cabinetcpq/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine plus the
// dispatcher the worker pool shares with the HTTP layer.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, directoryCB *infra.CircuitBreaker) (*gin.Engine, *worker.Dispatcher) {
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

	// ── Infrastructure ───────────────────────────────────────────────────────
	directoryClient := infra.NewDirectoryClient(cfg.DirectoryURL)

	approvalThreshold, err := decimal.NewFromString(cfg.ApprovalThreshold)
	if err != nil {
		approvalThreshold = decimal.NewFromInt(10000)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	customerRepo := repository.NewCustomerRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	catalogSvc := service.NewCatalogService(catalogRepo, rdb, time.Duration(cfg.CatalogCacheTTLSeconds)*time.Second)
	customerSvc := service.NewCustomerService(customerRepo, directoryClient, directoryCB)
	quoteSvc := service.NewQuoteService(quoteRepo, customerRepo, catalogSvc, dispatcher, approvalThreshold)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	catalogH := handler.NewCatalogHandler(catalogSvc)
	customersH := handler.NewCustomersHandler(customerSvc)
	quotesH := handler.NewQuotesHandler(quoteSvc, cfg.PDFStoragePath)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, directoryCB))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	{
		anyRole := middleware.RequireRole("vendedor", "supervisor", "administrador")

		// Quotes — vendedores build them; approval actions need supervisors.
		quotes := v1.Group("/quotes", anyRole)
		{
			quotes.POST("", quotesH.Create)
			quotes.GET("", quotesH.List)
			quotes.GET("/:id", quotesH.Get)
			quotes.POST("/:id/items", quotesH.AddItem)
			quotes.DELETE("/:id/items/:itemId", quotesH.RemoveItem)
			quotes.PUT("/:id/items/:itemId/quantity", quotesH.SetQuantity)
			quotes.POST("/:id/items/:itemId/processings", quotesH.ApplyProcessing)
			quotes.DELETE("/:id/items/:itemId/processings/:processingId", quotesH.RemoveProcessing)
			quotes.GET("/:id/items/:itemId/available-processings", quotesH.AvailableProcessings)
			quotes.POST("/:id/rooms", quotesH.AddRoom)
			quotes.PUT("/:id/rooms/:roomId/processings", quotesH.SetRoomProcessings)
			quotes.PUT("/:id/discount", quotesH.SetOrderDiscount)
			quotes.GET("/:id/approvals", quotesH.ApprovalHistory)
			quotes.POST("/:id/submit", quotesH.Submit)
			quotes.POST("/:id/send", quotesH.Send)
			quotes.POST("/:id/accept", quotesH.Accept)
			quotes.GET("/:id/pdf", quotesH.DownloadPDF)
		}
		v1.POST("/quotes/:id/approve", middleware.RequireRole("supervisor", "administrador"), quotesH.Approve)
		v1.POST("/quotes/:id/reject", middleware.RequireRole("supervisor", "administrador"), quotesH.Reject)

		// Customers — anyone can read/sync
		customers := v1.Group("/customers", anyRole)
		{
			customers.POST("/sync/:directoryId", customersH.Sync)
			customers.GET("", customersH.List)
			customers.GET("/:id", customersH.Get)
		}

		// Catalog — all authenticated can read, administrador writes
		catalogRead := v1.Group("/catalog", anyRole)
		{
			catalogRead.GET("/products", catalogH.ListProducts)
			catalogRead.GET("/products/:id", catalogH.GetProduct)
			catalogRead.GET("/processings", catalogH.ListProcessings)
			catalogRead.GET("/rules", catalogH.ListRules)
			catalogRead.GET("/dependencies", catalogH.ListDependencies)
		}
		catalogWrite := v1.Group("/catalog", middleware.RequireRole("administrador"))
		{
			catalogWrite.POST("/products", catalogH.CreateProduct)
			catalogWrite.PUT("/products/:id", catalogH.UpdateProduct)
			catalogWrite.DELETE("/products/:id", catalogH.DeactivateProduct)
			catalogWrite.POST("/processings", catalogH.CreateProcessing)
			catalogWrite.DELETE("/processings/:id", catalogH.DeactivateProcessing)
			catalogWrite.POST("/rules", catalogH.CreateRule)
			catalogWrite.DELETE("/rules/:id", catalogH.DeleteRule)
			catalogWrite.POST("/dependencies", catalogH.CreateDependency)
			catalogWrite.DELETE("/dependencies/:id", catalogH.DeleteDependency)
		}

		// Users — administrador only
		users := v1.Group("/users", middleware.RequireRole("administrador"))
		{
			users.POST("", authH.CreateUser)
			users.GET("", authH.ListUsers)
			users.PUT("/:id", authH.UpdateUser)
			users.DELETE("/:id", authH.DeactivateUser)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r, dispatcher
}
