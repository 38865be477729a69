package router

import (
	"time"

	"github.com/Aidanden/SIMS-sub007/internal/config"
	"github.com/Aidanden/SIMS-sub007/internal/handler"
	"github.com/Aidanden/SIMS-sub007/internal/middleware"
	"github.com/Aidanden/SIMS-sub007/internal/repository"
	"github.com/Aidanden/SIMS-sub007/internal/service"

	"github.com/gin-gonic/gin"
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
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMinute, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	companyRepo := repository.NewCompanyRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	productRepo := repository.NewProductRepository(db)
	stockRepo := repository.NewStockRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	returnRepo := repository.NewReturnRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	companySvc := service.NewCompanyService(companyRepo)
	productSvc := service.NewProductService(productRepo, stockRepo, companyRepo)
	saleSvc := service.NewSaleService(saleRepo, stockRepo, companyRepo, customerRepo, productRepo)
	purchaseSvc := service.NewPurchaseService(purchaseRepo, productRepo, stockRepo, companyRepo, supplierRepo, cfg.BaseCurrency)
	paymentSvc := service.NewPaymentService(saleRepo, purchaseRepo, returnRepo)
	returnSvc := service.NewReturnService(returnRepo, saleRepo, stockRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	companiesH := handler.NewCompaniesHandler(companySvc)
	productsH := handler.NewProductsHandler(productSvc)
	salesH := handler.NewSalesHandler(saleSvc)
	purchasesH := handler.NewPurchasesHandler(purchaseSvc)
	paymentsH := handler.NewPaymentsHandler(paymentSvc)
	returnsH := handler.NewReturnsHandler(returnSvc)
	stockH := handler.NewStockLookupHandler(productRepo, stockRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Stock lookup — read-only, cacheable, no acting scope required
	r.GET("/v1/stock/:sku", stockH.GetBySKU)

	v1 := r.Group("/v1", middleware.ActingScope())
	{
		v1.POST("/companies", companiesH.Create)
		v1.GET("/companies", companiesH.List)

		v1.POST("/products", productsH.Create)
		v1.GET("/products", productsH.List)
		v1.GET("/products/:id", productsH.Get)
		v1.PUT("/products/:id/cost", productsH.UpdateCost)
		v1.GET("/products/:id/cost-history", productsH.CostHistory)
		v1.PATCH("/products/:id/stock", productsH.AdjustStock)
		v1.GET("/products/:id/movements", stockH.Movements)

		v1.POST("/sales", salesH.Create)
		v1.POST("/sales/intercompany", salesH.CreateInterCompany)
		v1.GET("/sales", salesH.List)
		v1.GET("/sales/:id", salesH.Get)
		v1.POST("/sales/:id/approve", salesH.Approve)
		v1.POST("/sales/:id/reject", salesH.Reject)
		v1.POST("/sales/:id/settle-parent", salesH.SettleParent)

		v1.POST("/purchases", purchasesH.Create)
		v1.GET("/purchases", purchasesH.List)
		v1.GET("/purchases/:id", purchasesH.Get)
		v1.POST("/purchases/:id/approve", purchasesH.Approve)

		v1.POST("/payments", paymentsH.Apply)

		v1.POST("/returns", returnsH.Create)
		v1.GET("/returns/:id", returnsH.Get)
		v1.POST("/return-orders/:id/complete", returnsH.CompleteOrder)
		v1.POST("/return-orders/:id/cancel", returnsH.CancelOrder)
	}

	return r
}
