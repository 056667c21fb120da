package router

import (
	"context"
	"time"

	_ "github.com/zakareajob-cpu/zak-crm/docs"
	"github.com/zakareajob-cpu/zak-crm/internal/config"
	"github.com/zakareajob-cpu/zak-crm/internal/dto"
	"github.com/zakareajob-cpu/zak-crm/internal/handler"
	"github.com/zakareajob-cpu/zak-crm/internal/middleware"
	"github.com/zakareajob-cpu/zak-crm/internal/model"
	"github.com/zakareajob-cpu/zak-crm/internal/repository"
	"github.com/zakareajob-cpu/zak-crm/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Services is the wired service layer, shared by the HTTP API and the
// e-mail worker.
type Services struct {
	Auth      service.AuthService
	Contacts  service.ContactService
	Products  service.ProductService
	Invoices  service.InvoiceService
	Dashboard service.DashboardService
}

// NewServices builds the dependency graph Service ← Repository ← DB/Redis.
// queue may be nil, in which case invoice e-mail answers 503.
func NewServices(cfg *config.Config, db *gorm.DB, rdb *redis.Client, queue service.EmailQueue) *Services {
	contactRepo := repository.NewContactRepository(db)
	productRepo := repository.NewProductRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	userRepo := repository.NewUserRepository(db)

	composer := service.NewComposer(contactRepo, productRepo, service.ComposerConfig{
		Prefix:             cfg.InvoicePrefix,
		Suffix:             cfg.InvoiceSuffix,
		DefaultCurrency:    cfg.CurrencyDefault,
		AllowDiscountLines: cfg.AllowDiscountLines,
	})
	presenter := service.NewPresenter(CompanyView(cfg))

	return &Services{
		Auth:     service.NewAuthService(userRepo, cfg),
		Contacts: service.NewContactService(contactRepo, invoiceRepo),
		Products: service.NewProductService(productRepo, contactRepo, rdb, cfg.CurrencyDefault),
		Invoices: service.NewInvoiceService(
			invoiceRepo,
			composer,
			repository.NewInvoiceNumberSource(cfg.InvoiceNumberSource),
			presenter,
			queue,
			cfg.InvoiceNumberRetries,
		),
		Dashboard: service.NewDashboardService(contactRepo, productRepo, invoiceRepo),
	}
}

// CompanyView is the seller block printed on every invoice.
func CompanyView(cfg *config.Config) dto.CompanyView {
	return dto.CompanyView{
		Name:     cfg.CompanyName,
		Address:  cfg.CompanyAddress,
		Email:    cfg.CompanyEmail,
		Phone:    cfg.CompanyPhone,
		BankInfo: cfg.BankLines(),
		LogoFile: cfg.LogoFile,
	}
}

// New returns the configured Gin engine. ctx bounds the rate limiter
// cleanup goroutines.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB, rdb *redis.Client, svcs *Services) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	apiLimiter := middleware.NewRateLimiter("api", cfg.RateLimitPerMinute, 0)
	loginLimiter := middleware.NewRateLimiter("login", cfg.LoginRatePerMinute, 5)
	go apiLimiter.Cleanup(ctx, 5*time.Minute)
	go loginLimiter.Cleanup(ctx, 5*time.Minute)

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.AllowedOrigins()))
	r.Use(middleware.ErrorHandler())
	r.Use(apiLimiter.Middleware())

	authH := handler.NewAuthHandler(svcs.Auth)
	dashboardH := handler.NewDashboardHandler(svcs.Dashboard)
	contactsH := handler.NewContactsHandler(svcs.Contacts)
	productsH := handler.NewProductsHandler(svcs.Products)
	invoicesH := handler.NewInvoicesHandler(svcs.Invoices)

	// ── Public ───────────────────────────────────────────────────────────────
	r.GET("/health", handler.Health(db, rdb))

	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", loginLimiter.Middleware(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// ── Protected ────────────────────────────────────────────────────────────
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), middleware.RequireRole(model.RoleAdmin))
	{
		v1.GET("/dashboard", dashboardH.Summary)

		contacts := v1.Group("/contacts")
		{
			contacts.POST("", contactsH.Create)
			contacts.GET("", contactsH.List)
			contacts.GET("/:id", contactsH.Get)
			contacts.PUT("/:id", contactsH.Update)
			contacts.DELETE("/:id", contactsH.Delete)

			contacts.GET("/:id/prices", productsH.ListCustomerPrices)
			contacts.PUT("/:id/prices/:product_id", productsH.SetCustomerPrice)
			contacts.DELETE("/:id/prices/:product_id", productsH.DeleteCustomerPrice)
		}

		products := v1.Group("/products")
		{
			products.POST("", productsH.Create)
			products.GET("", productsH.List)
			products.GET("/search", productsH.Search)
			products.GET("/:id", productsH.Get)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Delete)
			products.GET("/:id/price", productsH.Price)
		}

		invoices := v1.Group("/invoices")
		{
			invoices.POST("", invoicesH.Create)
			invoices.GET("", invoicesH.List)
			invoices.GET("/next-number", invoicesH.NextNumber)
			invoices.GET("/:id", invoicesH.Get)
			invoices.DELETE("/:id", invoicesH.Delete)
			invoices.GET("/:id/pdf", invoicesH.PDF)
			invoices.POST("/:id/email", invoicesH.Email)
		}
	}

	// Swagger UI, only outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
