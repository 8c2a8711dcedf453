package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"sabaibill/internal/caching"
	"sabaibill/internal/handlers"
	"sabaibill/internal/jobs/background"
	"sabaibill/internal/middleware"
	"sabaibill/internal/models"
	"sabaibill/internal/repositories"
	"sabaibill/internal/services"
	"sabaibill/pkg/database"
)

const version = "1.0.0"

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32)
		log.Printf("WARNING: JWT_SECRET not set, using a generated secret; tokens will not survive restarts")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	minioBucket := os.Getenv("MINIO_BUCKET")
	if minioBucket == "" {
		minioBucket = "branding"
	}
	useSSL := os.Getenv("MINIO_USE_SSL") == "true"

	brandingStorage, err := services.NewMinioBrandingStorage(minioEndpoint, minioAccessKey, minioSecretKey, minioBucket, useSSL)
	if err != nil {
		log.Fatalf("Failed to initialize branding storage: %v", err)
	}
	if err := brandingStorage.EnsureBucket(context.Background()); err != nil {
		log.Printf("WARNING: branding bucket check failed: %v", err)
	}

	// Repositories
	documentRepo := repositories.NewDocumentRepo(pool)
	customerRepo := repositories.NewCustomerRepo(pool)
	companyRepo := repositories.NewCompanyRepo(pool)
	usageRepo := repositories.NewUsageRepo(pool)
	subscriptionRepo := repositories.NewSubscriptionRepo(pool)

	// Services
	redisClient := caching.NewRedisClient(redisAddr, redisPassword, redisDB)
	cacheSvc := caching.NewRedisCacheService(redisClient)
	usageSvc := services.NewUsageService(usageRepo, subscriptionRepo, cacheSvc)
	documentSvc := services.NewDocumentService(documentRepo, customerRepo, companyRepo, usageSvc, cacheSvc)

	// Handlers
	draftSessions := services.NewDraftSessions()
	quotationHandlers := handlers.NewDocumentHandlers(documentSvc, models.KindQuotation, draftSessions)
	invoiceHandlers := handlers.NewDocumentHandlers(documentSvc, models.KindInvoice, draftSessions)
	customerHandlers := handlers.NewCustomerHandlers(customerRepo)
	usageHandlers := handlers.NewUsageHandlers(usageSvc)
	companyHandlers := handlers.NewCompanyHandlers(companyRepo, brandingStorage, cacheSvc)
	healthHandlers := handlers.NewHealthHandlers(pool, redisClient)

	jwtConfig := echojwt.Config{
		SigningKey: []byte(jwtSecret),
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(middleware.JWTCustomClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(401, "Invalid token")
		},
	}

	e := echo.New()

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	// Health endpoints (no auth required)
	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/ready", healthHandlers.ReadinessCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	v1 := e.Group("/v1")
	protected := v1.Group("")
	protected.Use(echojwt.WithConfig(jwtConfig))
	protected.Use(middleware.ScopeFromToken)

	// Quotation routes
	protected.GET("/quotations", quotationHandlers.List)
	protected.POST("/quotations", quotationHandlers.Create)
	protected.GET("/quotations/:id", quotationHandlers.Get)
	protected.PUT("/quotations/:id", quotationHandlers.Update)
	protected.POST("/quotations/:id/cancel", quotationHandlers.Cancel)
	protected.DELETE("/quotations/:id", quotationHandlers.Delete)

	// Invoice routes
	protected.GET("/invoices", invoiceHandlers.List)
	protected.POST("/invoices", invoiceHandlers.Create)
	protected.GET("/invoices/:id", invoiceHandlers.Get)
	protected.PUT("/invoices/:id", invoiceHandlers.Update)
	protected.POST("/invoices/:id/cancel", invoiceHandlers.Cancel)
	protected.DELETE("/invoices/:id", invoiceHandlers.Delete)

	// Customer directory routes
	protected.GET("/customers", customerHandlers.List)
	protected.POST("/customers", customerHandlers.Create)
	protected.GET("/customers/:id", customerHandlers.Get)
	protected.PUT("/customers/:id", customerHandlers.Update)
	protected.DELETE("/customers/:id", customerHandlers.Delete)

	// Usage and plan routes
	protected.GET("/usage", usageHandlers.GetUsage)
	protected.GET("/plans", usageHandlers.GetPlans)

	// Company settings routes
	protected.GET("/company", companyHandlers.GetCompany)
	protected.PUT("/company", companyHandlers.UpdateCompany)
	protected.POST("/company/branding/:kind", companyHandlers.UploadBranding)

	// Background jobs
	scheduler, err := background.NewJobScheduler(usageSvc, companyRepo)
	if err != nil {
		log.Printf("Failed to create job scheduler: %v", err)
	} else {
		scheduler.Start()
		defer scheduler.Stop()
	}

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Fatalf("Invalid port %s: %v", portStr, err)
	}

	log.Printf("sabaibill server v%s starting on port %d", version, port)
	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", port)))
}
