package main

import (
	"context"
	"log"
	"os"

	_ "clinicpanel/api/swagger" // swagger docs
	"clinicpanel/internal/database"
	"clinicpanel/internal/handler"
	"clinicpanel/internal/middleware"
	"clinicpanel/internal/repository"
	"clinicpanel/internal/service"
	"clinicpanel/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Clinic Panel API
// @version         1.0
// @description     Back-office API for the clinic panel: financial ledger, cash sessions, commissions and orthodontic billing.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")
	dbSslMode := os.Getenv("DB_SSLMODE")

	if dbHost == "" {
		dbHost = "localhost"
	}
	if dbPort == "" {
		dbPort = "5432"
	}
	if dbUser == "" {
		dbUser = "postgres"
	}
	if dbPassword == "" {
		dbPassword = "postgres"
	}
	if dbName == "" {
		dbName = "postgres"
	}
	if dbSslMode == "" {
		dbSslMode = "disable"
	}

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")
	database.SeedDefaults(db)

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	providerRepo := repository.NewProviderRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	cashRepo := repository.NewCashSessionRepository(db)
	orthoRepo := repository.NewOrthoRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)

	authService := service.NewAuthService(userRepo)
	patientService := service.NewPatientService(patientRepo)
	providerService := service.NewProviderService(providerRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	ledgerService := service.NewLedgerService(ledgerRepo, cashRepo, providerRepo, txManager)
	cashService := service.NewCashService(cashRepo, ledgerRepo, txManager)
	commissionService := service.NewCommissionService(ledgerRepo, providerRepo)
	orthoService := service.NewOrthoService(
		orthoRepo, ledgerRepo, cashRepo, categoryRepo,
		providerRepo, patientRepo, appointmentRepo, txManager,
	)
	budgetService := service.NewBudgetService(budgetRepo, patientRepo, txManager)
	statsService := service.NewStatsService(ledgerRepo, appointmentRepo, cashRepo)

	if err := authService.EnsureAdminUser(context.Background()); err != nil {
		log.Println("WARNING: Failed to seed admin user:", err)
	}

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService)
	patientHandler := handler.NewPatientHandler(patientService, budgetService)
	providerHandler := handler.NewProviderHandler(providerService)
	categoryHandler := handler.NewCategoryHandler(categoryService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	cashHandler := handler.NewCashHandler(cashService, wsHub)
	commissionHandler := handler.NewCommissionHandler(commissionService)
	orthoHandler := handler.NewOrthoHandler(orthoService, wsHub)
	statsHandler := handler.NewStatsHandler(statsService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	authHandler.RegisterRoutes(router.Group(""))
	patientHandler.RegisterRoutes(router.Group(""))
	providerHandler.RegisterRoutes(router.Group(""))
	categoryHandler.RegisterRoutes(router.Group(""))
	ledgerHandler.RegisterRoutes(router.Group(""))
	cashHandler.RegisterRoutes(router.Group(""))
	commissionHandler.RegisterRoutes(router.Group(""))
	orthoHandler.RegisterRoutes(router.Group(""))
	statsHandler.RegisterRoutes(router.Group(""))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
