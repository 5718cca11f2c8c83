package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq" // PostgreSQL driver for sql.DB migrations
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"quality-service/internal/clients/frankfurter"
	"quality-service/internal/config"
	"quality-service/internal/events"
	"quality-service/internal/handlers"
	"quality-service/internal/middleware"
	"quality-service/internal/migration"
	"quality-service/internal/models"
	"quality-service/internal/repository"
	"quality-service/internal/services"
	"quality-service/internal/utils"
	"quality-service/internal/workers"
)

func main() {
	cfg := config.Load()
	logger := utils.NewLogger()

	db, err := initDatabase(cfg)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	if err := runMigrations(cfg); err != nil {
		logger.WithError(err).Warn("SQL migrations failed, falling back to GORM auto-migrate")
		if err := autoMigrate(db); err != nil {
			logger.WithError(err).Fatal("Failed to migrate database")
		}
	}
	logger.Info("Database initialized")

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Repositories
	sampleRepo := repository.NewSampleRepository(db)
	storageRepo := repository.NewStorageRepository(db)
	clientRepo := repository.NewClientRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	financeRepo := repository.NewFinanceRepository(db)
	userRepo := repository.NewUserRepository(db)
	sessionStore := repository.NewSessionStore(redisClient)
	utilizationCache := repository.NewUtilizationCache(redisClient, 0)

	// Services
	authSvc := services.NewAuthService(userRepo, sessionStore, cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	trackingSvc := services.NewTrackingService(sampleRepo, clientRepo, storageRepo)
	sampleSvc := services.NewSampleService(sampleRepo, trackingSvc)
	storageSvc := services.NewStorageService(storageRepo, utilizationCache)
	clientSvc := services.NewClientService(clientRepo)
	templateSvc := services.NewTemplateService(templateRepo)

	fxClient := frankfurter.NewClient(cfg.FX.BaseURL, 0)
	fxSvc := services.NewFXService(fxClient)
	financeSvc := services.NewFinanceService(financeRepo, fxSvc)

	rateUpdater := workers.NewRateUpdater(fxSvc, cfg.FX.UpdateInterval, logger)
	rateUpdater.Start()

	// NATS events publisher (non-blocking)
	go func() {
		if err := events.InitPublisher(cfg.NATS.URL, logger); err != nil {
			logger.WithError(err).Warn("Failed to initialize events publisher (events won't be published)")
		}
	}()

	// Handlers
	sessionTTLSeconds := int(cfg.Auth.SessionTTL / time.Second)
	healthHandler := handlers.NewHealthHandler(db)
	authHandler := handlers.NewAuthHandler(authSvc, logger, cfg.Auth.CookieName, cfg.Auth.CookieSecure, sessionTTLSeconds)
	sampleHandler := handlers.NewSampleHandler(sampleSvc, trackingSvc, logger)
	storageHandler := handlers.NewStorageHandler(storageSvc, logger)
	clientHandler := handlers.NewClientHandler(clientSvc, logger)
	financeHandler := handlers.NewFinanceHandler(financeSvc, logger)
	templateHandler := handlers.NewTemplateHandler(templateSvc, logger)

	authMiddleware := middleware.NewAuthMiddleware(authSvc, cfg.Auth.CookieName)
	metricsCollector := middleware.NewMetrics()
	startDBMetrics(db, logger)

	router := setupRouter(cfg, healthHandler, authHandler, sampleHandler, storageHandler, clientHandler, financeHandler, templateHandler, authMiddleware, metricsCollector)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Starting quality-service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rateUpdater.Stop()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}
	logger.Info("Server exited")
}

func setupRouter(
	cfg *config.Config,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	sampleHandler *handlers.SampleHandler,
	storageHandler *handlers.StorageHandler,
	clientHandler *handlers.ClientHandler,
	financeHandler *handlers.FinanceHandler,
	templateHandler *handlers.TemplateHandler,
	authMiddleware *middleware.AuthMiddleware,
	metricsCollector *middleware.Metrics,
) *gin.Engine {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(metricsCollector.Middleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Auth.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authMiddleware.SessionRequired(), authHandler.Logout)
			auth.GET("/me", authMiddleware.SessionRequired(), authHandler.Me)
		}

		session := v1.Group("")
		session.Use(authMiddleware.SessionRequired())
		{
			samples := session.Group("/samples")
			{
				samples.POST("/tracking-numbers", sampleHandler.AllocateTrackingNumber)
				samples.GET("/tracking-numbers", sampleHandler.LookupTrackingNumber)
				samples.POST("", sampleHandler.Intake)
				samples.GET("", sampleHandler.List)
				samples.GET("/:sampleId", sampleHandler.Get)
				samples.PATCH("/:sampleId/status",
					authMiddleware.RequireRole(models.RoleAdmin, models.RoleLabDirector, models.RoleLabManager, models.RoleStaff),
					sampleHandler.UpdateStatus)
			}

			labs := session.Group("/laboratories")
			{
				labs.GET("", storageHandler.ListLaboratories)
				labs.GET("/:labId/storage-layout", storageHandler.GetStorageLayout)
				labs.PATCH("/:labId/positions/:positionId", storageHandler.AssignPosition)
				labs.POST("/:labId/shelves/:shelfId/generate-positions", storageHandler.RegeneratePositions)
			}

			clients := session.Group("/clients")
			{
				clients.GET("/search", clientHandler.Search)
				clients.GET("", clientHandler.List)
				clients.POST("", clientHandler.Create)
				clients.GET("/:clientId", clientHandler.Get)
				clients.PUT("/:clientId", clientHandler.Update)
				clients.DELETE("/:clientId", clientHandler.Delete)
				pricing := clients.Group("/:clientId/origin-pricing")
				pricing.Use(authMiddleware.RequireRole(models.RoleAdmin))
				{
					pricing.GET("", clientHandler.GetOriginPricing)
					pricing.POST("", clientHandler.SetOriginPricing)
					pricing.DELETE("", clientHandler.DeleteOriginPricing)
				}
			}

			finance := session.Group("/finance")
			finance.Use(authMiddleware.RequireRole(models.RoleAdmin, models.RoleFinance))
			{
				finance.GET("/billing-summary", financeHandler.BillingSummary)
				finance.GET("/lab-breakdown", financeHandler.LabBreakdown)
				finance.GET("/lab-payments", financeHandler.LabPayments)
				finance.GET("/export", financeHandler.Export)
			}

			templates := session.Group("/templates")
			{
				templates.GET("", templateHandler.List)
				templates.GET("/:templateId", templateHandler.Get)
				templates.POST("/:templateId/clone", templateHandler.Clone)
			}
		}
	}

	return router
}

func initDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn(cfg)), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func runMigrations(cfg *config.Config) error {
	sqlDB, err := sql.Open("postgres", dsn(cfg))
	if err != nil {
		return fmt.Errorf("failed to open SQL connection for migrations: %w", err)
	}
	defer sqlDB.Close()

	return migration.NewMigrator(sqlDB).RunMigrations()
}

func autoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Client{},
		&models.ClientOriginPricing{},
		&models.Laboratory{},
		&models.Shelf{},
		&models.StoragePosition{},
		&models.Sample{},
		&models.TrackingCounter{},
		&models.QualityTemplate{},
		&models.User{},
		&models.Invoice{},
	)
}

func dsn(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s search_path=%s,public",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Name,
		cfg.Database.SSLMode,
		cfg.Database.Schema,
	)
}

// startDBMetrics exports connection pool gauges, refreshed every 10s.
func startDBMetrics(db *gorm.DB, logger *logrus.Logger) {
	open := promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "waqc",
		Subsystem: "quality",
		Name:      "db_connections_open",
		Help:      "Number of open database connections",
	})
	inUse := promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "waqc",
		Subsystem: "quality",
		Name:      "db_connections_in_use",
		Help:      "Number of database connections currently in use",
	})
	idle := promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "waqc",
		Subsystem: "quality",
		Name:      "db_connections_idle",
		Help:      "Number of idle database connections",
	})

	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			sqlDB, err := db.DB()
			if err != nil {
				logger.WithError(err).Warn("Failed to get database instance for metrics")
				continue
			}
			stats := sqlDB.Stats()
			open.Set(float64(stats.OpenConnections))
			inUse.Set(float64(stats.InUse))
			idle.Set(float64(stats.Idle))
		}
	}()
}
