package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/restoflow/websrm-adapter/internal/application/service"
	"github.com/restoflow/websrm-adapter/internal/config"
	"github.com/restoflow/websrm-adapter/internal/domain/enum"
	"github.com/restoflow/websrm-adapter/internal/infrastructure/database"
	"github.com/restoflow/websrm-adapter/internal/infrastructure/repository"
	"github.com/restoflow/websrm-adapter/internal/presentation/http/handler"
	"github.com/restoflow/websrm-adapter/internal/presentation/http/routes"
	"github.com/restoflow/websrm-adapter/internal/websrm"
	"github.com/restoflow/websrm-adapter/pkg/signing"
	"github.com/restoflow/websrm-adapter/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	queueRepo := repository.NewQueueRepository(db)

	// Initialize transaction signer
	signer, err := signing.New(cfg.Signing.Algorithm, cfg.Signing.Secret, cfg.Signing.KeyPEM)
	if err != nil {
		log.Fatalf("Failed to initialize signer: %v", err)
	}

	serviceDefault := enum.ServiceRestaurant
	if cfg.WebSRM.ServiceDefault == enum.ServiceDelivery.Code() {
		serviceDefault = enum.ServiceDelivery
	}
	mapper := websrm.NewMapper(serviceDefault)
	receipts := websrm.NewReceiptBuilder(cfg.WebSRM.VerifyBaseURL)

	// Initialize WEB-SRM client
	client := websrm.NewClient(websrm.ClientConfig{
		Endpoint:          cfg.WebSRM.BaseURL,
		CertificationCode: cfg.WebSRM.CertificationCode,
		DeviceID:          cfg.WebSRM.DeviceID,
		SoftwareVersion:   cfg.WebSRM.SoftwareVersion,
		RequestTimeout:    cfg.WebSRM.RequestTimeout,
	})

	// Initialize services
	submissionService := service.NewSubmissionService(queueRepo, mapper, signer, receipts, cfg.WebSRM.DeviceID)

	dispatchCfg := service.DefaultDispatchConfig()
	dispatchCfg.MaxAttempts = cfg.Retry.MaxAttempts
	dispatchCfg.BackoffBase = cfg.Retry.BackoffBase
	dispatchCfg.BackoffCap = cfg.Retry.BackoffCap
	dispatchCfg.PollInterval = cfg.Retry.PollInterval
	dispatchCfg.BatchSize = cfg.Retry.BatchSize
	dispatchCfg.DeviceRate = cfg.Retry.DeviceRate
	dispatchCfg.RequestTimeout = cfg.WebSRM.RequestTimeout
	dispatcher := service.NewDispatcher(queueRepo, client, dispatchCfg)

	// Initialize handlers
	handlers := &routes.Handlers{
		Transaction: handler.NewTransactionHandler(submissionService),
		Queue:       handler.NewQueueHandler(submissionService),
		Auth:        handler.NewAuthHandler(jwtManager),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager: jwtManager,
		Cfg:        cfg,
	})

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Run the dispatcher until shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go dispatcher.Run(ctx)

	go func() {
		log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
		log.Printf("Environment: %s", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
		os.Exit(1)
	}
}
