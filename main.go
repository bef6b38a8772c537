package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"attributely-core/internal/config"
	"attributely-core/internal/export"
	"attributely-core/internal/gateway"
	"attributely-core/internal/handlers"
	"attributely-core/internal/leads"
	"attributely-core/internal/orchestrator"
	"attributely-core/internal/recorder"
	"attributely-core/internal/storage"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.JSONFormatter{})

	logger.Info("Starting Attributely orchestration and scoring engine")

	// Initialize components
	gatewayClient := gateway.NewClient(cfg, logger)
	engine := leads.NewEngine(cfg.TrackingBaseURL)
	store := storage.NewMemoryStore(cfg.LeadHistory)
	exporter := export.NewExporter(cfg.LeadSinkURL, cfg.LeadSinkSecret, gatewayClient, logger)

	leadRecorder, err := recorder.New(cfg.RedisURL, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to configure lead recorder")
	}
	if leadRecorder == nil {
		logger.Info("Redis not configured, lead recording disabled")
	}

	orch := orchestrator.New(gatewayClient, engine, store, leadRecorder, exporter, cfg.FetchTimeout, logger)

	// Initialize handlers
	handler := handlers.New(orch, store, logger)

	// Setup Gin router
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	// Health endpoints
	router.GET("/healthz", handler.HealthCheck)
	router.GET("/readyz", handler.ReadinessCheck)

	// Orchestrator entry point
	router.POST("/api/orchestrator", handler.ExecuteAction)
	router.GET("/api/orchestrator", handler.Analyze)

	// Platform status
	router.GET("/api/status", handler.GetStatus)

	// Lead qualification
	router.POST("/api/leads/qualify", handler.QualifyLead)
	router.GET("/api/leads", handler.GetLeads)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("Server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	if err := leadRecorder.Close(); err != nil {
		logger.WithError(err).Warn("Failed to close lead recorder")
	}

	logger.Info("Server exited")
}
