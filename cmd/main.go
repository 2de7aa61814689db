package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docqa-chatbot/internal/agent"
	"docqa-chatbot/internal/ai"
	"docqa-chatbot/internal/config"
	"docqa-chatbot/internal/logger"
	"docqa-chatbot/internal/scheduler"
	"docqa-chatbot/internal/telemetry"
	"docqa-chatbot/middleware"
	"docqa-chatbot/models"
	"docqa-chatbot/routes"
	"docqa-chatbot/services"

	"github.com/gin-gonic/gin"
)

const serviceName = "docqa-chatbot"

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Tracing is optional
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := telemetry.InitTracer(serviceName, cfg.OTLPEndpoint, cfg.TraceSampleRatio)
		if err != nil {
			logger.Warn("Tracing disabled", "error", err)
		} else {
			defer shutdownTracer()
		}
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		logger.Warn("Metrics disabled", "error", err)
		metrics = nil
	}

	ctx := context.Background()

	chatModel, modelCloser, err := ai.NewChatModel(ctx, cfg, metrics)
	if err != nil {
		log.Fatal("Failed to initialize chat model:", err)
	}
	defer modelCloser.Close()

	docs := services.NewDocumentCache(services.NewFileSource(cfg.DocumentPath), cfg.ChunkSize)
	sessions := services.NewSessionStore()

	chatService := services.NewChatService(services.ChatServiceConfig{
		Documents:    docs,
		Retriever:    services.NewRetriever(docs, cfg.RetrievalTopK),
		Sessions:     sessions,
		Model:        chatModel,
		Agent:        agent.New(chatModel),
		ModelTimeout: cfg.ModelTimeout,
		Metrics:      metrics,
	})

	// Warm the document cache; a missing file is not fatal
	if _, err := docs.EnsureLoaded(ctx); err != nil {
		logger.Warn("Reference document not loaded at startup", "path", cfg.DocumentPath, "error", err)
	}

	jobs := scheduler.New()
	monitor := services.NewSessionMonitor(sessions, cfg.SessionWarnTurns)
	if err := monitor.Register(jobs, cfg.SessionStatsInterval); err != nil {
		logger.Warn("Session monitor not scheduled", "error", err)
	}
	jobs.Start()
	defer jobs.Stop()

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.TracingMiddleware(serviceName))
	router.Use(middleware.EnrichTrace())
	router.Use(middleware.MetricsMiddleware(metrics))
	router.Use(middleware.CORSMiddlewareWithOrigins(cfg.CORSOrigins))
	router.Use(middleware.RequestSizeLimit(cfg.MaxRequestSize))

	// Redis rate limiting is optional
	if cfg.RedisURL != "" {
		rdb, err := config.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Rate limiting disabled", "error", err)
		} else {
			defer rdb.Close()
			router.Use(middleware.RateLimitMiddleware(rdb, middleware.RateLimitConfig{
				Requests: cfg.RateLimitReqs,
				Window:   time.Duration(cfg.RateLimitWindow) * time.Second,
			}))
		}
	}

	// MongoDB audit log is optional
	if cfg.MongoURI != "" {
		mongoClient, err := config.ConnectMongoDB(cfg)
		if err != nil {
			logger.Warn("Audit log disabled", "error", err)
		} else {
			auditor := models.NewAuditLogger(
				models.NewMongoAuditStore(mongoClient.Database(cfg.DBName), config.AuditCollection))
			router.Use(middleware.AuditMiddleware(auditor))
			defer func() {
				auditor.Wait()
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				mongoClient.Disconnect(ctx)
			}()
		}
	}

	routes.SetupHealthRoutes(router, docs)
	routes.SetupChatRoutes(router, chatService)

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port, "provider", cfg.ChatProvider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
