package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vrushabhh97/NormaAI-RAG/config"
	"github.com/vrushabhh97/NormaAI-RAG/handler"
	"github.com/vrushabhh97/NormaAI-RAG/middleware"
	"github.com/vrushabhh97/NormaAI-RAG/pkg/logger"
	"github.com/vrushabhh97/NormaAI-RAG/service"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load .env if present; secrets come from the environment
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully")

	// Initialize services
	archive, err := service.NewDocumentArchive(&cfg.Minio)
	if err != nil {
		slog.Error("failed to initialize document archive", "error", err)
		os.Exit(1)
	}

	// Ensure bucket exists
	if err := archive.EnsureBucket(context.Background()); err != nil {
		slog.Error("failed to ensure archive bucket", "error", err)
		os.Exit(1)
	}

	analysis := service.NewAnalysisService(&cfg.Analysis)

	// Initialize session store with config
	service.InitSessionStore(&cfg.Store)

	actions := service.NewActionService(analysis)
	chat := service.NewTranscriptService(analysis)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(cfg)
	sessionHandler := handler.NewSessionHandler(archive, analysis, actions, chat)
	actionHandler := handler.NewActionHandler(actions)
	chatHandler := handler.NewChatHandler(chat, analysis)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New() // Use New() instead of Default() to avoid default middleware

	// Add custom middleware
	router.Use(middleware.RequestID())                 // Request ID for tracing
	router.Use(middleware.Recovery())                  // Panic recovery
	router.Use(middleware.RequestLogger())             // Access logging
	router.Use(corsMiddleware())                       // CORS
	router.Use(cacheMiddleware())                      // Cache control
	router.Use(middleware.RateLimit(100, time.Minute)) // Rate limiting: 100 requests per minute

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	// Public routes
	api := router.Group("/api")
	{
		api.POST("/auth/login", authHandler.Login)
	}

	// Protected routes
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		protected.GET("/auth/me", authHandler.GetCurrentUser)

		protected.POST("/sessions/upload", sessionHandler.Upload)
		protected.GET("/sessions", sessionHandler.List)
		protected.GET("/sessions/:id", sessionHandler.Get)
		protected.GET("/sessions/:id/status", sessionHandler.GetStatus)
		protected.DELETE("/sessions/:id", sessionHandler.Delete)

		protected.POST("/sessions/:id/cards/:cardID/actions", actionHandler.Convert)
		protected.GET("/sessions/:id/actions", actionHandler.List)
		protected.PATCH("/sessions/:id/actions/:itemID/toggle", actionHandler.Toggle)
		protected.GET("/sessions/:id/actions/export", actionHandler.Export)

		protected.POST("/sessions/:id/questions", chatHandler.Ask)
		protected.GET("/sessions/:id/questions", chatHandler.List)

		protected.POST("/references/upload", chatHandler.UploadReference)
	}

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// corsMiddleware handles CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// cacheMiddleware disables caching on API responses
func cacheMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
		}

		c.Next()
	}
}
