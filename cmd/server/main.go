// API Integration Debugger - Server Entry Point
//
// This is the web front end for the diagnostic backend. It serves the landing
// page and dashboard, owns one diagnostic workspace per browser and mirrors
// the same operations as a JSON API.
package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/api-debugger/internal/backend"
	"github.com/api-debugger/internal/config"
	"github.com/api-debugger/internal/handler"
	"github.com/api-debugger/internal/logger"
	"github.com/api-debugger/internal/rules"
	"github.com/api-debugger/internal/service"
	"github.com/api-debugger/internal/session"
	"github.com/api-debugger/pkg/sanitizer"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Load .env file if it exists (development)
	_ = godotenv.Load()

	// Load configuration: defaults first, then the environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.New(cfg.Server.Development, cfg.Log.Level)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting API Integration Debugger",
		zap.Bool("development", cfg.Server.Development),
		zap.String("port", cfg.Server.Port),
		zap.String("backend_url", cfg.Backend.BaseURL),
		zap.Duration("backend_timeout", cfg.Backend.Timeout),
		zap.Bool("mock_mode", cfg.Backend.MockMode),
		zap.Bool("auth_disabled", cfg.Session.Disabled),
	)

	// Initialize sanitizer
	logSanitizer := sanitizer.New(cfg.Log.MaxBodySize)

	// Initialize backend client
	var client backend.Client
	if cfg.Backend.MockMode {
		zapLogger.Warn("running in mock mode - diagnoses come from built-in rules")
		ruleEngine := rules.NewEngine(rules.DefaultRules(), rules.DefaultThreshold, zapLogger)
		client = backend.NewMockClient(ruleEngine, zapLogger)
	} else {
		client = backend.NewHTTPClient(&cfg.Backend, logSanitizer, zapLogger)
	}

	if cfg.Session.Disabled {
		zapLogger.Warn("authentication disabled - every visitor is signed in as the local user")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Workspaces live in memory only and are evicted when idle
	workspaces := service.NewWorkspaces(client, logSanitizer, cfg.Session.WorkspaceTTL, zapLogger)
	go workspaces.Run(ctx)

	// Setup Gin router
	if !cfg.Server.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handler.NewRouter(handler.RouterOptions{
		Client:        client,
		Workspaces:    workspaces,
		Verifier:      session.NewVerifier(cfg.Session.Secret, cfg.Session.Disabled),
		WorkspaceTTL:  cfg.Session.WorkspaceTTL,
		SecureCookies: cfg.Session.SecureCookies,
		SignInURL:     cfg.Session.SignInURL,
		Logger:        zapLogger,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		zapLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	<-ctx.Done()
	stop()

	zapLogger.Info("shutting down server...")

	// Give the server 10 seconds to finish processing
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("server stopped")
}
