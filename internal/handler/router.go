package handler

import (
	"time"

	"github.com/api-debugger/internal/backend"
	"github.com/api-debugger/internal/service"
	"github.com/api-debugger/internal/session"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterOptions carries what the router needs from the rest of the server.
type RouterOptions struct {
	Client        backend.Client
	Workspaces    *service.Workspaces
	Verifier      *session.Verifier
	WorkspaceTTL  time.Duration
	SecureCookies bool
	SignInURL     string
	Logger        *zap.Logger
}

// NewRouter builds the gin engine with middleware and all routes registered.
func NewRouter(opts RouterOptions) *gin.Engine {
	logger := opts.Logger

	pages := NewPageHandler(opts.SignInURL, logger)
	api := NewAPIHandler(opts.Client, logger)
	healthHandler := NewHealthHandler(logger)
	readyHandler := NewReadyHandler(opts.Client, logger)
	workspace := WorkspaceMiddleware(opts.Workspaces, opts.WorkspaceTTL, opts.SecureCookies)

	router := gin.New()
	router.SetHTMLTemplate(Templates())

	// Apply middleware
	router.Use(RecoveryMiddleware(logger))
	router.Use(RequestIDMiddleware())
	router.Use(LoggingMiddleware(logger))
	router.Use(CORSMiddleware())
	router.Use(IdentityMiddleware(opts.Verifier))

	router.GET("/health", healthHandler.Handle)
	router.GET("/ready", readyHandler.Handle)

	router.GET("/", pages.Landing)
	router.POST("/theme", pages.Theme)

	dashboard := router.Group("/dashboard", RequireIdentity(true), workspace)
	{
		dashboard.GET("", pages.Dashboard)
		dashboard.POST("/debug", pages.Debug)
		dashboard.POST("/example/:kind", pages.Example)
		dashboard.POST("/reset", pages.Reset)
	}

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		v1.GET("/me", api.Me)
		v1.GET("/examples", api.Examples)
		v1.GET("/examples/:kind", api.Example)

		authed := v1.Group("", RequireIdentity(false))
		authed.POST("/test-request", api.TestRequest)
		authed.POST("/debug", workspace, api.Debug)
		authed.GET("/state", workspace, api.State)
	}

	return router
}
