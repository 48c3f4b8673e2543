// Package handler contains HTTP handlers for the web front end and its JSON API.
package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/api-debugger/internal/service"
	"github.com/api-debugger/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	requestIDKey = "request_id"
	identityKey  = "identity"
	debuggerKey  = "debugger"

	// WorkspaceCookie identifies the browser's workspace.
	WorkspaceCookie = "workspace"
)

// LoggingMiddleware logs request details.
func LoggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		// Process request
		c.Next()

		logger.Info("request completed",
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(startTime)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// RecoveryMiddleware handles panics gracefully.
func RecoveryMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					zap.Any("error", err),
					zap.String("request_id", c.GetString(requestIDKey)),
					zap.String("path", c.Request.URL.Path),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "Internal server error",
				})
			}
		}()
		c.Next()
	}
}

// CORSMiddleware adds CORS headers for development.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestIDMiddleware ensures each request has a unique ID.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Set(requestIDKey, requestID)
		c.Next()
	}
}

// IdentityMiddleware resolves the visitor's identity. It never rejects.
func IdentityMiddleware(verifier *session.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(identityKey, verifier.FromRequest(c.Request))
		c.Next()
	}
}

// RequireIdentity rejects signed-out visitors. Pages redirect to the landing
// page; JSON routes get 401.
func RequireIdentity(redirect bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetIdentity(c).SignedIn {
			c.Next()
			return
		}
		if redirect {
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
}

// WorkspaceMiddleware attaches the visitor's Debugger, issuing a workspace
// cookie when the visitor has none, it has expired, or it was created by a
// different signed-in subject. Must run after IdentityMiddleware.
func WorkspaceMiddleware(ws *service.Workspaces, ttl time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, _ := c.Cookie(WorkspaceCookie)
		id, debugger := ws.Get(current, GetIdentity(c).Subject)
		if id != current {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(WorkspaceCookie, id, int(ttl.Seconds()), "/", "", secure, true)
		}
		c.Set(debuggerKey, debugger)
		c.Next()
	}
}

// GetIdentity returns the identity set by IdentityMiddleware.
func GetIdentity(c *gin.Context) session.Identity {
	if value, ok := c.Get(identityKey); ok {
		if id, ok := value.(session.Identity); ok {
			return id
		}
	}
	return session.Identity{}
}

// GetDebugger returns the workspace Debugger set by WorkspaceMiddleware.
func GetDebugger(c *gin.Context) *service.Debugger {
	if value, ok := c.Get(debuggerKey); ok {
		if d, ok := value.(*service.Debugger); ok {
			return d
		}
	}
	return nil
}

// ThemeCookie holds the light/dark preference.
const ThemeCookie = "theme"

// GetTheme returns "dark" or "light".
func GetTheme(c *gin.Context) string {
	if v, err := c.Cookie(ThemeCookie); err == nil && strings.EqualFold(v, "dark") {
		return "dark"
	}
	return "light"
}
