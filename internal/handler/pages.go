package handler

import (
	"embed"
	"html/template"
	"net/http"
	"strings"

	"github.com/api-debugger/internal/domain"
	"github.com/api-debugger/internal/form"
	"github.com/api-debugger/internal/render"
	"github.com/api-debugger/internal/session"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates parses the embedded page templates.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

type feature struct {
	Title string
	Text  string
}

var features = []feature{
	{"Multi-Agent Analysis", "Specialized agents inspect requests, responses, auth and docs together."},
	{"Root Cause First", "Get the reason your integration fails before the fix."},
	{"Actionable Fixes", "Step by step solutions with corrected requests."},
	{"Auth Aware", "Bearer, API key, OAuth2 and Basic flows are understood."},
}

type pageData struct {
	Path      string
	Theme     string
	SignInURL string
	Identity  session.Identity
	Features  []feature

	Fields    form.Fields
	View      render.View
	Examples  []form.Example
	Methods   []domain.HTTPMethod
	AuthTypes []struct {
		Type  domain.AuthType
		Label string
	}
}

// PageHandler serves the HTML pages.
type PageHandler struct {
	signInURL string
	logger    *zap.Logger
}

// NewPageHandler creates a new PageHandler. signInURL points at the external
// identity provider and may be empty.
func NewPageHandler(signInURL string, logger *zap.Logger) *PageHandler {
	return &PageHandler{
		signInURL: signInURL,
		logger:    logger.Named("page_handler"),
	}
}

func (h *PageHandler) page(c *gin.Context) pageData {
	return pageData{
		Path:      c.Request.URL.Path,
		Theme:     GetTheme(c),
		SignInURL: h.signInURL,
		Identity:  GetIdentity(c),
	}
}

// Landing processes GET / requests.
func (h *PageHandler) Landing(c *gin.Context) {
	data := h.page(c)
	data.Features = features
	c.HTML(http.StatusOK, "landing.html", data)
}

// Dashboard processes GET /dashboard requests.
func (h *PageHandler) Dashboard(c *gin.Context) {
	d := GetDebugger(c)
	data := h.page(c)
	data.Fields = d.Fields()
	data.View = render.Render(d.State())
	data.Examples = form.Examples()
	data.Methods = domain.Methods
	data.AuthTypes = domain.AuthTypes
	c.HTML(http.StatusOK, "dashboard.html", data)
}

// Debug processes POST /dashboard/debug requests.
func (h *PageHandler) Debug(c *gin.Context) {
	var fields form.Fields
	if err := c.ShouldBind(&fields); err != nil {
		h.logger.Warn("invalid form submission", zap.Error(err))
	}

	state := GetDebugger(c).Submit(c.Request.Context(), fields)
	h.logger.Debug("dashboard submission settled",
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.String("phase", string(state.Phase)),
	)
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Example processes POST /dashboard/example/:kind requests.
func (h *PageHandler) Example(c *gin.Context) {
	if _, err := GetDebugger(c).LoadExample(c.Param("kind")); err != nil {
		c.String(http.StatusNotFound, err.Error())
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Reset processes POST /dashboard/reset requests.
func (h *PageHandler) Reset(c *gin.Context) {
	GetDebugger(c).Reset()
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

// Theme processes POST /theme requests, flipping the light/dark preference.
func (h *PageHandler) Theme(c *gin.Context) {
	next := "dark"
	if GetTheme(c) == "dark" {
		next = "light"
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(ThemeCookie, next, 365*24*60*60, "/", "", false, false)

	back := c.PostForm("return")
	if !strings.HasPrefix(back, "/") || strings.HasPrefix(back, "//") {
		back = "/"
	}
	c.Redirect(http.StatusSeeOther, back)
}
