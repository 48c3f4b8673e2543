package handler

import (
	"errors"
	"net/http"

	"github.com/api-debugger/internal/backend"
	"github.com/api-debugger/internal/domain"
	"github.com/api-debugger/internal/form"
	"github.com/api-debugger/internal/render"
	"github.com/api-debugger/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StateResponse is the JSON shape of a workspace state.
type StateResponse struct {
	State service.State `json:"state"`
	View  render.View   `json:"view"`
	Form  form.Fields   `json:"form"`
}

// APIHandler serves the JSON mirror of the dashboard.
type APIHandler struct {
	client backend.Client
	logger *zap.Logger
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(client backend.Client, logger *zap.Logger) *APIHandler {
	return &APIHandler{
		client: client,
		logger: logger.Named("api_handler"),
	}
}

// Debug processes POST /api/v1/debug requests.
func (h *APIHandler) Debug(c *gin.Context) {
	logger := h.logger.With(zap.String("request_id", c.GetString(requestIDKey)))

	var fields form.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		logger.Warn("invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	d := GetDebugger(c)
	state := d.Submit(c.Request.Context(), fields)

	status := http.StatusOK
	switch {
	case state.IsValidationFailure():
		status = http.StatusBadRequest
	case state.Phase == service.PhaseFailed:
		status = http.StatusBadGateway
	}
	c.JSON(status, stateResponse(d))
}

// State processes GET /api/v1/state requests.
func (h *APIHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, stateResponse(GetDebugger(c)))
}

// Examples processes GET /api/v1/examples requests.
func (h *APIHandler) Examples(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"examples": form.Examples()})
}

// Example processes GET /api/v1/examples/:kind requests. The fields are
// returned without touching any workspace.
func (h *APIHandler) Example(c *gin.Context) {
	fields, err := form.LoadExample(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, fields)
}

// TestRequest processes POST /api/v1/test-request requests.
func (h *APIHandler) TestRequest(c *gin.Context) {
	var req domain.APIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.Method == "" {
		req.Method = domain.MethodGet
	}
	if req.Headers == nil {
		req.Headers = map[string]string{}
	}

	body, err := h.client.TestRequest(c.Request.Context(), &req)
	if err != nil {
		h.logger.Info("test request failed", zap.Error(err))
		c.JSON(backendStatus(err), gin.H{"error": domain.UserMessage(err)})
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

// Me processes GET /api/v1/me requests.
func (h *APIHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, GetIdentity(c))
}

func stateResponse(d *service.Debugger) StateResponse {
	state := d.State()
	return StateResponse{
		State: state,
		View:  render.Render(state),
		Form:  d.Fields(),
	}
}

func backendStatus(err error) int {
	var be *domain.BackendError
	if errors.As(err, &be) && be.StatusCode >= 400 && be.StatusCode < 500 {
		return be.StatusCode
	}
	return http.StatusBadGateway
}
