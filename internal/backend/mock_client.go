// Package backend provides the client for the remote diagnostic backend.
package backend

import (
	"context"
	"encoding/json"

	"github.com/api-debugger/internal/domain"
	"github.com/api-debugger/internal/rules"
	"go.uber.org/zap"
)

// MockClient implements the Client interface without network access.
// Diagnoses come from the rule engine.
type MockClient struct {
	engine *rules.Engine
	logger *zap.Logger
}

// NewMockClient creates a new offline backend client.
func NewMockClient(engine *rules.Engine, logger *zap.Logger) *MockClient {
	return &MockClient{
		engine: engine,
		logger: logger.Named("mock_backend_client"),
	}
}

// Debug returns the rule engine's diagnosis.
func (c *MockClient) Debug(ctx context.Context, req *domain.DiagnosticRequest) (*domain.DiagnosticResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.BackendError{Op: "debug", Err: err}
	}
	c.logger.Debug("mock diagnosis", zap.Int("issue_length", len(req.IssueDescription)))
	return c.engine.Diagnose(req), nil
}

// TestRequest echoes the request back.
func (c *MockClient) TestRequest(ctx context.Context, req *domain.APIRequest) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.BackendError{Op: "test_request", Err: err}
	}
	out, err := json.Marshal(map[string]any{
		"mode":    "mock",
		"request": req,
	})
	if err != nil {
		return nil, &domain.BackendError{Op: "test_request", Err: err}
	}
	return out, nil
}

// Health always reports healthy for the mock client.
func (c *MockClient) Health(ctx context.Context) (json.RawMessage, error) {
	return json.RawMessage(`{"status":"healthy","mode":"mock"}`), nil
}
