// Package backend provides the client for the remote diagnostic backend.
package backend

import (
	"context"
	"encoding/json"

	"github.com/api-debugger/internal/domain"
)

// Client defines the interface for diagnostic backend interactions.
// Every method issues at most one outbound call and never retries.
type Client interface {
	// Debug sends a diagnostic request and returns the backend's diagnosis.
	// The context carries cancellation; the client adds no deadline of its own.
	Debug(ctx context.Context, req *domain.DiagnosticRequest) (*domain.DiagnosticResponse, error)

	// TestRequest asks the backend to replay a request and returns its answer untouched.
	TestRequest(ctx context.Context, req *domain.APIRequest) (json.RawMessage, error)

	// Health returns the backend liveness payload untouched.
	Health(ctx context.Context) (json.RawMessage, error)
}

// ResponseValidator defines the interface for validating backend diagnoses.
type ResponseValidator interface {
	// Validate checks that a successful response actually carries a diagnosis.
	Validate(result *domain.DiagnosticResponse) error
}
