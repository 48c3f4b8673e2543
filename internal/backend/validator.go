package backend

import (
	"fmt"
	"strings"

	"github.com/api-debugger/internal/domain"
)

// DefaultValidator implements ResponseValidator. Every field of a diagnosis is
// optional, but a response with none of them is not a diagnosis.
type DefaultValidator struct{}

// NewDefaultValidator creates a new response validator.
func NewDefaultValidator() *DefaultValidator {
	return &DefaultValidator{}
}

// Validate checks the decoded body of a 2xx /debug response.
func (v *DefaultValidator) Validate(result *domain.DiagnosticResponse) error {
	if result == nil {
		return fmt.Errorf("%w: response is empty", domain.ErrInvalidBackendResponse)
	}

	if strings.TrimSpace(result.RootCause) == "" &&
		strings.TrimSpace(result.Solution) == "" &&
		len(result.AnalysisResults) == 0 &&
		strings.TrimSpace(result.Status) == "" {
		return fmt.Errorf("%w: no root_cause, solution, analysis_results or status", domain.ErrInvalidBackendResponse)
	}

	return nil
}
