// Package service contains the diagnostic client state machine.
package service

import (
	"time"

	"github.com/api-debugger/internal/domain"
)

// Phase is the lifecycle position of a workspace's diagnostic request.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseInFlight  Phase = "in_flight"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// State is exactly one of Idle, InFlight, Succeeded(Response) or Failed(Message).
// Construct it only through the helpers below so the payload always matches the phase.
type State struct {
	Phase Phase `json:"phase" yaml:"phase"`

	// Response is set only when Phase is PhaseSucceeded.
	Response *domain.DiagnosticResponse `json:"response,omitempty" yaml:"response,omitempty"`

	// Message is set only when Phase is PhaseFailed.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`

	// Err is the failure behind Message.
	Err error `json:"-" yaml:"-"`

	// Request is what was sent, when something was sent.
	Request *domain.DiagnosticRequest `json:"-" yaml:"-"`

	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Idle is the state before any submission.
func Idle() State {
	return State{Phase: PhaseIdle, UpdatedAt: time.Now()}
}

// InFlight is the state while the backend call is outstanding.
func InFlight(req *domain.DiagnosticRequest) State {
	return State{Phase: PhaseInFlight, Request: req, UpdatedAt: time.Now()}
}

// Succeeded carries the backend diagnosis.
func Succeeded(req *domain.DiagnosticRequest, resp *domain.DiagnosticResponse) State {
	return State{Phase: PhaseSucceeded, Request: req, Response: resp, UpdatedAt: time.Now()}
}

// Failed carries the message shown to the user.
func Failed(req *domain.DiagnosticRequest, err error) State {
	return State{
		Phase:     PhaseFailed,
		Request:   req,
		Message:   domain.UserMessage(err),
		Err:       err,
		UpdatedAt: time.Now(),
	}
}

// IsValidationFailure reports whether the state failed before reaching the backend.
func (s State) IsValidationFailure() bool {
	return s.Phase == PhaseFailed && domain.IsValidation(s.Err)
}
