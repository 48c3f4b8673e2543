// Package service contains the diagnostic client state machine.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/api-debugger/internal/backend"
	"github.com/api-debugger/internal/domain"
	"github.com/api-debugger/internal/form"
	"github.com/api-debugger/pkg/sanitizer"
	"go.uber.org/zap"
)

// Observer is notified after every state transition.
type Observer func(State)

// Debugger drives one workspace's diagnostic requests.
//
// A new Submit while a previous one is in flight cancels the previous call
// and discards its outcome (cancel-and-replace).
type Debugger struct {
	client    backend.Client
	sanitizer *sanitizer.Sanitizer
	logger    *zap.Logger

	mu         sync.Mutex
	state      State
	fields     form.Fields
	generation uint64
	cancel     context.CancelFunc
	observer   Observer
	lastUsed   time.Time
}

// NewDebugger creates a Debugger in the Idle state.
func NewDebugger(client backend.Client, s *sanitizer.Sanitizer, logger *zap.Logger) *Debugger {
	return &Debugger{
		client:    client,
		sanitizer: s,
		logger:    logger.Named("debugger"),
		state:     Idle(),
		fields:    form.Fields{Method: string(domain.MethodGet)},
		lastUsed:  time.Now(),
	}
}

// Observe registers fn to be called after each transition.
func (d *Debugger) Observe(fn Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observer = fn
}

// State returns the current state.
func (d *Debugger) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Fields returns the current form fields.
func (d *Debugger) Fields() form.Fields {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fields
}

// LastUsed returns when the workspace was last touched.
func (d *Debugger) LastUsed() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastUsed
}

// LoadExample replaces the form fields with a canned scenario.
// The result state is left untouched.
func (d *Debugger) LoadExample(kind string) (form.Fields, error) {
	fields, err := form.LoadExample(kind)
	if err != nil {
		return form.Fields{}, err
	}

	d.mu.Lock()
	d.fields = fields
	d.lastUsed = time.Now()
	d.mu.Unlock()

	return fields, nil
}

// Reset cancels any outstanding call and returns to Idle.
func (d *Debugger) Reset() {
	d.mu.Lock()
	d.generation++
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.lastUsed = time.Now()
	d.state = Idle()
	observer := d.observer
	d.mu.Unlock()

	if observer != nil {
		observer(Idle())
	}
}

// Close cancels any outstanding call. Used when a workspace is evicted.
func (d *Debugger) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.generation++
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// Submit builds a request from fields and sends it to the backend.
//
// Validation failures go straight to Failed without a network call.
// Otherwise the state is InFlight for the duration of exactly one call and
// always leaves InFlight when the call returns. If a newer Submit replaced
// this one, the newer submission's state is returned instead.
func (d *Debugger) Submit(ctx context.Context, fields form.Fields) (result State) {
	d.mu.Lock()
	d.fields = fields
	d.lastUsed = time.Now()
	d.generation++
	gen := d.generation
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	req, err := form.Build(fields)
	if err != nil {
		d.logger.Debug("submission rejected by validation", zap.Error(err))
		return d.transition(gen, Failed(nil, err))
	}

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	d.mu.Lock()
	if gen != d.generation {
		d.mu.Unlock()
		return d.State()
	}
	d.cancel = cancel
	d.mu.Unlock()

	d.transition(gen, InFlight(req))

	final := Failed(req, errors.New(domain.GenericErrorMessage))
	defer func() {
		d.mu.Lock()
		if d.generation == gen {
			d.cancel = nil
		}
		d.mu.Unlock()
		result = d.transition(gen, final)
	}()

	if req.APIRequest != nil {
		d.logger.Debug("submitting diagnostic request",
			zap.String("method", string(req.APIRequest.Method)),
			zap.String("url", d.sanitizer.Mask(req.APIRequest.URL)),
			zap.Any("headers", d.sanitizer.MaskHeaders(req.APIRequest.Headers)),
		)
	}

	startTime := time.Now()
	resp, err := d.client.Debug(callCtx, req)
	switch {
	case err != nil:
		d.logger.Info("diagnostic request failed",
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)),
		)
		final = Failed(req, err)
	case resp == nil:
		final = Failed(req, errors.New(domain.GenericErrorMessage))
	default:
		d.logger.Info("diagnostic request completed",
			zap.String("status", resp.Status),
			zap.Duration("duration", time.Since(startTime)),
		)
		final = Succeeded(req, resp)
	}

	return final
}

// transition installs next if gen is still current and returns the state in
// effect afterwards.
func (d *Debugger) transition(gen uint64, next State) State {
	d.mu.Lock()
	if gen != d.generation {
		current := d.state
		d.mu.Unlock()
		d.logger.Debug("discarding superseded outcome", zap.String("phase", string(next.Phase)))
		return current
	}
	d.state = next
	observer := d.observer
	d.mu.Unlock()

	if observer != nil {
		observer(next)
	}
	return next
}
