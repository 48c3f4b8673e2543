package service

import (
	"context"
	"sync"
	"time"

	"github.com/api-debugger/internal/backend"
	"github.com/api-debugger/pkg/sanitizer"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// workspace is a Debugger bound to the subject that created it.
type workspace struct {
	owner    string
	debugger *Debugger
}

// Workspaces keeps one Debugger per browser workspace, in memory only.
// A workspace is only ever handed back to the subject that created it.
type Workspaces struct {
	client    backend.Client
	sanitizer *sanitizer.Sanitizer
	ttl       time.Duration
	logger    *zap.Logger

	mu    sync.Mutex
	items map[string]*workspace
}

// NewWorkspaces creates an empty registry. Workspaces idle longer than ttl
// are dropped by Sweep.
func NewWorkspaces(client backend.Client, s *sanitizer.Sanitizer, ttl time.Duration, logger *zap.Logger) *Workspaces {
	return &Workspaces{
		client:    client,
		sanitizer: s,
		ttl:       ttl,
		logger:    logger.Named("workspaces"),
		items:     make(map[string]*workspace),
	}
}

// Get returns owner's Debugger for id, creating it when id is unknown, not a
// valid workspace id, or belongs to another subject. A workspace found under
// the wrong owner is closed and dropped so its fields cannot leak. The
// returned id is the one to hand back to the browser.
func (w *Workspaces) Get(id, owner string) (string, *Debugger) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := uuid.Parse(id); err == nil {
		if ws, ok := w.items[id]; ok {
			if ws.owner == owner {
				return id, ws.debugger
			}
			ws.debugger.Close()
			delete(w.items, id)
			w.logger.Info("workspace dropped on owner change", zap.String("workspace_id", id))
		}
	}
	id = uuid.NewString()

	d := NewDebugger(w.client, w.sanitizer, w.logger)
	w.items[id] = &workspace{owner: owner, debugger: d}
	w.logger.Debug("workspace created", zap.String("workspace_id", id))
	return id, d
}

// Len returns the number of live workspaces.
func (w *Workspaces) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.items)
}

// Sweep removes workspaces idle since before now-ttl and returns how many went.
func (w *Workspaces) Sweep(now time.Time) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	removed := 0
	for id, ws := range w.items {
		if now.Sub(ws.debugger.LastUsed()) > w.ttl {
			ws.debugger.Close()
			delete(w.items, id)
			removed++
		}
	}
	if removed > 0 {
		w.logger.Debug("workspaces evicted", zap.Int("count", removed))
	}
	return removed
}

// Run sweeps periodically until ctx is done.
func (w *Workspaces) Run(ctx context.Context) {
	interval := w.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			w.Sweep(now)
		}
	}
}
