package scan

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/snapsift/fileset/internal/cancel"
)

// ErrAlreadyRunning is returned when a scan is requested while one is active.
var ErrAlreadyRunning = errors.New("scan: a scan is already in progress")

// ErrNoActiveScan is returned when Cancel is called with nothing running.
var ErrNoActiveScan = errors.New("scan: no scan is currently running")

// ActiveScan is a live view of the one scan a Manager may run at a time.
type ActiveScan struct {
	ScanID    string
	StartedAt time.Time
	Progress  *Progress
	token     *cancel.Token
}

// Manager enforces SPEC_FULL.md's single-active-scan invariant and exposes
// Start/Cancel. Safe for concurrent use.
type Manager struct {
	engine *Engine

	mu     sync.Mutex
	active *ActiveScan
}

// NewManager constructs a Manager bound to one engine (and so to one
// fileset store).
func NewManager(engine *Engine) *Manager {
	return &Manager{engine: engine}
}

// Start launches a scan in the background. Returns ErrAlreadyRunning if one
// is already in progress.
func (m *Manager) Start(parentCtx context.Context, cfg Config, onProgress func(Snapshot)) (*ActiveScan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active != nil {
		return nil, ErrAlreadyRunning
	}

	scanID := uuid.NewString()
	token := cancel.New()
	scanCtx, stop := token.WithContext(parentCtx)

	progress := &Progress{}
	active := &ActiveScan{ScanID: scanID, StartedAt: time.Now(), Progress: progress, token: token}
	m.active = active

	go func() {
		defer stop()
		err := m.engine.Run(scanCtx, scanID, cfg, onProgress)
		if err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("scan: run failed", "scan_id", scanID, "error", err)
		}

		m.mu.Lock()
		m.active = nil
		m.mu.Unlock()
	}()

	return active, nil
}

// Cancel requests cancellation of the running scan. Returns ErrNoActiveScan
// if idle. Cancellation is cooperative — the writer flushes whatever batch
// it already has buffered before the scan actually stops.
func (m *Manager) Cancel() (*ActiveScan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.active == nil {
		return nil, ErrNoActiveScan
	}
	snap := *m.active
	m.active.token.Cancel()
	return &snap, nil
}

// Active returns the currently running scan, or nil if idle.
func (m *Manager) Active() *ActiveScan {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil
	}
	snap := *m.active
	return &snap
}
