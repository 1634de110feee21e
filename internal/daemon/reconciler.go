package daemon

import (
	"context"
	"log/slog"
	"time"

	"github.com/1broseidon/tilecore/internal/platform"
	"github.com/1broseidon/tilecore/internal/window"
)

// WindowLister returns the windows the host currently manages.
type WindowLister interface {
	ListWindows() ([]platform.Window, error)
}

// ReconcilerConfig holds configuration for the reconciler.
type ReconcilerConfig struct {
	Interval time.Duration
	Logger   *slog.Logger
}

// Reconciler periodically checks the lifecycle manager against the host's
// window list and corrects drift from missed notifications.
type Reconciler struct {
	interval time.Duration
	host     WindowLister
	manager  *window.Manager
	loop     *Loop
	logger   *slog.Logger
}

// NewReconciler creates a new reconciler. A zero Interval disables Run.
func NewReconciler(cfg ReconcilerConfig, host WindowLister, manager *window.Manager, loop *Loop) *Reconciler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		interval: cfg.Interval,
		host:     host,
		manager:  manager,
		loop:     loop,
		logger:   logger,
	}
}

// Run starts the reconciliation loop. Blocks until context is cancelled.
// Each pass executes on the daemon loop.
func (r *Reconciler) Run(ctx context.Context) {
	if r.interval <= 0 {
		r.logger.Info("reconciler disabled")
		return
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("reconciler started", "interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("reconciler stopped")
			return
		case <-ticker.C:
			if err := r.loop.Do(ctx, r.ReconcileNow); err != nil && ctx.Err() == nil {
				r.logger.Warn("reconcile pass failed", "error", err)
			}
		}
	}
}

// ReconcileNow performs a single pass on the calling goroutine, which must
// be the daemon loop.
func (r *Reconciler) ReconcileNow() error {
	live, err := r.host.ListWindows()
	if err != nil {
		r.logger.Error("reconciler: failed to list windows", "error", err)
		return err
	}

	liveIDs := make(map[window.Handle]struct{}, len(live))
	for _, w := range live {
		liveIDs[w.ID] = struct{}{}
	}

	// Handles() is sorted, so destroy notifications go out in a stable order.
	var orphaned int
	for _, handle := range r.manager.Handles() {
		if _, ok := liveIDs[handle]; ok {
			continue
		}
		orphaned++
		r.logger.Info("reconciler: window vanished without notification",
			"window_id", handle)
		r.manager.Dispatch(platform.HostEvent{Kind: platform.HostWindowDestroyed, Window: handle})
	}

	var adopted int
	for _, w := range live {
		if _, ok := r.manager.Lookup(w.ID); ok {
			continue
		}
		r.manager.Dispatch(platform.HostEvent{Kind: platform.HostWindowCreated, Window: w.ID, Bounds: w.Bounds})
		if _, ok := r.manager.Lookup(w.ID); ok {
			adopted++
		}
	}

	if orphaned > 0 || adopted > 0 {
		r.logger.Info("reconciled window state", "orphaned", orphaned, "adopted", adopted)
	}
	return nil
}
