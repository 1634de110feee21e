package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"time"

	"github.com/1broseidon/tilecore/internal/config"
	"github.com/1broseidon/tilecore/internal/coordinator"
	"github.com/1broseidon/tilecore/internal/ipc"
	"github.com/1broseidon/tilecore/internal/platform"
	"github.com/1broseidon/tilecore/internal/tiling"
	"github.com/1broseidon/tilecore/internal/window"
	"github.com/1broseidon/tilecore/internal/workspace"
)

// settleInterval is how often finished moves are flushed from the host.
const settleInterval = 100 * time.Millisecond

// Host is the window system the daemon drives.
type Host interface {
	platform.Backend
	platform.EventSource
}

// Settler is implemented by hosts that derive move-end events from quiet
// periods.
type Settler interface {
	Settle(now time.Time)
}

// Daemon wires the lifecycle manager, coordinator and layout engines to a
// host and serializes all access to them on one Loop.
type Daemon struct {
	cfg        *config.Config
	host       Host
	manager    *window.Manager
	coord      *coordinator.Coordinator
	loop       *Loop
	reconciler *Reconciler
	publisher  *DesktopPublisher
	logger     *slog.Logger
	started    time.Time
}

var _ ipc.Controller = (*Daemon)(nil)

// New builds a daemon from cfg. Nothing touches the host until Start.
func New(cfg *config.Config, host Host, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Daemon{
		cfg:    cfg,
		host:   host,
		logger: logger,
	}

	d.manager = window.NewManager(host, host, logger.With("component", "window"))
	d.applyFilters()

	d.coord = coordinator.New(host, d.manager, logger.With("component", "coordinator"))
	for _, name := range cfg.Workspaces {
		engine, err := d.engineFor(cfg.LayoutNameFor(name))
		if err != nil {
			return nil, fmt.Errorf("workspace %q: %w", name, err)
		}
		if _, err := d.coord.AddNamed(name, engine); err != nil {
			return nil, fmt.Errorf("workspace %q: %w", name, err)
		}
	}
	if cfg.ScreenPadding != (config.Margins{}) {
		d.coord.AddProxyLayoutEngine(tiling.PaddingProxy(cfg.ScreenPadding))
	}

	d.loop = NewLoop(settleInterval, d.tick, logger.With("component", "loop"))
	d.reconciler = NewReconciler(ReconcilerConfig{
		Interval: cfg.ReconcileInterval(),
		Logger:   logger.With("component", "reconciler"),
	}, host, d.manager, d.loop)

	if cfg.PublishDesktops {
		if dh, ok := host.(DesktopHost); ok {
			d.publisher = NewDesktopPublisher(dh, d.coord, logger.With("component", "desktops"))
		} else {
			logger.Warn("publish_desktops is set but the host cannot publish desktops")
		}
	}

	return d, nil
}

// Coordinator returns the coordinator. Callers must be on the loop or in an
// X callback.
func (d *Daemon) Coordinator() *coordinator.Coordinator { return d.coord }

// Manager returns the window lifecycle manager.
func (d *Daemon) Manager() *window.Manager { return d.manager }

// Loop returns the daemon loop.
func (d *Daemon) Loop() *Loop { return d.loop }

// Start initializes the coordinator and the lifecycle manager, then runs one
// reconcile pass. It must run before Run, on the goroutine that will call
// Run.
func (d *Daemon) Start() error {
	d.started = time.Now()

	if err := d.coord.Initialize(); err != nil {
		return fmt.Errorf("initialize coordinator: %w", err)
	}
	if d.publisher != nil {
		d.publisher.Attach()
	}
	if err := d.manager.Initialize(); err != nil {
		return fmt.Errorf("initialize window manager: %w", err)
	}
	if err := d.reconciler.ReconcileNow(); err != nil {
		d.logger.Warn("initial reconcile failed", "error", err)
	}

	d.logger.Info("daemon started",
		"workspaces", len(d.coord.Workspaces()),
		"monitors", len(d.coord.Monitors()),
		"windows", len(d.manager.Handles()))
	return nil
}

// Run drives the loop and the reconciler until ctx is cancelled or the
// host's event loop quits. before, after and quit come from MainPing.
func (d *Daemon) Run(ctx context.Context, before, after, quit <-chan struct{}) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go d.reconciler.Run(ctx)
	return d.loop.Run(ctx, before, after, quit)
}

// Close detaches observers. Call it after Run returns.
func (d *Daemon) Close() {
	if d.publisher != nil {
		d.publisher.Detach()
	}
	d.coord.Close()
}

// Reload applies cfg to the running daemon. Filters, layouts and gap size
// take effect at once and workspaces cfg names that do not exist yet are
// added. Workspaces missing from cfg are kept. If any layout fails to build,
// nothing changes.
func (d *Daemon) Reload(ctx context.Context, cfg *config.Config) error {
	return d.loop.Do(ctx, func() error {
		logger := d.logger.With("component", "tiling")

		current := d.coord.Workspaces()
		engines := make([]*tiling.Engine, len(current))
		for i, ws := range current {
			engine, err := tiling.EngineFromConfig(cfg, reloadLayoutName(cfg, ws), d.host, logger)
			if err != nil {
				return fmt.Errorf("workspace %q: %w", ws.Name(), err)
			}
			engines[i] = engine
		}
		var added []string
		addedEngines := make(map[string]*tiling.Engine)
		for _, name := range cfg.Workspaces {
			if _, ok := d.coord.TryGet(name); ok {
				continue
			}
			engine, err := tiling.EngineFromConfig(cfg, cfg.LayoutNameFor(name), d.host, logger)
			if err != nil {
				return fmt.Errorf("workspace %q: %w", name, err)
			}
			added = append(added, name)
			addedEngines[name] = engine
		}

		for _, key := range restartOnly(d.cfg, cfg) {
			d.logger.Warn(key + " changes take effect after a restart")
		}
		d.cfg = cfg
		d.applyFilters()

		for i, ws := range current {
			if err := d.coord.SetLayoutEngine(ws.Name(), engines[i]); err != nil {
				return err
			}
		}
		for _, name := range added {
			if _, err := d.coord.AddNamed(name, addedEngines[name]); err != nil {
				return fmt.Errorf("workspace %q: %w", name, err)
			}
		}

		d.logger.Info("configuration reloaded",
			"workspaces", len(d.coord.Workspaces()),
			"added", len(added))
		return nil
	})
}

// reloadLayoutName picks the layout for an existing workspace: the
// configured one, else its current layout if it still exists, else the
// default.
func reloadLayoutName(cfg *config.Config, ws *workspace.Workspace) string {
	if name, ok := cfg.WorkspaceLayouts[ws.Name()]; ok && name != "" {
		return name
	}
	for _, configured := range cfg.Workspaces {
		if configured == ws.Name() {
			return cfg.DefaultLayout
		}
	}
	if engine := ws.BaseEngine(); engine != nil {
		if _, ok := cfg.Layouts[engine.Name()]; ok {
			return engine.Name()
		}
	}
	return cfg.DefaultLayout
}

func (d *Daemon) applyFilters() {
	filters := d.manager.Filters()
	filters.Remove("classes")
	filters.Remove("titles")
	lr := d.cfg.LocationRestoringFilters
	if len(lr.Classes) > 0 {
		filters.Add("classes", window.ExcludeClasses(lr.Classes...))
	}
	if len(lr.Titles) > 0 {
		filters.Add("titles", window.ExcludeTitles(lr.Titles...))
	}
}

func (d *Daemon) tick(now time.Time) {
	if s, ok := d.host.(Settler); ok {
		s.Settle(now)
	}
}

func (d *Daemon) engineFor(layoutName string) (*tiling.Engine, error) {
	return tiling.EngineFromConfig(d.cfg, layoutName, d.host, d.logger.With("component", "tiling"))
}

// Status implements ipc.Controller.
func (d *Daemon) Status(ctx context.Context) (ipc.StatusData, error) {
	var status ipc.StatusData
	err := d.loop.Do(ctx, func() error {
		if active, ok := d.coord.ActiveWorkspace(); ok {
			status.ActiveWorkspace = active.Name()
		}
		status.Workspaces = len(d.coord.Workspaces())
		status.Monitors = len(d.coord.Monitors())
		status.Windows = len(d.manager.Handles())
		status.UptimeSeconds = int64(time.Since(d.started).Seconds())
		status.DaemonRunning = true
		return nil
	})
	return status, err
}

// Monitors implements ipc.Controller.
func (d *Daemon) Monitors(ctx context.Context) ([]ipc.MonitorInfo, error) {
	var out []ipc.MonitorInfo
	err := d.loop.Do(ctx, func() error {
		for _, m := range d.coord.Monitors() {
			info := ipc.MonitorInfo{
				ID:     m.ID,
				Name:   m.Name,
				X:      m.Bounds.X,
				Y:      m.Bounds.Y,
				Width:  m.Bounds.Width,
				Height: m.Bounds.Height,
			}
			if ws, ok := d.coord.WorkspaceForMonitor(m.ID); ok {
				info.Workspace = ws.Name()
			}
			out = append(out, info)
		}
		return nil
	})
	return out, err
}

// Workspaces implements ipc.Controller.
func (d *Daemon) Workspaces(ctx context.Context) ([]ipc.WorkspaceInfo, error) {
	var out []ipc.WorkspaceInfo
	err := d.loop.Do(ctx, func() error {
		for _, ws := range d.coord.Workspaces() {
			out = append(out, d.describe(ws))
		}
		return nil
	})
	return out, err
}

// AddWorkspace implements ipc.Controller.
func (d *Daemon) AddWorkspace(ctx context.Context, name, layout string) (ipc.WorkspaceInfo, error) {
	var info ipc.WorkspaceInfo
	err := d.loop.Do(ctx, func() error {
		if layout == "" {
			layout = d.cfg.DefaultLayout
		}
		engine, err := d.engineFor(layout)
		if err != nil {
			return err
		}
		ws, err := d.coord.AddNamed(name, engine)
		if err != nil {
			return err
		}
		info = d.describe(ws)
		return nil
	})
	return info, err
}

// RemoveWorkspace implements ipc.Controller.
func (d *Daemon) RemoveWorkspace(ctx context.Context, name string) (bool, error) {
	var removed bool
	err := d.loop.Do(ctx, func() error {
		var err error
		removed, err = d.coord.Remove(name)
		return err
	})
	return removed, err
}

// ActivateWorkspace implements ipc.Controller.
func (d *Daemon) ActivateWorkspace(ctx context.Context, name string, monitor *int) error {
	return d.loop.Do(ctx, func() error {
		if monitor == nil {
			return d.coord.Activate(name)
		}
		return d.coord.ActivateOn(name, *monitor)
	})
}

// RenameWorkspace implements ipc.Controller.
func (d *Daemon) RenameWorkspace(ctx context.Context, oldName, newName string) error {
	return d.loop.Do(ctx, func() error {
		return d.coord.Rename(oldName, newName)
	})
}

// MoveWindow implements ipc.Controller.
func (d *Daemon) MoveWindow(ctx context.Context, windowID uint32, workspaceName string) error {
	return d.loop.Do(ctx, func() error {
		return d.coord.MoveWindow(window.Handle(windowID), workspaceName)
	})
}

func (d *Daemon) describe(ws *workspace.Workspace) ipc.WorkspaceInfo {
	info := ipc.WorkspaceInfo{
		ID:      int(ws.ID()),
		Name:    ws.Name(),
		Windows: []uint32{},
	}
	if engine := ws.BaseEngine(); engine != nil {
		info.Layout = engine.Name()
	}
	if m, ok := d.coord.GetMonitorForWorkspace(ws.Name()); ok {
		id := m.ID
		info.Monitor = &id
	}
	if active, ok := d.coord.ActiveWorkspace(); ok && active == ws {
		info.Active = true
	}
	for _, w := range ws.Windows() {
		info.Windows = append(info.Windows, uint32(w.Handle()))
	}
	return info
}

// restartOnly lists the config keys that differ between old and next but are
// only read at startup.
func restartOnly(old, next *config.Config) []string {
	var keys []string
	if next.ScreenPadding != old.ScreenPadding {
		keys = append(keys, "screen_padding")
	}
	if next.ReconcileInterval() != old.ReconcileInterval() {
		keys = append(keys, "reconcile_interval_seconds")
	}
	if !maps.Equal(next.WorkspaceHotkeys, old.WorkspaceHotkeys) {
		keys = append(keys, "workspace_hotkeys")
	}
	return keys
}
