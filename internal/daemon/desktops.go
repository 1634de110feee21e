package daemon

import (
	"log/slog"

	"github.com/1broseidon/tilecore/internal/coordinator"
	"github.com/1broseidon/tilecore/internal/platform"
	"github.com/1broseidon/tilecore/internal/workspace"
)

// DesktopHost publishes EWMH desktop hints.
type DesktopHost interface {
	PublishDesktops(names []string) error
	PublishCurrentDesktop(index int) error
	SetWindowDesktop(windowID platform.WindowID, desktop int) error
}

// DesktopPublisher mirrors workspace names, the active workspace and window
// ownership into EWMH desktop properties so pagers and bars can follow along.
type DesktopPublisher struct {
	host   DesktopHost
	coord  *coordinator.Coordinator
	logger *slog.Logger
	unsubs []func()
}

func NewDesktopPublisher(host DesktopHost, coord *coordinator.Coordinator, logger *slog.Logger) *DesktopPublisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &DesktopPublisher{host: host, coord: coord, logger: logger}
}

// Attach subscribes to coordinator events and publishes the current state.
func (p *DesktopPublisher) Attach() {
	p.unsubs = append(p.unsubs,
		p.coord.OnWorkspaceAdded(func(*workspace.Workspace) { p.publishAll() }),
		p.coord.OnWorkspaceRemoved(func(*workspace.Workspace) { p.publishAll() }),
		p.coord.OnWorkspaceRenamed(func(coordinator.Rename) { p.publishNames() }),
		p.coord.OnActiveWorkspaceChanged(func(*workspace.Workspace) { p.publishCurrent() }),
		p.coord.OnWindowRouted(p.handleRouted),
	)
	p.publishAll()
}

// Detach removes the subscriptions.
func (p *DesktopPublisher) Detach() {
	for _, fn := range p.unsubs {
		fn()
	}
	p.unsubs = nil
}

func (p *DesktopPublisher) handleRouted(r coordinator.Route) {
	if r.Kind == coordinator.RouteRemoved {
		return
	}
	p.tag(r.Window.Handle(), p.indexOf(r.Workspace))
}

// publishAll republishes names and current desktop and retags every window,
// since removing a workspace shifts the indices after it.
func (p *DesktopPublisher) publishAll() {
	p.publishNames()
	p.publishCurrent()
	for i, ws := range p.coord.Workspaces() {
		for _, w := range ws.Windows() {
			p.tag(w.Handle(), i)
		}
	}
}

func (p *DesktopPublisher) publishNames() {
	workspaces := p.coord.Workspaces()
	names := make([]string, len(workspaces))
	for i, ws := range workspaces {
		names[i] = ws.Name()
	}
	if err := p.host.PublishDesktops(names); err != nil {
		p.logger.Warn("failed to publish desktops", "error", err)
	}
}

func (p *DesktopPublisher) publishCurrent() {
	active, ok := p.coord.ActiveWorkspace()
	if !ok {
		return
	}
	if err := p.host.PublishCurrentDesktop(p.indexOf(active)); err != nil {
		p.logger.Warn("failed to publish current desktop", "error", err)
	}
}

func (p *DesktopPublisher) tag(handle platform.WindowID, index int) {
	if index < 0 {
		return
	}
	if err := p.host.SetWindowDesktop(handle, index); err != nil {
		p.logger.Debug("failed to tag window desktop", "window_id", handle, "desktop", index, "error", err)
	}
}

func (p *DesktopPublisher) indexOf(ws *workspace.Workspace) int {
	for i, candidate := range p.coord.Workspaces() {
		if candidate == ws {
			return i
		}
	}
	return -1
}
