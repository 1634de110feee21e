package coordinator

import (
	"github.com/1broseidon/tilecore/internal/platform"
	"github.com/1broseidon/tilecore/internal/window"
	"github.com/1broseidon/tilecore/internal/workspace"
)

// MonitorChange is emitted when a monitor starts showing another workspace.
// Old is nil on the first assignment.
type MonitorChange struct {
	Monitor platform.Display
	Old     *workspace.Workspace
	New     *workspace.Workspace
}

// RouteKind says how a window's owning workspace changed.
type RouteKind int

const (
	RouteAdded RouteKind = iota
	RouteRemoved
	RouteMigrated
)

func (k RouteKind) String() string {
	switch k {
	case RouteAdded:
		return "added"
	case RouteRemoved:
		return "removed"
	case RouteMigrated:
		return "migrated"
	default:
		return "unknown"
	}
}

// Route describes one WindowRouted event. For RouteRemoved, Workspace is the
// former owner. For RouteMigrated, From is the previous owner.
type Route struct {
	Kind      RouteKind
	Window    *window.Window
	Workspace *workspace.Workspace
	From      *workspace.Workspace
}

// LayoutEngineChange is passed through TriggerActiveLayoutEngineChanged.
type LayoutEngineChange struct {
	Workspace *workspace.Workspace
	Engine    workspace.LayoutEngine
}

// Rename is passed through TriggerWorkspaceRenamed.
type Rename struct {
	Workspace *workspace.Workspace
	OldName   string
}

// OnWorkspaceAdded subscribes to WorkspaceAdded.
func (c *Coordinator) OnWorkspaceAdded(fn func(*workspace.Workspace)) func() {
	return c.workspaceAdded.Subscribe(fn)
}

// OnWorkspaceRemoved subscribes to WorkspaceRemoved.
func (c *Coordinator) OnWorkspaceRemoved(fn func(*workspace.Workspace)) func() {
	return c.workspaceRemoved.Subscribe(fn)
}

// OnMonitorWorkspaceChanged subscribes to MonitorWorkspaceChanged.
func (c *Coordinator) OnMonitorWorkspaceChanged(fn func(MonitorChange)) func() {
	return c.monitorChanged.Subscribe(fn)
}

// OnWindowRouted subscribes to WindowRouted.
func (c *Coordinator) OnWindowRouted(fn func(Route)) func() {
	return c.windowRouted.Subscribe(fn)
}

// OnActiveWorkspaceChanged subscribes to changes of the active workspace.
func (c *Coordinator) OnActiveWorkspaceChanged(fn func(*workspace.Workspace)) func() {
	return c.activeChanged.Subscribe(fn)
}

// OnActiveLayoutEngineChanged subscribes to ActiveLayoutEngineChanged.
func (c *Coordinator) OnActiveLayoutEngineChanged(fn func(LayoutEngineChange)) func() {
	return c.engineChanged.Subscribe(fn)
}

// OnWorkspaceRenamed subscribes to WorkspaceRenamed.
func (c *Coordinator) OnWorkspaceRenamed(fn func(Rename)) func() {
	return c.renamed.Subscribe(fn)
}

// TriggerActiveLayoutEngineChanged lets layout collaborators signal through
// the coordinator.
func (c *Coordinator) TriggerActiveLayoutEngineChanged(ev LayoutEngineChange) {
	c.engineChanged.Emit(ev)
}

// TriggerWorkspaceRenamed lets rename collaborators signal through the
// coordinator.
func (c *Coordinator) TriggerWorkspaceRenamed(ev Rename) {
	c.renamed.Emit(ev)
}
