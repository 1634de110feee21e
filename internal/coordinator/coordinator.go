// Package coordinator owns the relationship between monitors, workspaces and
// the windows routed to them.
package coordinator

import (
	"fmt"
	"log/slog"

	"github.com/1broseidon/tilecore/internal/event"
	"github.com/1broseidon/tilecore/internal/platform"
	"github.com/1broseidon/tilecore/internal/window"
	"github.com/1broseidon/tilecore/internal/workspace"
)

// Monitors enumerates displays in a stable order and reports the focused one.
type Monitors interface {
	Displays() ([]platform.Display, error)
	ActiveDisplay() (platform.Display, error)
}

// WindowSource delivers window lifecycle events. *window.Manager satisfies it.
type WindowSource interface {
	OnAdded(fn func(*window.Window)) func()
	OnRemoved(fn func(*window.Window)) func()
	OnFocused(fn func(*window.Window)) func()
	OnMinimizeStarted(fn func(*window.Window)) func()
	OnMinimizeEnded(fn func(*window.Window)) func()
}

// Coordinator is the sole owner of the workspace list and of the
// window → workspace and monitor → workspace maps. After every public
// operation:
//
//   - every known monitor shows exactly one workspace,
//   - there are at least as many workspaces as monitors,
//   - every routed window appears in exactly one workspace, the one the
//     window map names.
//
// Coordinator is not safe for concurrent use; all calls, including the
// window event handlers, must happen on one goroutine.
type Coordinator struct {
	monitors Monitors
	source   WindowSource
	logger   *slog.Logger

	workspaces         []*workspace.Workspace
	nextID             workspace.ID
	displays           []platform.Display
	windowToWorkspace  map[window.Handle]workspace.ID
	monitorToWorkspace map[int]workspace.ID
	active             workspace.ID
	proxies            []workspace.ProxyFactory

	initialized bool
	unsubscribe []func()

	workspaceAdded   event.Signal[*workspace.Workspace]
	workspaceRemoved event.Signal[*workspace.Workspace]
	monitorChanged   event.Signal[MonitorChange]
	windowRouted     event.Signal[Route]
	activeChanged    event.Signal[*workspace.Workspace]
	engineChanged    event.Signal[LayoutEngineChange]
	renamed          event.Signal[Rename]
}

// New creates a coordinator. source may be nil when window events are fed
// through the Handle* methods directly.
func New(monitors Monitors, source WindowSource, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		monitors:           monitors,
		source:             source,
		logger:             logger,
		windowToWorkspace:  make(map[window.Handle]workspace.ID),
		monitorToWorkspace: make(map[int]workspace.ID),
	}
}

// Initialize enumerates monitors and assigns workspaces[i] to monitors[i] in
// enumeration order. workspaces[0] becomes active. Fewer workspaces than
// monitors is fatal and reported as *InvariantError.
func (c *Coordinator) Initialize() error {
	if c.initialized {
		return ErrAlreadyInitialized
	}
	displays, err := c.monitors.Displays()
	if err != nil {
		return fmt.Errorf("enumerate monitors: %w", err)
	}
	if len(c.workspaces) < len(displays) {
		return &InvariantError{Workspaces: len(c.workspaces), Monitors: len(displays), Op: "initialize"}
	}

	c.displays = append([]platform.Display(nil), displays...)
	c.initialized = true

	for _, ws := range c.workspaces {
		ws.Initialize(c.proxies)
	}
	for i, d := range c.displays {
		c.show(c.workspaces[i], d)
	}
	if len(c.workspaces) > 0 {
		c.setActive(c.workspaces[0].ID())
	}

	if c.source != nil {
		c.unsubscribe = append(c.unsubscribe,
			c.source.OnAdded(c.HandleWindowAdded),
			c.source.OnRemoved(c.HandleWindowRemoved),
			c.source.OnFocused(c.HandleWindowFocused),
			c.source.OnMinimizeStarted(c.handleMinimizeChanged),
			c.source.OnMinimizeEnded(c.handleMinimizeChanged),
		)
	}

	c.logger.Info("coordinator initialized",
		"monitors", len(c.displays),
		"workspaces", len(c.workspaces))
	return nil
}

// Close detaches from the window source.
func (c *Coordinator) Close() {
	for _, fn := range c.unsubscribe {
		fn()
	}
	c.unsubscribe = nil
}

// Add appends ws and emits WorkspaceAdded. Name collisions are the caller's
// responsibility; use AddNamed for a checked variant. Adding a workspace the
// coordinator already holds returns its id and changes nothing.
func (c *Coordinator) Add(ws *workspace.Workspace) workspace.ID {
	if ws == nil {
		return 0
	}
	if c.indexOf(ws) >= 0 {
		return ws.ID()
	}
	c.nextID++
	ws.SetID(c.nextID)
	c.workspaces = append(c.workspaces, ws)
	if c.initialized {
		ws.Initialize(c.proxies)
	}
	c.workspaceAdded.Emit(ws)
	return ws.ID()
}

// AddNamed creates and adds a workspace, rejecting empty or duplicate names.
func (c *Coordinator) AddNamed(name string, engine workspace.LayoutEngine) (*workspace.Workspace, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if _, ok := c.TryGet(name); ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	ws := workspace.New(name, engine)
	c.Add(ws)
	return ws, nil
}

// Remove removes the workspace called name. It returns false when no such
// workspace exists.
func (c *Coordinator) Remove(name string) (bool, error) {
	ws, ok := c.TryGet(name)
	if !ok {
		return false, nil
	}
	return c.RemoveWorkspace(ws)
}

// RemoveWorkspace removes ws. Its windows migrate to the last remaining
// workspace and monitors that showed it switch to the first workspace not
// shown anywhere. All maps are consistent before any event fires.
func (c *Coordinator) RemoveWorkspace(ws *workspace.Workspace) (bool, error) {
	idx := c.indexOf(ws)
	if idx < 0 {
		return false, nil
	}
	if len(c.workspaces)-1 < len(c.displays) {
		return false, &InvariantError{Workspaces: len(c.workspaces) - 1, Monitors: len(c.displays), Op: "remove"}
	}

	c.workspaces = append(c.workspaces[:idx:idx], c.workspaces[idx+1:]...)

	var target *workspace.Workspace
	if n := len(c.workspaces); n > 0 {
		target = c.workspaces[n-1]
	}

	var routes []Route
	for _, w := range ws.Windows() {
		ws.RemoveWindow(w.Handle())
		if target == nil {
			delete(c.windowToWorkspace, w.Handle())
			routes = append(routes, Route{Kind: RouteRemoved, Window: w, Workspace: ws})
			continue
		}
		target.AddWindow(w)
		c.windowToWorkspace[w.Handle()] = target.ID()
		routes = append(routes, Route{Kind: RouteMigrated, Window: w, Workspace: target, From: ws})
	}

	var changes []MonitorChange
	for _, d := range c.displays {
		if c.monitorToWorkspace[d.ID] != ws.ID() {
			continue
		}
		next := c.firstHidden()
		c.monitorToWorkspace[d.ID] = next.ID()
		changes = append(changes, MonitorChange{Monitor: d, Old: ws, New: next})
	}

	activeChanged := false
	if c.active == ws.ID() {
		c.active = 0
		if len(changes) > 0 {
			c.active = changes[0].New.ID()
		} else if len(c.workspaces) > 0 {
			c.active = c.workspaces[0].ID()
		}
		activeChanged = true
	}

	for _, ch := range changes {
		c.layout(ch.New)
	}
	if target != nil && len(routes) > 0 {
		c.layout(target)
	}

	c.logger.Info("workspace removed",
		"workspace", ws.Name(),
		"migrated_windows", len(routes),
		"reassigned_monitors", len(changes))

	c.workspaceRemoved.Emit(ws)
	for _, ch := range changes {
		c.monitorChanged.Emit(ch)
	}
	for _, r := range routes {
		c.windowRouted.Emit(r)
	}
	if activeChanged {
		active, _ := c.ActiveWorkspace()
		c.activeChanged.Emit(active)
	}
	return true, nil
}

// Activate shows the workspace called name on the focused monitor.
func (c *Coordinator) Activate(name string) error {
	if !c.initialized {
		return ErrNotInitialized
	}
	d, err := c.focusedMonitor()
	if err != nil {
		return err
	}
	return c.ActivateOn(name, d.ID)
}

// ActivateOn shows the workspace called name on monitor monitorID and makes
// it active. A workspace is shown on at most one monitor: if it is already
// shown elsewhere, that monitor receives monitorID's previous workspace.
func (c *Coordinator) ActivateOn(name string, monitorID int) error {
	if !c.initialized {
		return ErrNotInitialized
	}
	ws, ok := c.TryGet(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrWorkspaceNotFound, name)
	}
	d, ok := c.monitorByID(monitorID)
	if !ok {
		return fmt.Errorf("%w: %d", ErrMonitorNotFound, monitorID)
	}
	c.activate(ws, d)
	return nil
}

func (c *Coordinator) activate(ws *workspace.Workspace, d platform.Display) {
	c.show(ws, d)
	c.setActive(ws.ID())
}

// show puts ws on monitor d without touching the active workspace.
func (c *Coordinator) show(ws *workspace.Workspace, d platform.Display) {
	prevID, hadPrev := c.monitorToWorkspace[d.ID]
	if hadPrev && prevID == ws.ID() {
		return
	}
	prev := c.byID(prevID)

	var swap *MonitorChange
	if other, shown := c.monitorOf(ws.ID()); shown {
		replacement := prev
		if replacement == nil {
			replacement = c.firstHiddenExcept(ws.ID())
		}
		if replacement != nil {
			c.monitorToWorkspace[other.ID] = replacement.ID()
			swap = &MonitorChange{Monitor: other, Old: ws, New: replacement}
		}
	}

	c.monitorToWorkspace[d.ID] = ws.ID()

	c.layout(ws)
	if swap != nil {
		c.layout(swap.New)
		c.monitorChanged.Emit(*swap)
	}
	c.logger.Debug("workspace activated", "workspace", ws.Name(), "monitor", d.ID)
	c.monitorChanged.Emit(MonitorChange{Monitor: d, Old: prev, New: ws})
}

func (c *Coordinator) setActive(id workspace.ID) {
	if c.active == id {
		return
	}
	c.active = id
	c.activeChanged.Emit(c.byID(id))
}

// GetMonitorForWorkspace returns the monitor currently showing the
// workspace called name.
func (c *Coordinator) GetMonitorForWorkspace(name string) (platform.Display, bool) {
	ws, ok := c.TryGet(name)
	if !ok {
		return platform.Display{}, false
	}
	return c.monitorOf(ws.ID())
}

// HandleWindowAdded routes w to the active workspace. Windows arriving while
// no workspace is active are dropped.
func (c *Coordinator) HandleWindowAdded(w *window.Window) {
	if _, routed := c.windowToWorkspace[w.Handle()]; routed {
		return
	}
	ws := c.byID(c.active)
	if ws == nil {
		c.logger.Debug("no active workspace, dropping window", "window", w.String())
		return
	}
	ws.AddWindow(w)
	c.windowToWorkspace[w.Handle()] = ws.ID()
	c.layout(ws)
	c.windowRouted.Emit(Route{Kind: RouteAdded, Window: w, Workspace: ws})
}

// HandleWindowRemoved unroutes w. Unknown windows are logged and ignored.
func (c *Coordinator) HandleWindowRemoved(w *window.Window) {
	id, routed := c.windowToWorkspace[w.Handle()]
	if !routed {
		c.logger.Debug("removed window was never routed", "window", w.String())
		return
	}
	ws := c.byID(id)
	delete(c.windowToWorkspace, w.Handle())
	if ws == nil {
		c.logger.Warn("removed window had no owning workspace", "window", w.String())
		return
	}
	ws.RemoveWindow(w.Handle())
	c.layout(ws)
	c.windowRouted.Emit(Route{Kind: RouteRemoved, Window: w, Workspace: ws})
}

// HandleWindowFocused makes the focused window's workspace active when it is
// shown on a monitor. Focus on a hidden workspace's window is ignored so new
// windows keep routing to a workspace that gets laid out.
func (c *Coordinator) HandleWindowFocused(w *window.Window) {
	id, routed := c.windowToWorkspace[w.Handle()]
	if !routed {
		return
	}
	if _, shown := c.monitorOf(id); !shown {
		c.logger.Debug("focused window is on a hidden workspace", "window", w.String())
		return
	}
	c.setActive(id)
}

func (c *Coordinator) handleMinimizeChanged(w *window.Window) {
	if id, routed := c.windowToWorkspace[w.Handle()]; routed {
		c.layout(c.byID(id))
	}
}

// MoveWindow reroutes a tracked window to the workspace called name.
func (c *Coordinator) MoveWindow(handle window.Handle, name string) error {
	fromID, routed := c.windowToWorkspace[handle]
	if !routed {
		return fmt.Errorf("%w: 0x%x", ErrWindowNotTracked, uint32(handle))
	}
	to, ok := c.TryGet(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrWorkspaceNotFound, name)
	}
	if to.ID() == fromID {
		return nil
	}
	from := c.byID(fromID)
	var w *window.Window
	for _, candidate := range from.Windows() {
		if candidate.Handle() == handle {
			w = candidate
			break
		}
	}
	from.RemoveWindow(handle)
	to.AddWindow(w)
	c.windowToWorkspace[handle] = to.ID()

	c.layout(from)
	c.layout(to)
	c.windowRouted.Emit(Route{Kind: RouteMigrated, Window: w, Workspace: to, From: from})
	return nil
}

// Rename renames a workspace and fires WorkspaceRenamed.
func (c *Coordinator) Rename(oldName, newName string) error {
	if newName == "" {
		return ErrEmptyName
	}
	ws, ok := c.TryGet(oldName)
	if !ok {
		return fmt.Errorf("%w: %q", ErrWorkspaceNotFound, oldName)
	}
	if oldName == newName {
		return nil
	}
	if _, taken := c.TryGet(newName); taken {
		return fmt.Errorf("%w: %q", ErrDuplicateName, newName)
	}
	ws.SetName(newName)
	c.TriggerWorkspaceRenamed(Rename{Workspace: ws, OldName: oldName})
	return nil
}

// SetLayoutEngine swaps the layout engine of a workspace, lays it out again
// if visible and fires ActiveLayoutEngineChanged.
func (c *Coordinator) SetLayoutEngine(name string, engine workspace.LayoutEngine) error {
	ws, ok := c.TryGet(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrWorkspaceNotFound, name)
	}
	ws.SetEngine(engine)
	c.layout(ws)
	c.TriggerActiveLayoutEngineChanged(LayoutEngineChange{Workspace: ws, Engine: ws.Engine()})
	return nil
}

// AddProxyLayoutEngine appends a proxy. Workspaces already initialized are
// re-wrapped with the extended list.
func (c *Coordinator) AddProxyLayoutEngine(p workspace.ProxyFactory) {
	if p == nil {
		return
	}
	c.proxies = append(c.proxies, p)
	if !c.initialized {
		return
	}
	for _, ws := range c.workspaces {
		ws.Initialize(c.proxies)
	}
}

// ProxyLayoutEngines returns the proxies in the order they were added.
func (c *Coordinator) ProxyLayoutEngines() []workspace.ProxyFactory {
	return append([]workspace.ProxyFactory(nil), c.proxies...)
}

// TryGet finds a workspace by name.
func (c *Coordinator) TryGet(name string) (*workspace.Workspace, bool) {
	for _, ws := range c.workspaces {
		if ws.Name() == name {
			return ws, true
		}
	}
	return nil, false
}

// Workspaces returns the workspaces in order.
func (c *Coordinator) Workspaces() []*workspace.Workspace {
	return append([]*workspace.Workspace(nil), c.workspaces...)
}

// ActiveWorkspace returns the active workspace, if any.
func (c *Coordinator) ActiveWorkspace() (*workspace.Workspace, bool) {
	ws := c.byID(c.active)
	return ws, ws != nil
}

// Monitors returns the monitors enumerated by Initialize.
func (c *Coordinator) Monitors() []platform.Display {
	return append([]platform.Display(nil), c.displays...)
}

// WorkspaceForMonitor returns the workspace shown on monitorID.
func (c *Coordinator) WorkspaceForMonitor(monitorID int) (*workspace.Workspace, bool) {
	id, ok := c.monitorToWorkspace[monitorID]
	if !ok {
		return nil, false
	}
	ws := c.byID(id)
	return ws, ws != nil
}

// WorkspaceForWindow returns the workspace a window is routed to.
func (c *Coordinator) WorkspaceForWindow(handle window.Handle) (*workspace.Workspace, bool) {
	id, ok := c.windowToWorkspace[handle]
	if !ok {
		return nil, false
	}
	ws := c.byID(id)
	return ws, ws != nil
}

// Relayout recomputes every visible workspace.
func (c *Coordinator) Relayout() {
	for _, d := range c.displays {
		if ws, ok := c.WorkspaceForMonitor(d.ID); ok {
			c.layout(ws)
		}
	}
}

func (c *Coordinator) layout(ws *workspace.Workspace) {
	if ws == nil {
		return
	}
	d, visible := c.monitorOf(ws.ID())
	if !visible {
		return
	}
	area := d.Usable
	if area.Width <= 0 || area.Height <= 0 {
		area = d.Bounds
	}
	if err := ws.DoLayout(area); err != nil {
		c.logger.Warn("layout failed",
			"workspace", ws.Name(),
			"monitor", d.ID,
			"error", err)
	}
}

func (c *Coordinator) focusedMonitor() (platform.Display, error) {
	d, err := c.monitors.ActiveDisplay()
	if err == nil {
		if known, ok := c.monitorByID(d.ID); ok {
			return known, nil
		}
	}
	if known, ok := c.monitorOf(c.active); ok {
		return known, nil
	}
	if err != nil {
		return platform.Display{}, fmt.Errorf("focused monitor: %w", err)
	}
	return platform.Display{}, fmt.Errorf("%w: %d", ErrMonitorNotFound, d.ID)
}

func (c *Coordinator) monitorByID(id int) (platform.Display, bool) {
	for _, d := range c.displays {
		if d.ID == id {
			return d, true
		}
	}
	return platform.Display{}, false
}

// monitorOf scans the monitor map in enumeration order.
func (c *Coordinator) monitorOf(id workspace.ID) (platform.Display, bool) {
	if id == 0 {
		return platform.Display{}, false
	}
	for _, d := range c.displays {
		if c.monitorToWorkspace[d.ID] == id {
			return d, true
		}
	}
	return platform.Display{}, false
}

func (c *Coordinator) firstHidden() *workspace.Workspace {
	return c.firstHiddenExcept(0)
}

func (c *Coordinator) firstHiddenExcept(skip workspace.ID) *workspace.Workspace {
	for _, ws := range c.workspaces {
		if ws.ID() == skip {
			continue
		}
		if _, shown := c.monitorOf(ws.ID()); !shown {
			return ws
		}
	}
	return nil
}

func (c *Coordinator) byID(id workspace.ID) *workspace.Workspace {
	if id == 0 {
		return nil
	}
	for _, ws := range c.workspaces {
		if ws.ID() == id {
			return ws
		}
	}
	return nil
}

func (c *Coordinator) indexOf(ws *workspace.Workspace) int {
	if ws == nil {
		return -1
	}
	for i, candidate := range c.workspaces {
		if candidate == ws {
			return i
		}
	}
	return -1
}
