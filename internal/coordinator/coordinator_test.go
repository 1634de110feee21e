package coordinator

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/1broseidon/tilecore/internal/platform"
	"github.com/1broseidon/tilecore/internal/window"
	"github.com/1broseidon/tilecore/internal/workspace"
)

type fakeMonitors struct {
	displays []platform.Display
	focused  int
	err      error
}

func newFakeMonitors(n int) *fakeMonitors {
	m := &fakeMonitors{}
	for i := 0; i < n; i++ {
		m.displays = append(m.displays, platform.Display{
			ID:     i,
			Name:   fmt.Sprintf("DP-%d", i),
			Bounds: platform.Rect{X: i * 1920, Width: 1920, Height: 1080},
			Usable: platform.Rect{X: i * 1920, Y: 30, Width: 1920, Height: 1050},
		})
	}
	return m
}

func (m *fakeMonitors) Displays() ([]platform.Display, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.displays, nil
}

func (m *fakeMonitors) ActiveDisplay() (platform.Display, error) {
	if m.err != nil {
		return platform.Display{}, m.err
	}
	for _, d := range m.displays {
		if d.ID == m.focused {
			return d, nil
		}
	}
	return platform.Display{}, errors.New("no focused display")
}

type fakeHost struct{}

func (fakeHost) DescribeWindow(id platform.WindowID) (platform.Window, error) {
	if id == 0 {
		return platform.Window{}, errors.New("BadWindow")
	}
	return platform.Window{ID: id, AppID: "xterm"}, nil
}

// layoutLog records every Recompute as "workspace@monitorX".
type layoutLog struct {
	calls []string
}

type fakeEngine struct {
	log *layoutLog
	err error
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Recompute(ws *workspace.Workspace, area platform.Rect) error {
	e.log.calls = append(e.log.calls, fmt.Sprintf("%s@%d", ws.Name(), area.X))
	return e.err
}

type harness struct {
	t        *testing.T
	monitors *fakeMonitors
	windows  *window.Manager
	coord    *Coordinator
	layouts  *layoutLog
	events   []string
}

func newHarness(t *testing.T, monitors int, names ...string) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		monitors: newFakeMonitors(monitors),
		windows:  window.NewManager(fakeHost{}, nil, nil),
		layouts:  &layoutLog{},
	}
	h.coord = New(h.monitors, h.windows, nil)
	for _, name := range names {
		h.coord.Add(workspace.New(name, &fakeEngine{log: h.layouts}))
	}
	h.record()
	return h
}

func wsName(ws *workspace.Workspace) string {
	if ws == nil {
		return "-"
	}
	return ws.Name()
}

func (h *harness) record() {
	c := h.coord
	c.OnWorkspaceAdded(func(ws *workspace.Workspace) {
		h.events = append(h.events, "added:"+ws.Name())
	})
	c.OnWorkspaceRemoved(func(ws *workspace.Workspace) {
		h.events = append(h.events, "removed:"+ws.Name())
	})
	c.OnMonitorWorkspaceChanged(func(ch MonitorChange) {
		h.events = append(h.events, fmt.Sprintf("monitor%d:%s->%s", ch.Monitor.ID, wsName(ch.Old), wsName(ch.New)))
	})
	c.OnWindowRouted(func(r Route) {
		h.events = append(h.events, fmt.Sprintf("%s:%d:%s", r.Kind, r.Window.Handle(), wsName(r.Workspace)))
	})
	c.OnActiveWorkspaceChanged(func(ws *workspace.Workspace) {
		h.events = append(h.events, "active:"+wsName(ws))
	})
}

func (h *harness) init() {
	h.t.Helper()
	if err := h.coord.Initialize(); err != nil {
		h.t.Fatalf("Initialize: %v", err)
	}
	h.events = nil
	h.layouts.calls = nil
}

func (h *harness) open(id platform.WindowID) *window.Window {
	h.t.Helper()
	h.windows.Dispatch(platform.HostEvent{Kind: platform.HostWindowCreated, Window: id})
	w, ok := h.windows.Lookup(id)
	if !ok {
		h.t.Fatalf("window %d not created", id)
	}
	return w
}

func (h *harness) close(id platform.WindowID) {
	h.windows.Dispatch(platform.HostEvent{Kind: platform.HostWindowDestroyed, Window: id})
}

func names(list []*workspace.Workspace) []string {
	out := make([]string, 0, len(list))
	for _, ws := range list {
		out = append(out, ws.Name())
	}
	return out
}

func handlesOf(ws *workspace.Workspace) []window.Handle {
	var out []window.Handle
	for _, w := range ws.Windows() {
		out = append(out, w.Handle())
	}
	return out
}

// checkInvariants verifies the coordinator's structural invariants.
func checkInvariants(t *testing.T, c *Coordinator) {
	t.Helper()
	if len(c.Workspaces()) < len(c.Monitors()) {
		t.Fatalf("%d workspaces < %d monitors", len(c.Workspaces()), len(c.Monitors()))
	}
	shown := make(map[string]int)
	for _, d := range c.Monitors() {
		ws, ok := c.WorkspaceForMonitor(d.ID)
		if !ok {
			t.Fatalf("monitor %d shows no workspace", d.ID)
		}
		shown[ws.Name()]++
		if shown[ws.Name()] > 1 {
			t.Fatalf("workspace %q shown on two monitors", ws.Name())
		}
	}
	owners := make(map[window.Handle]string)
	for _, ws := range c.Workspaces() {
		for _, w := range ws.Windows() {
			if prev, dup := owners[w.Handle()]; dup {
				t.Fatalf("window %d in both %q and %q", w.Handle(), prev, ws.Name())
			}
			owners[w.Handle()] = ws.Name()
			got, ok := c.WorkspaceForWindow(w.Handle())
			if !ok || got != ws {
				t.Fatalf("window %d listed in %q but mapped to %q", w.Handle(), ws.Name(), wsName(got))
			}
		}
	}
	for h, id := range c.windowToWorkspace {
		if ws := c.byID(id); ws == nil || !ws.Contains(h) {
			t.Fatalf("window map entry %d -> %d is stale", h, id)
		}
	}
}

func TestScenario_TwoMonitorsThreeWorkspaces(t *testing.T) {
	h := newHarness(t, 2, "1", "2", "3")
	h.init()
	c := h.coord

	for mon, want := range []string{"1", "2"} {
		ws, ok := c.WorkspaceForMonitor(mon)
		if !ok || ws.Name() != want {
			t.Fatalf("monitor %d shows %q, want %q", mon, wsName(ws), want)
		}
	}
	if active, _ := c.ActiveWorkspace(); wsName(active) != "1" {
		t.Fatalf("active = %q, want 1", wsName(active))
	}

	ok, err := c.Remove("3")
	if err != nil || !ok {
		t.Fatalf("Remove(3) = %v, %v", ok, err)
	}
	if got := names(c.Workspaces()); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("workspaces = %v", got)
	}

	ok, err = c.Remove("2")
	var inv *InvariantError
	if !errors.As(err, &inv) || ok {
		t.Fatalf("Remove(2) = %v, %v; want invariant error", ok, err)
	}
	if inv.Workspaces != 1 || inv.Monitors != 2 || inv.Op != "remove" {
		t.Fatalf("unexpected invariant error: %+v", inv)
	}
	if got := names(c.Workspaces()); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("failed remove changed state: %v", got)
	}
	checkInvariants(t, c)
}

func TestScenario_RemoveMigratesWindows(t *testing.T) {
	h := newHarness(t, 2, "1", "2", "3")
	h.init()
	c := h.coord

	h.open(10)
	if ws, _ := c.WorkspaceForWindow(10); wsName(ws) != "1" {
		t.Fatalf("window routed to %q, want 1", wsName(ws))
	}

	ok, err := c.Remove("1")
	if err != nil || !ok {
		t.Fatalf("Remove(1) = %v, %v", ok, err)
	}
	ws, _ := c.WorkspaceForWindow(10)
	if wsName(ws) != "3" {
		t.Fatalf("window migrated to %q, want 3 (new last)", wsName(ws))
	}
	if mon, _ := c.WorkspaceForMonitor(0); wsName(mon) != "3" {
		t.Fatalf("monitor 0 shows %q, want 3", wsName(mon))
	}
	if active, _ := c.ActiveWorkspace(); wsName(active) != "3" {
		t.Fatalf("active = %q, want 3", wsName(active))
	}
	checkInvariants(t, c)
}

func TestInitialize_Errors(t *testing.T) {
	h := newHarness(t, 3, "1", "2")
	err := h.coord.Initialize()
	var inv *InvariantError
	if !errors.As(err, &inv) {
		t.Fatalf("Initialize = %v, want *InvariantError", err)
	}
	if inv.Workspaces != 2 || inv.Monitors != 3 {
		t.Fatalf("unexpected invariant error: %+v", inv)
	}

	h = newHarness(t, 1, "1")
	h.init()
	if err := h.coord.Initialize(); !errors.Is(err, ErrAlreadyInitialized) {
		t.Fatalf("second Initialize = %v", err)
	}

	h = newHarness(t, 1, "1")
	h.monitors.err = errors.New("randr unavailable")
	if err := h.coord.Initialize(); err == nil {
		t.Fatalf("expected enumeration error")
	}
}

func TestInitialize_AssignsInEnumerationOrder(t *testing.T) {
	h := newHarness(t, 2, "a", "b", "c")
	if err := h.coord.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	want := []string{
		"monitor0:-->a",
		"monitor1:-->b",
		"active:a",
	}
	if !reflect.DeepEqual(h.events, want) {
		t.Fatalf("events = %v\nwant     %v", h.events, want)
	}
	if !reflect.DeepEqual(h.layouts.calls, []string{"a@0", "b@1920"}) {
		t.Fatalf("layouts = %v", h.layouts.calls)
	}
}

func TestWindowAdded_RoutesToActiveOnce(t *testing.T) {
	h := newHarness(t, 1, "1", "2")
	h.init()
	c := h.coord

	w := h.open(5)
	c.HandleWindowAdded(w)

	if ws, _ := c.WorkspaceForWindow(5); wsName(ws) != "1" {
		t.Fatalf("routed to %q", wsName(ws))
	}
	if !reflect.DeepEqual(h.events, []string{"added:5:1"}) {
		t.Fatalf("events = %v", h.events)
	}
	if !reflect.DeepEqual(h.layouts.calls, []string{"1@0"}) {
		t.Fatalf("layouts = %v", h.layouts.calls)
	}
	checkInvariants(t, c)
}

func TestWindowAdded_DroppedWithoutActiveWorkspace(t *testing.T) {
	h := newHarness(t, 0)
	h.init()
	h.open(5)
	if len(h.events) != 0 {
		t.Fatalf("events = %v", h.events)
	}
	if _, ok := h.coord.WorkspaceForWindow(5); ok {
		t.Fatalf("window should not be routed")
	}
}

func TestWindowRemoved_Tolerance(t *testing.T) {
	h := newHarness(t, 1, "1", "2")
	h.init()
	c := h.coord

	stray, err := h.windows.CreateWindow(77)
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	c.HandleWindowRemoved(stray)
	h.close(77)

	if len(h.events) != 0 || len(h.layouts.calls) != 0 {
		t.Fatalf("unexpected effects: events=%v layouts=%v", h.events, h.layouts.calls)
	}
	checkInvariants(t, c)
}

func TestWindowRemoved_Unroutes(t *testing.T) {
	h := newHarness(t, 1, "1", "2")
	h.init()
	h.open(1)
	h.open(2)
	h.close(1)

	ws, _ := h.coord.TryGet("1")
	if got := handlesOf(ws); !reflect.DeepEqual(got, []window.Handle{2}) {
		t.Fatalf("windows = %v", got)
	}
	want := []string{"added:1:1", "added:2:1", "removed:1:1"}
	if !reflect.DeepEqual(h.events, want) {
		t.Fatalf("events = %v", h.events)
	}
	checkInvariants(t, h.coord)
}

func TestActivate_RoundTripAndSwap(t *testing.T) {
	h := newHarness(t, 2, "1", "2", "3")
	h.init()
	c := h.coord

	if err := c.ActivateOn("3", 1); err != nil {
		t.Fatalf("ActivateOn(3, 1): %v", err)
	}
	d, ok := c.GetMonitorForWorkspace("3")
	if !ok || d.ID != 1 {
		t.Fatalf("GetMonitorForWorkspace(3) = %v, %v", d.ID, ok)
	}
	if _, ok := c.GetMonitorForWorkspace("2"); ok {
		t.Fatalf("workspace 2 should be hidden")
	}

	h.events = nil
	// "1" is on monitor 0; showing it on monitor 1 swaps "3" onto monitor 0.
	if err := c.ActivateOn("1", 1); err != nil {
		t.Fatalf("ActivateOn(1, 1): %v", err)
	}
	want := []string{"monitor0:1->3", "monitor1:3->1", "active:1"}
	if !reflect.DeepEqual(h.events, want) {
		t.Fatalf("events = %v\nwant     %v", h.events, want)
	}
	if ws, _ := c.WorkspaceForMonitor(0); wsName(ws) != "3" {
		t.Fatalf("monitor 0 shows %q", wsName(ws))
	}
	checkInvariants(t, c)
}

func TestActivate_SameMonitorIsNoop(t *testing.T) {
	h := newHarness(t, 1, "1", "2")
	h.init()
	if err := h.coord.ActivateOn("1", 0); err != nil {
		t.Fatalf("ActivateOn: %v", err)
	}
	if len(h.events) != 0 || len(h.layouts.calls) != 0 {
		t.Fatalf("unexpected effects: events=%v layouts=%v", h.events, h.layouts.calls)
	}
}

func TestActivate_FocusedMonitor(t *testing.T) {
	h := newHarness(t, 2, "1", "2", "3")
	h.init()
	h.monitors.focused = 1

	if err := h.coord.Activate("3"); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if d, _ := h.coord.GetMonitorForWorkspace("3"); d.ID != 1 {
		t.Fatalf("activated on monitor %d, want 1", d.ID)
	}
	want := []string{"monitor1:2->3", "active:3"}
	if !reflect.DeepEqual(h.events, want) {
		t.Fatalf("events = %v", h.events)
	}
	if active, _ := h.coord.ActiveWorkspace(); wsName(active) != "3" {
		t.Fatalf("active = %q", wsName(active))
	}
}

func TestActivate_Errors(t *testing.T) {
	h := newHarness(t, 1, "1", "2")
	if err := h.coord.Activate("1"); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Activate before Initialize = %v", err)
	}
	h.init()
	if err := h.coord.ActivateOn("nope", 0); !errors.Is(err, ErrWorkspaceNotFound) {
		t.Fatalf("ActivateOn(nope) = %v", err)
	}
	if err := h.coord.ActivateOn("2", 9); !errors.Is(err, ErrMonitorNotFound) {
		t.Fatalf("ActivateOn(2, 9) = %v", err)
	}
}

func TestRemove_EventsAfterMapsConsistent(t *testing.T) {
	h := newHarness(t, 2, "1", "2", "3", "4")
	h.init()
	c := h.coord
	h.open(1)
	h.open(2)
	h.events = nil

	c.OnWorkspaceRemoved(func(*workspace.Workspace) { checkInvariants(t, c) })
	c.OnMonitorWorkspaceChanged(func(MonitorChange) { checkInvariants(t, c) })
	c.OnWindowRouted(func(Route) { checkInvariants(t, c) })

	ok, err := c.Remove("1")
	if err != nil || !ok {
		t.Fatalf("Remove(1) = %v, %v", ok, err)
	}
	want := []string{
		"removed:1",
		"monitor0:1->3",
		"migrated:1:4",
		"migrated:2:4",
		"active:3",
	}
	if !reflect.DeepEqual(h.events, want) {
		t.Fatalf("events = %v\nwant     %v", h.events, want)
	}

	last, _ := c.TryGet("4")
	if got := handlesOf(last); !reflect.DeepEqual(got, []window.Handle{1, 2}) {
		t.Fatalf("migrated windows = %v", got)
	}
	for _, ws := range c.Workspaces() {
		if ws != last && ws.Len() != 0 {
			t.Fatalf("workspace %q still owns windows", ws.Name())
		}
	}
}

func TestRemove_UnknownAndHidden(t *testing.T) {
	h := newHarness(t, 1, "1", "2", "3")
	h.init()
	c := h.coord

	if ok, err := c.Remove("missing"); ok || err != nil {
		t.Fatalf("Remove(missing) = %v, %v", ok, err)
	}
	if ok, err := c.Remove("2"); !ok || err != nil {
		t.Fatalf("Remove(2) = %v, %v", ok, err)
	}
	want := []string{"removed:2"}
	if !reflect.DeepEqual(h.events, want) {
		t.Fatalf("events = %v", h.events)
	}
	if active, _ := c.ActiveWorkspace(); wsName(active) != "1" {
		t.Fatalf("active changed to %q", wsName(active))
	}
}

func TestInvariantPreservation_Sequence(t *testing.T) {
	h := newHarness(t, 2, "1", "2", "3", "4")
	h.init()
	c := h.coord

	steps := []func(){
		func() { h.open(1) },
		func() { _ = c.ActivateOn("3", 0) },
		func() { h.open(2) },
		func() { _ = c.ActivateOn("2", 0) },
		func() { h.open(3) },
		func() { _, _ = c.Remove("3") },
		func() { _, _ = c.AddNamed("5", nil) },
		func() { _ = c.ActivateOn("5", 1) },
		func() { h.close(2) },
		func() { _, _ = c.Remove("2") },
		func() { _, _ = c.Remove("1") },
		func() { _, _ = c.Remove("4") },
		func() { h.open(4) },
		func() { _ = c.MoveWindow(4, "5") },
	}
	for i, step := range steps {
		step()
		t.Run(fmt.Sprintf("step%02d", i), func(t *testing.T) {
			checkInvariants(t, c)
		})
	}
	if got := len(c.Workspaces()); got != 2 {
		t.Fatalf("workspaces = %v", names(c.Workspaces()))
	}
}

func TestFocus_ActivatesOwningWorkspace(t *testing.T) {
	h := newHarness(t, 2, "1", "2")
	h.init()
	h.open(1)
	if err := h.coord.ActivateOn("2", 1); err != nil {
		t.Fatalf("ActivateOn: %v", err)
	}
	h.events = nil

	h.windows.Dispatch(platform.HostEvent{Kind: platform.HostWindowFocused, Window: 1})
	if active, _ := h.coord.ActiveWorkspace(); wsName(active) != "1" {
		t.Fatalf("active = %q, want 1", wsName(active))
	}
	if !reflect.DeepEqual(h.events, []string{"active:1"}) {
		t.Fatalf("events = %v", h.events)
	}
}

func TestFocus_HiddenWorkspaceStaysInactive(t *testing.T) {
	h := newHarness(t, 1, "1", "2")
	h.init()
	c := h.coord
	h.open(1)
	if err := c.MoveWindow(1, "2"); err != nil {
		t.Fatalf("MoveWindow: %v", err)
	}
	h.events = nil

	h.windows.Dispatch(platform.HostEvent{Kind: platform.HostWindowFocused, Window: 1})
	if active, _ := c.ActiveWorkspace(); wsName(active) != "1" {
		t.Fatalf("active = %q, want 1", wsName(active))
	}
	if len(h.events) != 0 {
		t.Fatalf("events = %v", h.events)
	}

	h.open(2)
	if ws, _ := c.WorkspaceForWindow(2); wsName(ws) != "1" {
		t.Fatalf("window 2 routed to %q, want 1", wsName(ws))
	}
}

func TestMinimize_Relayouts(t *testing.T) {
	h := newHarness(t, 1, "1", "2")
	h.init()
	h.open(1)
	h.layouts.calls = nil

	h.windows.Dispatch(platform.HostEvent{Kind: platform.HostWindowMinimizeStart, Window: 1})
	h.windows.Dispatch(platform.HostEvent{Kind: platform.HostWindowMinimizeEnd, Window: 1})
	if !reflect.DeepEqual(h.layouts.calls, []string{"1@0", "1@0"}) {
		t.Fatalf("layouts = %v", h.layouts.calls)
	}
}

func TestMoveWindow(t *testing.T) {
	h := newHarness(t, 1, "1", "2")
	h.init()
	c := h.coord
	h.open(1)
	h.events = nil

	if err := c.MoveWindow(1, "2"); err != nil {
		t.Fatalf("MoveWindow: %v", err)
	}
	if ws, _ := c.WorkspaceForWindow(1); wsName(ws) != "2" {
		t.Fatalf("window on %q", wsName(ws))
	}
	if !reflect.DeepEqual(h.events, []string{"migrated:1:2"}) {
		t.Fatalf("events = %v", h.events)
	}
	if err := c.MoveWindow(1, "2"); err != nil {
		t.Fatalf("MoveWindow to same workspace: %v", err)
	}
	if err := c.MoveWindow(99, "1"); !errors.Is(err, ErrWindowNotTracked) {
		t.Fatalf("MoveWindow(99) = %v", err)
	}
	if err := c.MoveWindow(1, "nope"); !errors.Is(err, ErrWorkspaceNotFound) {
		t.Fatalf("MoveWindow(nope) = %v", err)
	}
	checkInvariants(t, c)
}

func TestAdd_ExistingWorkspaceIsNoop(t *testing.T) {
	h := newHarness(t, 1, "1", "2")
	h.init()
	c := h.coord
	h.open(7)

	ws, _ := c.TryGet("1")
	id := ws.ID()
	if got := c.Add(ws); got != id {
		t.Fatalf("Add returned %d, want %d", got, id)
	}
	if got := names(c.Workspaces()); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("workspaces = %v", got)
	}
	if len(h.events) != 0 {
		t.Fatalf("events = %v", h.events)
	}
	if shown, ok := c.WorkspaceForMonitor(0); !ok || shown != ws {
		t.Fatalf("monitor 0 shows %q", wsName(shown))
	}
	if owner, ok := c.WorkspaceForWindow(7); !ok || owner != ws {
		t.Fatalf("window 7 owned by %q", wsName(owner))
	}
	checkInvariants(t, c)

	h.close(7)
	if _, ok := c.WorkspaceForWindow(7); ok {
		t.Fatalf("window 7 still routed after close")
	}
	if ws.Len() != 0 {
		t.Fatalf("workspace 1 still holds %d windows", ws.Len())
	}
}

func TestAddNamedAndRename(t *testing.T) {
	h := newHarness(t, 1, "1")
	h.init()
	c := h.coord

	var renames []string
	c.OnWorkspaceRenamed(func(r Rename) {
		renames = append(renames, r.OldName+"->"+r.Workspace.Name())
	})

	if _, err := c.AddNamed("1", nil); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("AddNamed(1) = %v", err)
	}
	if _, err := c.AddNamed("", nil); !errors.Is(err, ErrEmptyName) {
		t.Fatalf("AddNamed(\"\") = %v", err)
	}
	ws, err := c.AddNamed("web", nil)
	if err != nil {
		t.Fatalf("AddNamed(web): %v", err)
	}
	if ws.ID() == 0 {
		t.Fatalf("expected an assigned id")
	}
	if err := c.Rename("web", "1"); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("Rename to taken name = %v", err)
	}
	if err := c.Rename("ghost", "x"); !errors.Is(err, ErrWorkspaceNotFound) {
		t.Fatalf("Rename(ghost) = %v", err)
	}
	if err := c.Rename("web", "mail"); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if !reflect.DeepEqual(renames, []string{"web->mail"}) {
		t.Fatalf("renames = %v", renames)
	}
	if !reflect.DeepEqual(h.events, []string{"added:web"}) {
		t.Fatalf("events = %v", h.events)
	}
}

type tagProxy struct {
	inner workspace.LayoutEngine
	tag   string
}

func (p *tagProxy) Name() string { return p.tag + "/" + p.inner.Name() }

func (p *tagProxy) Recompute(ws *workspace.Workspace, area platform.Rect) error {
	return p.inner.Recompute(ws, area)
}

func TestProxiesAndLayoutEngines(t *testing.T) {
	h := newHarness(t, 1, "1", "2")
	c := h.coord
	c.AddProxyLayoutEngine(func(inner workspace.LayoutEngine) workspace.LayoutEngine {
		return &tagProxy{inner: inner, tag: "pad"}
	})
	c.AddProxyLayoutEngine(nil)
	h.init()

	if got := len(c.ProxyLayoutEngines()); got != 1 {
		t.Fatalf("proxies = %d", got)
	}
	ws, _ := c.TryGet("2")
	if got := ws.Engine().Name(); got != "pad/fake" {
		t.Fatalf("engine = %q", got)
	}

	c.AddProxyLayoutEngine(func(inner workspace.LayoutEngine) workspace.LayoutEngine {
		return &tagProxy{inner: inner, tag: "gap"}
	})
	if got := ws.Engine().Name(); got != "gap/pad/fake" {
		t.Fatalf("engine after late proxy = %q", got)
	}

	var changes []string
	c.OnActiveLayoutEngineChanged(func(ch LayoutEngineChange) {
		changes = append(changes, ch.Workspace.Name()+":"+ch.Engine.Name())
	})
	if err := c.SetLayoutEngine("1", &fakeEngine{log: h.layouts}); err != nil {
		t.Fatalf("SetLayoutEngine: %v", err)
	}
	if !reflect.DeepEqual(changes, []string{"1:gap/pad/fake"}) {
		t.Fatalf("changes = %v", changes)
	}
	if !reflect.DeepEqual(h.layouts.calls, []string{"1@0"}) {
		t.Fatalf("layouts = %v", h.layouts.calls)
	}
	if err := c.SetLayoutEngine("nope", nil); !errors.Is(err, ErrWorkspaceNotFound) {
		t.Fatalf("SetLayoutEngine(nope) = %v", err)
	}
}

func TestLayoutFailureIsLogged(t *testing.T) {
	h := newHarness(t, 1)
	h.coord.Add(workspace.New("broken", &fakeEngine{log: h.layouts, err: errors.New("boom")}))
	h.init()
	h.open(1)
	if ws, _ := h.coord.WorkspaceForWindow(1); wsName(ws) != "broken" {
		t.Fatalf("window not routed despite layout failure")
	}
}

func TestClose_DetachesFromWindowSource(t *testing.T) {
	h := newHarness(t, 1, "1")
	h.init()
	h.coord.Close()
	h.open(3)
	if _, ok := h.coord.WorkspaceForWindow(3); ok {
		t.Fatalf("closed coordinator still routes windows")
	}
}
