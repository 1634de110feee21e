//go:build linux

package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/1broseidon/tilecore/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// LinuxBackend wraps an X11 connection behind the platform Backend and
// EventSource interfaces.
type LinuxBackend struct {
	conn    *x11.Connection
	tracker *Tracker
	logger  *slog.Logger
}

var (
	_ Backend     = (*LinuxBackend)(nil)
	_ EventSource = (*LinuxBackend)(nil)
)

// NewLinuxBackend creates a Linux platform backend from an existing X11 connection.
func NewLinuxBackend(conn *x11.Connection, logger *slog.Logger) *LinuxBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &LinuxBackend{conn: conn, logger: logger}
}

// OpenLinuxBackend opens a fresh X11 connection to display.
func OpenLinuxBackend(display string, logger *slog.Logger) (*LinuxBackend, error) {
	conn, err := x11.NewConnection(display)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}
	return NewLinuxBackend(conn, logger), nil
}

// XUtil returns the underlying xgbutil connection for X11-specific operations.
func (b *LinuxBackend) XUtil() *xgbutil.XUtil {
	if b == nil || b.conn == nil {
		return nil
	}
	return b.conn.XUtil
}

// MainPing starts X event dispatch. See x11.Connection.MainPing.
func (b *LinuxBackend) MainPing() (before, after, quit chan struct{}) {
	return b.conn.MainPing()
}

// Disconnect stops event dispatch and closes the X11 connection.
func (b *LinuxBackend) Disconnect() {
	if b != nil && b.conn != nil {
		b.conn.Quit()
		b.conn.Close()
	}
}

// Displays returns all active displays ordered by ID.
func (b *LinuxBackend) Displays() ([]Display, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, b.displayFromMonitor(m))
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// ActiveDisplay returns the display holding the focused window, else the
// one under the pointer.
func (b *LinuxBackend) ActiveDisplay() (Display, error) {
	conn, err := b.connection()
	if err != nil {
		return Display{}, err
	}

	monitors, err := conn.GetMonitors()
	if err != nil {
		return Display{}, err
	}
	active, err := conn.GetActiveMonitor(monitors)
	if err != nil {
		return Display{}, err
	}

	return b.displayFromMonitor(active), nil
}

// ActiveWindow returns the currently active/focused window ID.
func (b *LinuxBackend) ActiveWindow() (WindowID, error) {
	conn, err := b.connection()
	if err != nil {
		return 0, err
	}

	wid, err := conn.GetActiveWindow()
	if err != nil {
		return 0, err
	}
	return WindowID(wid), nil
}

// DescribeWindow returns metadata for a live window.
func (b *LinuxBackend) DescribeWindow(windowID WindowID) (Window, error) {
	conn, err := b.connection()
	if err != nil {
		return Window{}, err
	}
	if windowID == 0 {
		return Window{}, errors.New("window id 0 is not a window")
	}

	xid := xproto.Window(windowID)
	geom, err := conn.WindowGeometry(xid)
	if err != nil {
		return Window{}, err
	}

	return Window{
		ID:     windowID,
		PID:    conn.WindowPID(xid),
		AppID:  conn.WindowClass(xid),
		Title:  conn.WindowTitle(xid),
		Bounds: rectFromGeometry(geom),
	}, nil
}

// ListWindows lists normal client windows in _NET_CLIENT_LIST order.
func (b *LinuxBackend) ListWindows() ([]Window, error) {
	conn, err := b.connection()
	if err != nil {
		return nil, err
	}

	clients, err := conn.ClientList()
	if err != nil {
		return nil, err
	}

	windows := make([]Window, 0, len(clients))
	for _, xid := range clients {
		if !conn.IsNormalWindow(xid) {
			continue
		}
		w, err := b.DescribeWindow(WindowID(xid))
		if err != nil {
			continue
		}
		windows = append(windows, w)
	}
	return windows, nil
}

// MoveResize moves and resizes a window to the specified bounds.
func (b *LinuxBackend) MoveResize(windowID WindowID, bounds Rect) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}

	if b.tracker != nil {
		b.tracker.Expect(windowID, bounds)
	}
	return conn.MoveResizeWindow(
		xproto.Window(windowID),
		bounds.X,
		bounds.Y,
		bounds.Width,
		bounds.Height,
	)
}

// Watch subscribes to client list, focus, geometry and state changes and
// reports them to sink. Windows already mapped are reported as created
// before Watch returns. Callbacks run on the X event goroutine started by
// MainPing.
func (b *LinuxBackend) Watch(sink func(HostEvent)) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	if b.tracker != nil {
		return errors.New("x11 backend is already being watched")
	}
	b.tracker = NewTracker(DefaultMoveSettle, sink)

	root := xwindow.New(conn.XUtil, conn.Root)
	if err := root.Listen(xproto.EventMaskPropertyChange); err != nil {
		return fmt.Errorf("listen on root window: %w", err)
	}
	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil {
			return
		}
		switch name {
		case "_NET_CLIENT_LIST":
			b.syncClients()
		case "_NET_ACTIVE_WINDOW":
			b.syncActive()
		}
	}).Connect(conn.XUtil, conn.Root)

	b.syncClients()
	b.syncActive()
	return nil
}

// Settle reports moves that have finished by now. It must run on the same
// goroutine as the X callbacks, or while they are paused.
func (b *LinuxBackend) Settle(now time.Time) {
	if b.tracker != nil {
		b.tracker.Settle(now)
	}
}

// PublishDesktops advertises workspace names as EWMH desktops.
func (b *LinuxBackend) PublishDesktops(names []string) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.PublishDesktops(names)
}

// PublishCurrentDesktop advertises the active workspace index.
func (b *LinuxBackend) PublishCurrentDesktop(index int) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.PublishCurrentDesktop(index)
}

// SetWindowDesktop tags a window with a desktop index.
func (b *LinuxBackend) SetWindowDesktop(windowID WindowID, desktop int) error {
	conn, err := b.connection()
	if err != nil {
		return err
	}
	return conn.SetWindowDesktop(xproto.Window(windowID), desktop)
}

func (b *LinuxBackend) syncClients() {
	clients, err := b.conn.ClientList()
	if err != nil {
		b.logger.Debug("failed to read client list", "error", err)
		return
	}
	ids := make([]WindowID, len(clients))
	for i, xid := range clients {
		ids[i] = WindowID(xid)
	}

	added, removed := b.tracker.SyncClients(ids, b.snapshot)
	for _, id := range removed {
		xevent.Detach(b.conn.XUtil, xproto.Window(id))
	}
	for _, id := range added {
		b.listen(id)
	}
}

func (b *LinuxBackend) syncActive() {
	active, err := b.conn.GetActiveWindow()
	if err != nil || active == 0 {
		return
	}
	b.tracker.ActiveChanged(WindowID(active))
}

func (b *LinuxBackend) snapshot(id WindowID) (WindowSnapshot, bool) {
	xid := xproto.Window(id)
	if !b.conn.IsNormalWindow(xid) {
		return WindowSnapshot{}, false
	}
	geom, err := b.conn.WindowGeometry(xid)
	if err != nil {
		return WindowSnapshot{}, false
	}
	return WindowSnapshot{
		ID:     id,
		Bounds: rectFromGeometry(geom),
		Hidden: b.conn.HasState(xid, x11.StateHidden),
	}, true
}

func (b *LinuxBackend) listen(id WindowID) {
	xu := b.conn.XUtil
	xid := xproto.Window(id)

	if err := xwindow.New(xu, xid).Listen(xproto.EventMaskStructureNotify, xproto.EventMaskPropertyChange); err != nil {
		b.logger.Debug("failed to listen on window", "window", fmt.Sprintf("0x%x", uint32(id)), "error", err)
		return
	}

	xevent.ConfigureNotifyFun(func(_ *xgbutil.XUtil, _ xevent.ConfigureNotifyEvent) {
		geom, err := b.conn.WindowGeometry(xid)
		if err != nil {
			return
		}
		b.tracker.Configured(id, rectFromGeometry(geom), time.Now())
	}).Connect(xu, xid)

	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil || name != "_NET_WM_STATE" {
			return
		}
		b.tracker.StateChanged(id, b.conn.HasState(xid, x11.StateHidden))
	}).Connect(xu, xid)
}

func (b *LinuxBackend) connection() (*x11.Connection, error) {
	if b == nil || b.conn == nil {
		return nil, fmt.Errorf("x11 backend connection is nil")
	}
	return b.conn, nil
}

func (b *LinuxBackend) displayFromMonitor(m x11.Monitor) Display {
	usable := b.conn.WorkArea(m)
	return Display{
		ID:     m.ID,
		Name:   m.Name,
		Bounds: Rect{X: m.X, Y: m.Y, Width: m.Width, Height: m.Height},
		Usable: Rect{X: usable.X, Y: usable.Y, Width: usable.Width, Height: usable.Height},
	}
}

func rectFromGeometry(g x11.Geometry) Rect {
	return Rect{X: g.X, Y: g.Y, Width: g.Width, Height: g.Height}
}
