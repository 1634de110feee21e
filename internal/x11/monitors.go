package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor is one active RandR CRTC. ID is the CRTC's index in the screen
// resources, which stays stable while the output configuration does.
type Monitor struct {
	ID     int
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// GetMonitors lists the CRTCs that drive at least one output.
func (c *Connection) GetMonitors() ([]Monitor, error) {
	conn := c.XUtil.Conn()
	if err := randr.Init(conn); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}
	resources, err := randr.GetScreenResources(conn, c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil || info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(conn, info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			ID:     i,
			Name:   name,
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}
	return monitors, nil
}

// GetActiveMonitor returns the monitor containing the focused window, then
// the one under the pointer, then the first monitor.
func (c *Connection) GetActiveMonitor(monitors []Monitor) (Monitor, error) {
	if len(monitors) == 0 {
		return Monitor{}, fmt.Errorf("no monitors found")
	}

	if activeWin, err := ewmh.ActiveWindowGet(c.XUtil); err == nil && activeWin != 0 {
		if mon := findMonitorForWindow(c, monitors, activeWin); mon != nil {
			return *mon, nil
		}
	}
	if mon := findMonitorForPointer(c, monitors); mon != nil {
		return *mon, nil
	}
	return monitors[0], nil
}

// WorkArea returns the part of monitor not covered by panels and docks.
// Dock struts win; _NET_WORKAREA of the current desktop is the fallback.
func (c *Connection) WorkArea(monitor Monitor) Monitor {
	area := monitor
	if applyDockStruts(c, &area) {
		return area
	}

	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return monitor
	}
	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil {
		if int(currentDesktop) < len(workArea) {
			desktopIndex = int(currentDesktop)
		}
	}
	wa := workArea[desktopIndex]
	return clipToWorkArea(monitor, int(wa.X), int(wa.Y), int(wa.Width), int(wa.Height))
}

// clipToWorkArea intersects monitor with a work area rectangle. Disjoint
// rectangles leave monitor unchanged.
func clipToWorkArea(monitor Monitor, waX, waY, waW, waH int) Monitor {
	clipped, ok := boxOf(monitor).intersect(box{waX, waY, waX + waW, waY + waH})
	if !ok {
		return monitor
	}
	monitor.X, monitor.Y = clipped.x1, clipped.y1
	monitor.Width, monitor.Height = clipped.width(), clipped.height()
	return monitor
}

// box is a half-open rectangle [x1,x2) x [y1,y2).
type box struct {
	x1, y1, x2, y2 int
}

func boxOf(m Monitor) box {
	return box{m.X, m.Y, m.X + m.Width, m.Y + m.Height}
}

func (b box) width() int  { return b.x2 - b.x1 }
func (b box) height() int { return b.y2 - b.y1 }

func (b box) intersect(o box) (box, bool) {
	out := box{max(b.x1, o.x1), max(b.y1, o.y1), min(b.x2, o.x2), min(b.y2, o.y2)}
	return out, out.x2 > out.x1 && out.y2 > out.y1
}

// dockStruts holds the largest reservation per edge of one monitor.
type dockStruts struct {
	left   int
	right  int
	top    int
	bottom int
}

func applyDockStruts(c *Connection, monitor *Monitor) bool {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return false
	}
	rootWidth := int(rootGeom.Width)
	rootHeight := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return false
	}

	var struts dockStruts
	for _, windowID := range clients {
		if !isDock(c, windowID) {
			continue
		}
		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			updateStrutsForMonitor(monitor, rootWidth, rootHeight, sp, &struts)
			continue
		}
		// Docks that only set _NET_WM_STRUT reserve the full edge.
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			updateStrutsForMonitor(monitor, rootWidth, rootHeight, &ewmh.WmStrutPartial{
				Left:       s.Left,
				Right:      s.Right,
				Top:        s.Top,
				Bottom:     s.Bottom,
				LeftEndY:   uint(rootHeight - 1),
				RightEndY:  uint(rootHeight - 1),
				TopEndX:    uint(rootWidth - 1),
				BottomEndX: uint(rootWidth - 1),
			}, &struts)
		}
	}

	return struts.applyTo(monitor)
}

func isDock(c *Connection, windowID xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_DOCK" {
			return true
		}
	}
	return false
}

// applyTo shrinks monitor by the accumulated struts. It reports false when
// no strut touches the monitor.
func (struts dockStruts) applyTo(monitor *Monitor) bool {
	if struts == (dockStruts{}) {
		return false
	}
	monitor.X += struts.left
	monitor.Y += struts.top
	monitor.Width = max(monitor.Width-struts.left-struts.right, 1)
	monitor.Height = max(monitor.Height-struts.top-struts.bottom, 1)
	return true
}

// updateStrutsForMonitor folds the parts of sp that overlap monitor into acc.
// Strut ranges are inclusive, hence the +1 on every end coordinate.
func updateStrutsForMonitor(monitor *Monitor, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *dockStruts) {
	mon := boxOf(*monitor)
	overlap := func(reserved box) (box, bool) { return mon.intersect(reserved) }

	if sp.Top > 0 {
		if o, ok := overlap(box{int(sp.TopStartX), 0, int(sp.TopEndX) + 1, int(sp.Top)}); ok {
			acc.top = max(acc.top, o.height())
		}
	}
	if sp.Bottom > 0 {
		if o, ok := overlap(box{int(sp.BottomStartX), rootHeight - int(sp.Bottom), int(sp.BottomEndX) + 1, rootHeight}); ok {
			acc.bottom = max(acc.bottom, o.height())
		}
	}
	if sp.Left > 0 {
		if o, ok := overlap(box{0, int(sp.LeftStartY), int(sp.Left), int(sp.LeftEndY) + 1}); ok {
			acc.left = max(acc.left, o.width())
		}
	}
	if sp.Right > 0 {
		if o, ok := overlap(box{rootWidth - int(sp.Right), int(sp.RightStartY), rootWidth, int(sp.RightEndY) + 1}); ok {
			acc.right = max(acc.right, o.width())
		}
	}
}

func findMonitorForWindow(c *Connection, monitors []Monitor, windowID xproto.Window) *Monitor {
	geom, err := c.WindowGeometry(windowID)
	if err != nil {
		return nil
	}
	return monitorAt(monitors, geom.X+geom.Width/2, geom.Y+geom.Height/2)
}

func findMonitorForPointer(c *Connection, monitors []Monitor) *Monitor {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil
	}
	return monitorAt(monitors, int(pointer.RootX), int(pointer.RootY))
}

func monitorAt(monitors []Monitor, x, y int) *Monitor {
	for i := range monitors {
		mon := &monitors[i]
		if x >= mon.X && x < mon.X+mon.Width && y >= mon.Y && y < mon.Y+mon.Height {
			return mon
		}
	}
	return nil
}
