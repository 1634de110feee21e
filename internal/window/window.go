// Package window wraps native window handles and turns host notifications
// into ordered lifecycle events.
package window

import (
	"fmt"

	"github.com/1broseidon/tilecore/internal/platform"
)

// Handle identifies a native window. It is unique for as long as the
// underlying window exists.
type Handle = platform.WindowID

// Window is the owned wrapper around one native window. Identity is the
// handle; at most one live wrapper exists per handle.
type Window struct {
	handle    Handle
	info      platform.Window
	valid     bool
	minimized bool
}

func newWindow(info platform.Window) *Window {
	return &Window{
		handle: info.ID,
		info:   info,
		valid:  true,
	}
}

// Handle returns the native handle.
func (w *Window) Handle() Handle { return w.handle }

// Info returns the cached host metadata.
func (w *Window) Info() platform.Window { return w.info }

// Title returns the cached window title.
func (w *Window) Title() string { return w.info.Title }

// AppID returns the cached application id (WM_CLASS class on X11).
func (w *Window) AppID() string { return w.info.AppID }

// Bounds returns the last known geometry.
func (w *Window) Bounds() platform.Rect { return w.info.Bounds }

// Valid reports whether the native window is still alive.
func (w *Window) Valid() bool { return w.valid }

// Minimized reports whether the window is between minimize start and end.
func (w *Window) Minimized() bool { return w.minimized }

func (w *Window) String() string {
	if w == nil {
		return "<nil window>"
	}
	return fmt.Sprintf("0x%x(%s)", uint32(w.handle), w.info.AppID)
}
