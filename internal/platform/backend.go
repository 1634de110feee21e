package platform

// WindowID is a platform-neutral native window handle.
type WindowID uint32

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID     int
	Name   string
	Bounds Rect
	Usable Rect
}

// Window contains metadata and geometry for a top-level window.
type Window struct {
	ID     WindowID
	PID    int
	AppID  string
	Title  string
	Bounds Rect
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	Displays() ([]Display, error)
	ActiveDisplay() (Display, error)
	ActiveWindow() (WindowID, error)
	// DescribeWindow returns current metadata for a live window. It fails
	// without blocking when the handle is invalid or already destroyed.
	DescribeWindow(windowID WindowID) (Window, error)
	// ListWindows returns every managed top-level window known to the host.
	ListWindows() ([]Window, error)
	MoveResize(windowID WindowID, bounds Rect) error
}

// HostEventKind identifies a window notification delivered by the host.
type HostEventKind int

const (
	HostWindowCreated HostEventKind = iota
	HostWindowDestroyed
	HostWindowFocused
	HostWindowMoveStart
	HostWindowMoved
	HostWindowMoveEnd
	HostWindowMinimizeStart
	HostWindowMinimizeEnd
)

func (k HostEventKind) String() string {
	switch k {
	case HostWindowCreated:
		return "created"
	case HostWindowDestroyed:
		return "destroyed"
	case HostWindowFocused:
		return "focused"
	case HostWindowMoveStart:
		return "move-start"
	case HostWindowMoved:
		return "moved"
	case HostWindowMoveEnd:
		return "move-end"
	case HostWindowMinimizeStart:
		return "minimize-start"
	case HostWindowMinimizeEnd:
		return "minimize-end"
	default:
		return "unknown"
	}
}

// HostEvent is one window notification from the host.
type HostEvent struct {
	Kind   HostEventKind
	Window WindowID
	// Bounds is set for move notifications.
	Bounds Rect
}

// EventSource installs host observers. Implementations must deliver events
// to sink on a single goroutine, in the order the host reports them.
type EventSource interface {
	Watch(sink func(HostEvent)) error
}
