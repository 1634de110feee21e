package window

import (
	"log/slog"
	"sort"

	"github.com/1broseidon/tilecore/internal/event"
	"github.com/1broseidon/tilecore/internal/platform"
)

// Describer resolves a handle to host metadata. It must fail fast for
// invalid or destroyed handles.
type Describer interface {
	DescribeWindow(windowID platform.WindowID) (platform.Window, error)
}

// Manager bridges host notifications into window lifecycle events. It owns
// the handle → wrapper cache and nothing else; routing windows to workspaces
// is the coordinator's job.
//
// Manager is not safe for concurrent use. All calls, including Dispatch,
// must come from the same goroutine.
type Manager struct {
	host    Describer
	source  platform.EventSource
	filters *LocationRestoringFilterManager
	logger  *slog.Logger

	windows     map[Handle]*Window
	moving      map[Handle]struct{}
	initialized bool

	added           event.Signal[*Window]
	focused         event.Signal[*Window]
	removed         event.Signal[*Window]
	moveStarted     event.Signal[*Window]
	moved           event.Signal[*Window]
	moveEnded       event.Signal[*Window]
	minimizeStarted event.Signal[*Window]
	minimizeEnded   event.Signal[*Window]
}

// NewManager creates a lifecycle manager. source may be nil when events are
// only fed through Dispatch.
func NewManager(host Describer, source platform.EventSource, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		host:    host,
		source:  source,
		filters: NewLocationRestoringFilterManager(),
		logger:  logger,
		windows: make(map[Handle]*Window),
		moving:  make(map[Handle]struct{}),
	}
}

// Filters returns the location-restoring filter set consulted by CreateWindow.
func (m *Manager) Filters() *LocationRestoringFilterManager {
	return m.filters
}

// Initialize installs the host observers. It may run once per process; later
// calls return ErrAlreadyInitialized without side effects.
func (m *Manager) Initialize() error {
	if m.initialized {
		return ErrAlreadyInitialized
	}
	m.initialized = true
	if m.source == nil {
		m.logger.Debug("no host event source configured")
		return nil
	}
	return m.source.Watch(m.Dispatch)
}

// CreateWindow returns the live wrapper for handle, creating it if needed.
// It does not register the window with any workspace.
func (m *Manager) CreateWindow(handle Handle) (*Window, error) {
	if w, ok := m.windows[handle]; ok && w.valid {
		return w, nil
	}

	info, err := m.host.DescribeWindow(handle)
	if err != nil {
		return nil, &CreationError{Handle: handle, Reason: ReasonInvalidHandle, Err: err}
	}
	info.ID = handle

	if name, ok := m.filters.Evaluate(info); !ok {
		return nil, &CreationError{Handle: handle, Reason: ReasonFiltered, Filter: name}
	}

	w := newWindow(info)
	m.windows[handle] = w
	return w, nil
}

// Lookup returns the live wrapper for handle, if any.
func (m *Manager) Lookup(handle Handle) (*Window, bool) {
	w, ok := m.windows[handle]
	if !ok || !w.valid {
		return nil, false
	}
	return w, true
}

// Handles returns the handles of all live wrappers in ascending order.
func (m *Manager) Handles() []Handle {
	handles := make([]Handle, 0, len(m.windows))
	for h := range m.windows {
		handles = append(handles, h)
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	return handles
}

// Dispatch processes one host notification and emits the matching
// lifecycle events.
func (m *Manager) Dispatch(ev platform.HostEvent) {
	if ev.Kind == platform.HostWindowCreated {
		m.handleCreated(ev.Window)
		return
	}

	w, ok := m.Lookup(ev.Window)
	if !ok {
		m.logger.Debug("ignoring event for untracked window",
			"window_id", uint32(ev.Window),
			"kind", ev.Kind.String())
		return
	}

	switch ev.Kind {
	case platform.HostWindowDestroyed:
		m.handleDestroyed(w)

	case platform.HostWindowFocused:
		m.focused.Emit(w)

	case platform.HostWindowMoveStart:
		if _, busy := m.moving[w.handle]; busy {
			return
		}
		m.moving[w.handle] = struct{}{}
		m.moveStarted.Emit(w)

	case platform.HostWindowMoved:
		w.info.Bounds = ev.Bounds
		m.moved.Emit(w)

	case platform.HostWindowMoveEnd:
		if _, busy := m.moving[w.handle]; !busy {
			m.logger.Debug("dropping move end without start", "window_id", uint32(w.handle))
			return
		}
		delete(m.moving, w.handle)
		m.moveEnded.Emit(w)

	case platform.HostWindowMinimizeStart:
		if w.minimized {
			return
		}
		w.minimized = true
		m.minimizeStarted.Emit(w)

	case platform.HostWindowMinimizeEnd:
		if !w.minimized {
			m.logger.Debug("dropping minimize end without start", "window_id", uint32(w.handle))
			return
		}
		w.minimized = false
		m.minimizeEnded.Emit(w)
	}
}

func (m *Manager) handleCreated(handle Handle) {
	if _, ok := m.Lookup(handle); ok {
		return
	}
	w, err := m.CreateWindow(handle)
	if err != nil {
		m.logger.Debug("window not tracked", "window_id", uint32(handle), "error", err)
		return
	}
	m.added.Emit(w)
}

func (m *Manager) handleDestroyed(w *Window) {
	// Close any open pairs so observers never see a start without its end.
	if _, busy := m.moving[w.handle]; busy {
		delete(m.moving, w.handle)
		m.moveEnded.Emit(w)
	}
	if w.minimized {
		w.minimized = false
		m.minimizeEnded.Emit(w)
	}

	w.valid = false
	delete(m.windows, w.handle)
	m.removed.Emit(w)
}

// OnAdded subscribes to window-added events.
func (m *Manager) OnAdded(fn func(*Window)) func() { return m.added.Subscribe(fn) }

// OnFocused subscribes to window-focused events.
func (m *Manager) OnFocused(fn func(*Window)) func() { return m.focused.Subscribe(fn) }

// OnRemoved subscribes to window-removed events.
func (m *Manager) OnRemoved(fn func(*Window)) func() { return m.removed.Subscribe(fn) }

// OnMoveStarted subscribes to window-move-started events.
func (m *Manager) OnMoveStarted(fn func(*Window)) func() { return m.moveStarted.Subscribe(fn) }

// OnMoved subscribes to window-moved events.
func (m *Manager) OnMoved(fn func(*Window)) func() { return m.moved.Subscribe(fn) }

// OnMoveEnded subscribes to window-move-ended events.
func (m *Manager) OnMoveEnded(fn func(*Window)) func() { return m.moveEnded.Subscribe(fn) }

// OnMinimizeStarted subscribes to window-minimize-started events.
func (m *Manager) OnMinimizeStarted(fn func(*Window)) func() {
	return m.minimizeStarted.Subscribe(fn)
}

// OnMinimizeEnded subscribes to window-minimize-ended events.
func (m *Manager) OnMinimizeEnded(fn func(*Window)) func() {
	return m.minimizeEnded.Subscribe(fn)
}
