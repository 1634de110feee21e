// Package workspace defines the Workspace entity: a named, ordered set of
// windows arranged by a layout engine.
package workspace

import (
	"github.com/1broseidon/tilecore/internal/platform"
	"github.com/1broseidon/tilecore/internal/window"
)

// ID is the stable identifier the coordinator assigns on Add. The zero ID
// means "not yet added".
type ID int

// LayoutEngine arranges a workspace's windows inside area.
type LayoutEngine interface {
	Name() string
	Recompute(ws *Workspace, area platform.Rect) error
}

// ProxyFactory wraps a layout engine with a delegating transform.
type ProxyFactory func(inner LayoutEngine) LayoutEngine

// Workspace is an ordered collection of windows plus a layout engine.
// Mutation methods are intended for the coordinator, which keeps the
// window → workspace mapping consistent with Windows().
type Workspace struct {
	id      ID
	name    string
	windows []*window.Window
	base    LayoutEngine
	engine  LayoutEngine
	proxies []ProxyFactory
}

// New creates a workspace. engine may be nil, in which case DoLayout is a
// no-op.
func New(name string, engine LayoutEngine) *Workspace {
	return &Workspace{
		name:   name,
		base:   engine,
		engine: engine,
	}
}

// ID returns the coordinator-assigned id.
func (w *Workspace) ID() ID { return w.id }

// SetID is used by the coordinator when the workspace is added.
func (w *Workspace) SetID(id ID) { w.id = id }

// Name returns the workspace name.
func (w *Workspace) Name() string { return w.name }

// SetName renames the workspace.
func (w *Workspace) SetName(name string) { w.name = name }

// Windows returns a copy of the windows in order.
func (w *Workspace) Windows() []*window.Window {
	out := make([]*window.Window, len(w.windows))
	copy(out, w.windows)
	return out
}

// Len returns the number of windows.
func (w *Workspace) Len() int { return len(w.windows) }

// Contains reports whether the workspace owns handle.
func (w *Workspace) Contains(handle window.Handle) bool {
	return w.indexOf(handle) >= 0
}

// AddWindow appends win. It returns false if win is already present.
func (w *Workspace) AddWindow(win *window.Window) bool {
	if win == nil || w.Contains(win.Handle()) {
		return false
	}
	w.windows = append(w.windows, win)
	return true
}

// RemoveWindow removes handle, preserving the order of the rest.
func (w *Workspace) RemoveWindow(handle window.Handle) bool {
	i := w.indexOf(handle)
	if i < 0 {
		return false
	}
	w.windows = append(w.windows[:i], w.windows[i+1:]...)
	return true
}

func (w *Workspace) indexOf(handle window.Handle) int {
	for i, win := range w.windows {
		if win.Handle() == handle {
			return i
		}
	}
	return -1
}

// Engine returns the effective layout engine, including proxies.
func (w *Workspace) Engine() LayoutEngine { return w.engine }

// BaseEngine returns the engine without proxies.
func (w *Workspace) BaseEngine() LayoutEngine { return w.base }

// SetEngine replaces the base engine and re-applies the proxies recorded by
// the last Initialize.
func (w *Workspace) SetEngine(engine LayoutEngine) {
	w.base = engine
	w.engine = wrap(engine, w.proxies)
}

// Initialize wraps the base engine with proxies, first proxy innermost.
func (w *Workspace) Initialize(proxies []ProxyFactory) {
	w.proxies = append([]ProxyFactory(nil), proxies...)
	w.engine = wrap(w.base, w.proxies)
}

// DoLayout asks the engine to arrange the windows inside area.
func (w *Workspace) DoLayout(area platform.Rect) error {
	if w.engine == nil {
		return nil
	}
	return w.engine.Recompute(w, area)
}

func wrap(engine LayoutEngine, proxies []ProxyFactory) LayoutEngine {
	if engine == nil {
		return nil
	}
	for _, p := range proxies {
		if p == nil {
			continue
		}
		engine = p(engine)
	}
	return engine
}
