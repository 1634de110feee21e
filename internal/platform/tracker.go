package platform

import (
	"sort"
	"time"
)

// DefaultMoveSettle is how long a window's geometry must stay unchanged
// before a move is reported as finished.
const DefaultMoveSettle = 250 * time.Millisecond

// WindowSnapshot is the host state of a window when it is first seen.
type WindowSnapshot struct {
	ID     WindowID
	Bounds Rect
	Hidden bool
}

type trackedWindow struct {
	bounds   Rect
	hidden   bool
	moving   bool
	lastMove time.Time
	expect   *Rect
}

// Tracker derives HostEvents from polled or notified host state. Hosts such
// as X11 report property and geometry changes rather than lifecycle events;
// Tracker diffs them into created, destroyed, focused, move and minimize
// notifications. It is not safe for concurrent use.
type Tracker struct {
	windows map[WindowID]*trackedWindow
	active  WindowID
	settle  time.Duration
	emit    func(HostEvent)
}

// NewTracker creates a tracker that reports to emit. settle <= 0 selects
// DefaultMoveSettle.
func NewTracker(settle time.Duration, emit func(HostEvent)) *Tracker {
	if settle <= 0 {
		settle = DefaultMoveSettle
	}
	return &Tracker{
		windows: make(map[WindowID]*trackedWindow),
		settle:  settle,
		emit:    emit,
	}
}

// Tracked reports whether id is currently tracked.
func (t *Tracker) Tracked(id WindowID) bool {
	_, ok := t.windows[id]
	return ok
}

// SyncClients reconciles the tracked set against the host's client list.
// Windows that disappeared are reported destroyed, in handle order. New
// windows are described with describe, in list order; a false result skips
// the window.
func (t *Tracker) SyncClients(ids []WindowID, describe func(WindowID) (WindowSnapshot, bool)) (added, removed []WindowID) {
	present := make(map[WindowID]struct{}, len(ids))
	for _, id := range ids {
		present[id] = struct{}{}
	}

	for id := range t.windows {
		if _, ok := present[id]; !ok {
			removed = append(removed, id)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i] < removed[j] })
	for _, id := range removed {
		delete(t.windows, id)
		if t.active == id {
			t.active = 0
		}
		t.emit(HostEvent{Kind: HostWindowDestroyed, Window: id})
	}

	for _, id := range ids {
		if _, ok := t.windows[id]; ok {
			continue
		}
		snap, ok := describe(id)
		if !ok {
			continue
		}
		t.windows[id] = &trackedWindow{bounds: snap.Bounds, hidden: snap.Hidden}
		added = append(added, id)
		t.emit(HostEvent{Kind: HostWindowCreated, Window: id, Bounds: snap.Bounds})
		if snap.Hidden {
			t.emit(HostEvent{Kind: HostWindowMinimizeStart, Window: id})
		}
	}
	return added, removed
}

// ActiveChanged reports focus moving to id. Untracked windows and repeats
// are ignored.
func (t *Tracker) ActiveChanged(id WindowID) {
	if id == t.active {
		return
	}
	if _, ok := t.windows[id]; !ok {
		return
	}
	t.active = id
	t.emit(HostEvent{Kind: HostWindowFocused, Window: id})
}

// Expect records geometry the caller is about to apply itself. A matching
// configure is absorbed without move events.
func (t *Tracker) Expect(id WindowID, bounds Rect) {
	if w, ok := t.windows[id]; ok {
		b := bounds
		w.expect = &b
	}
}

// Configured reports a geometry change for id at now.
func (t *Tracker) Configured(id WindowID, bounds Rect, now time.Time) {
	w, ok := t.windows[id]
	if !ok || w.bounds == bounds {
		return
	}
	if w.expect != nil && *w.expect == bounds {
		w.expect = nil
		w.bounds = bounds
		return
	}
	w.bounds = bounds
	w.lastMove = now
	if !w.moving {
		w.moving = true
		t.emit(HostEvent{Kind: HostWindowMoveStart, Window: id, Bounds: bounds})
	}
	t.emit(HostEvent{Kind: HostWindowMoved, Window: id, Bounds: bounds})
}

// StateChanged reports the window's hidden state.
func (t *Tracker) StateChanged(id WindowID, hidden bool) {
	w, ok := t.windows[id]
	if !ok || w.hidden == hidden {
		return
	}
	w.hidden = hidden
	if hidden {
		t.emit(HostEvent{Kind: HostWindowMinimizeStart, Window: id})
		return
	}
	t.emit(HostEvent{Kind: HostWindowMinimizeEnd, Window: id})
}

// Settle ends moves that have been quiet for the settle period.
func (t *Tracker) Settle(now time.Time) {
	var done []WindowID
	for id, w := range t.windows {
		if w.moving && now.Sub(w.lastMove) >= t.settle {
			done = append(done, id)
		}
	}
	sort.Slice(done, func(i, j int) bool { return done[i] < done[j] })
	for _, id := range done {
		w := t.windows[id]
		w.moving = false
		t.emit(HostEvent{Kind: HostWindowMoveEnd, Window: id, Bounds: w.bounds})
	}
}
