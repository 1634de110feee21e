package window

import (
	"strings"

	"github.com/1broseidon/tilecore/internal/platform"
)

// Verdict is the result of a location-restoring filter.
type Verdict int

const (
	Accept Verdict = iota
	Reject
)

// LocationRestoringFilter inspects a candidate window before its wrapper is
// committed. Windows that restore their own position are rejected so they are
// never tracked.
type LocationRestoringFilter func(info platform.Window) Verdict

type namedFilter struct {
	name string
	fn   LocationRestoringFilter
}

// LocationRestoringFilterManager is an ordered set of filters. The first
// filter returning Reject aborts window creation.
type LocationRestoringFilterManager struct {
	filters []namedFilter
}

// NewLocationRestoringFilterManager returns an empty filter set.
func NewLocationRestoringFilterManager() *LocationRestoringFilterManager {
	return &LocationRestoringFilterManager{}
}

// Add appends a filter. Nil filters are ignored.
func (m *LocationRestoringFilterManager) Add(name string, fn LocationRestoringFilter) {
	if fn == nil {
		return
	}
	m.filters = append(m.filters, namedFilter{name: name, fn: fn})
}

// Remove drops every filter called name and reports whether any was found.
func (m *LocationRestoringFilterManager) Remove(name string) bool {
	kept := m.filters[:0]
	for _, f := range m.filters {
		if f.name != name {
			kept = append(kept, f)
		}
	}
	removed := len(kept) != len(m.filters)
	for i := len(kept); i < len(m.filters); i++ {
		m.filters[i] = namedFilter{}
	}
	m.filters = kept
	return removed
}

// Names returns filter names in evaluation order.
func (m *LocationRestoringFilterManager) Names() []string {
	names := make([]string, 0, len(m.filters))
	for _, f := range m.filters {
		names = append(names, f.name)
	}
	return names
}

// Evaluate runs the filters in order. ok is false when a filter rejected the
// window; rejectedBy then names it.
func (m *LocationRestoringFilterManager) Evaluate(info platform.Window) (rejectedBy string, ok bool) {
	for _, f := range m.filters {
		if f.fn(info) == Reject {
			return f.name, false
		}
	}
	return "", true
}

// ExcludeClasses rejects windows whose app id matches one of classes,
// ignoring case.
func ExcludeClasses(classes ...string) LocationRestoringFilter {
	set := make(map[string]struct{}, len(classes))
	for _, c := range classes {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			set[c] = struct{}{}
		}
	}
	return func(info platform.Window) Verdict {
		if _, ok := set[strings.ToLower(info.AppID)]; ok {
			return Reject
		}
		return Accept
	}
}

// ExcludeTitles rejects windows whose title contains any of substrings.
func ExcludeTitles(substrings ...string) LocationRestoringFilter {
	var needles []string
	for _, s := range substrings {
		if strings.TrimSpace(s) != "" {
			needles = append(needles, s)
		}
	}
	return func(info platform.Window) Verdict {
		for _, n := range needles {
			if strings.Contains(info.Title, n) {
				return Reject
			}
		}
		return Accept
	}
}
