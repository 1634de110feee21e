package window

import (
	"errors"
	"fmt"
)

// ErrAlreadyInitialized is returned by a second call to Manager.Initialize.
var ErrAlreadyInitialized = errors.New("window manager already initialized")

// CreationReason says why CreateWindow refused a handle.
type CreationReason int

const (
	// ReasonInvalidHandle means the host could not describe the handle,
	// usually because the window is already gone.
	ReasonInvalidHandle CreationReason = iota
	// ReasonFiltered means a location-restoring filter rejected the window.
	ReasonFiltered
)

func (r CreationReason) String() string {
	switch r {
	case ReasonInvalidHandle:
		return "invalid handle"
	case ReasonFiltered:
		return "filtered"
	default:
		return "unknown"
	}
}

// CreationError is returned by CreateWindow.
type CreationError struct {
	Handle Handle
	Reason CreationReason
	// Filter names the rejecting filter when Reason is ReasonFiltered.
	Filter string
	Err    error
}

func (e *CreationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Reason {
	case ReasonFiltered:
		return fmt.Sprintf("window 0x%x rejected by filter %q", uint32(e.Handle), e.Filter)
	default:
		if e.Err != nil {
			return fmt.Sprintf("window 0x%x: %s: %v", uint32(e.Handle), e.Reason, e.Err)
		}
		return fmt.Sprintf("window 0x%x: %s", uint32(e.Handle), e.Reason)
	}
}

func (e *CreationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
