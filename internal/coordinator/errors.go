package coordinator

import (
	"errors"
	"fmt"
)

var (
	ErrNotInitialized     = errors.New("coordinator not initialized")
	ErrAlreadyInitialized = errors.New("coordinator already initialized")
	ErrWorkspaceNotFound  = errors.New("workspace not found")
	ErrMonitorNotFound    = errors.New("monitor not found")
	ErrWindowNotTracked   = errors.New("window not tracked")
	ErrDuplicateName      = errors.New("workspace name already in use")
	ErrEmptyName          = errors.New("workspace name is empty")
)

// InvariantError reports an operation that would leave fewer workspaces than
// monitors. It is a configuration error and is never retried.
type InvariantError struct {
	Workspaces int
	Monitors   int
	Op         string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: %d workspaces cannot cover %d monitors", e.Op, e.Workspaces, e.Monitors)
}
