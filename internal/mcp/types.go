package mcp

import "github.com/1broseidon/tilecore/internal/ipc"

// ListWorkspacesInput is the input for the list_workspaces tool.
type ListWorkspacesInput struct{}

// ListWorkspacesOutput is the output for the list_workspaces tool.
type ListWorkspacesOutput struct {
	Active     string              `json:"active"`
	Workspaces []ipc.WorkspaceInfo `json:"workspaces"`
}

// ListMonitorsInput is the input for the list_monitors tool.
type ListMonitorsInput struct{}

// ListMonitorsOutput is the output for the list_monitors tool.
type ListMonitorsOutput struct {
	Monitors []ipc.MonitorInfo `json:"monitors"`
}

// ActivateWorkspaceInput is the input for the activate_workspace tool.
type ActivateWorkspaceInput struct {
	Name    string `json:"name" jsonschema:"required,Workspace name to show"`
	Monitor *int   `json:"monitor,omitempty" jsonschema:"Monitor ID to show it on (default: the focused monitor)"`
}

// ActivateWorkspaceOutput is the output for the activate_workspace tool.
type ActivateWorkspaceOutput struct {
	Name    string `json:"name"`
	Monitor *int   `json:"monitor,omitempty"`
}

// AddWorkspaceInput is the input for the add_workspace tool.
type AddWorkspaceInput struct {
	Name   string `json:"name" jsonschema:"required,Name of the new workspace"`
	Layout string `json:"layout,omitempty" jsonschema:"Layout name from config (default: default_layout)"`
}

// AddWorkspaceOutput is the output for the add_workspace tool.
type AddWorkspaceOutput struct {
	Workspace ipc.WorkspaceInfo `json:"workspace"`
}

// RemoveWorkspaceInput is the input for the remove_workspace tool.
type RemoveWorkspaceInput struct {
	Name string `json:"name" jsonschema:"required,Workspace name to remove; its windows move to the last remaining workspace"`
}

// RemoveWorkspaceOutput is the output for the remove_workspace tool.
type RemoveWorkspaceOutput struct {
	Name    string `json:"name"`
	Removed bool   `json:"removed"`
}

// MoveWindowInput is the input for the move_window tool.
type MoveWindowInput struct {
	WindowID  uint32 `json:"window_id" jsonschema:"required,X11 window ID of a tracked window"`
	Workspace string `json:"workspace" jsonschema:"required,Destination workspace name"`
}

// MoveWindowOutput is the output for the move_window tool.
type MoveWindowOutput struct {
	WindowID  uint32 `json:"window_id"`
	Workspace string `json:"workspace"`
}
