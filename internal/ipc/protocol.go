package ipc

import (
	"encoding/json"
	"fmt"
)

// CommandType represents different IPC command types
type CommandType string

const (
	CommandGetStatus         CommandType = "GET_STATUS"
	CommandGetMonitors       CommandType = "GET_MONITORS"
	CommandListWorkspaces    CommandType = "LIST_WORKSPACES"
	CommandAddWorkspace      CommandType = "ADD_WORKSPACE"
	CommandRemoveWorkspace   CommandType = "REMOVE_WORKSPACE"
	CommandActivateWorkspace CommandType = "ACTIVATE_WORKSPACE"
	CommandRenameWorkspace   CommandType = "RENAME_WORKSPACE"
	CommandMoveWindow        CommandType = "MOVE_WINDOW"
)

// Request represents an IPC request from client to server
type Request struct {
	Command CommandType     `json:"command"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response represents an IPC response from server to client
type Response struct {
	Status string          `json:"status"` // "OK" or "ERROR"
	Data   json.RawMessage `json:"data,omitempty"`
	Error  string          `json:"error,omitempty"`
}

// StatusData represents the data returned by GET_STATUS
type StatusData struct {
	ActiveWorkspace string `json:"active_workspace"`
	Workspaces      int    `json:"workspaces"`
	Monitors        int    `json:"monitors"`
	Windows         int    `json:"windows"`
	UptimeSeconds   int64  `json:"uptime_seconds"`
	DaemonRunning   bool   `json:"daemon_running"`
}

// MonitorInfo represents information about a single monitor
type MonitorInfo struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Workspace string `json:"workspace"`
}

// MonitorsData represents the data returned by GET_MONITORS
type MonitorsData struct {
	Monitors []MonitorInfo `json:"monitors"`
}

// WorkspaceInfo describes one workspace. Monitor is nil for hidden
// workspaces.
type WorkspaceInfo struct {
	ID      int      `json:"id"`
	Name    string   `json:"name"`
	Layout  string   `json:"layout"`
	Monitor *int     `json:"monitor,omitempty"`
	Active  bool     `json:"active"`
	Windows []uint32 `json:"windows"`
}

// WorkspacesData represents the data returned by LIST_WORKSPACES
type WorkspacesData struct {
	Workspaces []WorkspaceInfo `json:"workspaces"`
}

// AddWorkspacePayload creates a workspace. An empty layout selects the
// configured default.
type AddWorkspacePayload struct {
	Name   string `json:"name"`
	Layout string `json:"layout,omitempty"`
}

type RemoveWorkspacePayload struct {
	Name string `json:"name"`
}

type RemoveWorkspaceData struct {
	Removed bool `json:"removed"`
}

// ActivateWorkspacePayload shows a workspace on Monitor, or on the focused
// monitor when Monitor is nil.
type ActivateWorkspacePayload struct {
	Name    string `json:"name"`
	Monitor *int   `json:"monitor,omitempty"`
}

type RenameWorkspacePayload struct {
	OldName string `json:"old_name"`
	NewName string `json:"new_name"`
}

type MoveWindowPayload struct {
	WindowID  uint32 `json:"window_id"`
	Workspace string `json:"workspace"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status: "OK",
		Data:   dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(errMsg string) *Response {
	return &Response{
		Status: "ERROR",
		Error:  errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}
