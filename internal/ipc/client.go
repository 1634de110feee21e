package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/tilecore/internal/runtimepath"
)

// Client handles IPC communication with the daemon
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient creates a client for the default runtime socket.
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientWithSocket(socketPath)
}

// NewClientWithSocket creates a client for socketPath.
func NewClientWithSocket(socketPath string) *Client {
	return &Client{
		socketPath: socketPath,
		timeout:    requestTimeout + 2*time.Second,
	}
}

func (c *Client) sendRequest(command CommandType, payload any) (*Response, error) {
	req := &Request{Command: command}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", command, err)
		}
		req.Payload = raw
	}

	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(c.timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == "ERROR" {
		return nil, fmt.Errorf("daemon error: %s", resp.Error)
	}

	return &resp, nil
}

func (c *Client) call(command CommandType, payload any, out any) error {
	resp, err := c.sendRequest(command, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", command, err)
	}
	return nil
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	var status StatusData
	if err := c.call(CommandGetStatus, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetMonitors retrieves monitor information
func (c *Client) GetMonitors() (*MonitorsData, error) {
	var monitors MonitorsData
	if err := c.call(CommandGetMonitors, nil, &monitors); err != nil {
		return nil, err
	}
	return &monitors, nil
}

// ListWorkspaces retrieves every workspace in order.
func (c *Client) ListWorkspaces() (*WorkspacesData, error) {
	var data WorkspacesData
	if err := c.call(CommandListWorkspaces, nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// AddWorkspace creates a workspace with layout, or the default layout when
// layout is empty.
func (c *Client) AddWorkspace(name, layout string) (*WorkspaceInfo, error) {
	var info WorkspaceInfo
	if err := c.call(CommandAddWorkspace, AddWorkspacePayload{Name: name, Layout: layout}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// RemoveWorkspace deletes a workspace. It reports false when no workspace
// has that name.
func (c *Client) RemoveWorkspace(name string) (bool, error) {
	var data RemoveWorkspaceData
	if err := c.call(CommandRemoveWorkspace, RemoveWorkspacePayload{Name: name}, &data); err != nil {
		return false, err
	}
	return data.Removed, nil
}

// ActivateWorkspace shows a workspace on monitor, or on the focused monitor
// when monitor is nil.
func (c *Client) ActivateWorkspace(name string, monitor *int) error {
	return c.call(CommandActivateWorkspace, ActivateWorkspacePayload{Name: name, Monitor: monitor}, nil)
}

// RenameWorkspace renames a workspace.
func (c *Client) RenameWorkspace(oldName, newName string) error {
	return c.call(CommandRenameWorkspace, RenameWorkspacePayload{OldName: oldName, NewName: newName}, nil)
}

// MoveWindow reroutes a tracked window to a workspace.
func (c *Client) MoveWindow(windowID uint32, workspace string) error {
	return c.call(CommandMoveWindow, MoveWindowPayload{WindowID: windowID, Workspace: workspace}, nil)
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}
