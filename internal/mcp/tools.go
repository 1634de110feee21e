package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) handleListWorkspaces(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListWorkspacesInput) (*mcpsdk.CallToolResult, ListWorkspacesOutput, error) {
	data, err := s.daemon.ListWorkspaces()
	if err != nil {
		return nil, ListWorkspacesOutput{}, fmt.Errorf("list_workspaces: %w", err)
	}

	out := ListWorkspacesOutput{Workspaces: data.Workspaces}
	for _, ws := range data.Workspaces {
		if ws.Active {
			out.Active = ws.Name
			break
		}
	}
	return nil, out, nil
}

func (s *Server) handleListMonitors(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListMonitorsInput) (*mcpsdk.CallToolResult, ListMonitorsOutput, error) {
	data, err := s.daemon.GetMonitors()
	if err != nil {
		return nil, ListMonitorsOutput{}, fmt.Errorf("list_monitors: %w", err)
	}
	return nil, ListMonitorsOutput{Monitors: data.Monitors}, nil
}

func (s *Server) handleActivateWorkspace(_ context.Context, _ *mcpsdk.CallToolRequest, args ActivateWorkspaceInput) (*mcpsdk.CallToolResult, ActivateWorkspaceOutput, error) {
	name, err := requireName("activate_workspace", args.Name)
	if err != nil {
		return nil, ActivateWorkspaceOutput{}, err
	}
	if err := s.daemon.ActivateWorkspace(name, args.Monitor); err != nil {
		return nil, ActivateWorkspaceOutput{}, fmt.Errorf("activate_workspace: %w", err)
	}
	s.logger.Info("mcp activated workspace", "workspace", name)
	return nil, ActivateWorkspaceOutput{Name: name, Monitor: args.Monitor}, nil
}

func (s *Server) handleAddWorkspace(_ context.Context, _ *mcpsdk.CallToolRequest, args AddWorkspaceInput) (*mcpsdk.CallToolResult, AddWorkspaceOutput, error) {
	name, err := requireName("add_workspace", args.Name)
	if err != nil {
		return nil, AddWorkspaceOutput{}, err
	}
	info, err := s.daemon.AddWorkspace(name, strings.TrimSpace(args.Layout))
	if err != nil {
		return nil, AddWorkspaceOutput{}, fmt.Errorf("add_workspace: %w", err)
	}
	s.logger.Info("mcp added workspace", "workspace", name, "layout", info.Layout)
	return nil, AddWorkspaceOutput{Workspace: *info}, nil
}

func (s *Server) handleRemoveWorkspace(_ context.Context, _ *mcpsdk.CallToolRequest, args RemoveWorkspaceInput) (*mcpsdk.CallToolResult, RemoveWorkspaceOutput, error) {
	name, err := requireName("remove_workspace", args.Name)
	if err != nil {
		return nil, RemoveWorkspaceOutput{}, err
	}
	removed, err := s.daemon.RemoveWorkspace(name)
	if err != nil {
		return nil, RemoveWorkspaceOutput{}, fmt.Errorf("remove_workspace: %w", err)
	}
	if removed {
		s.logger.Info("mcp removed workspace", "workspace", name)
	}
	return nil, RemoveWorkspaceOutput{Name: name, Removed: removed}, nil
}

func (s *Server) handleMoveWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args MoveWindowInput) (*mcpsdk.CallToolResult, MoveWindowOutput, error) {
	if args.WindowID == 0 {
		return nil, MoveWindowOutput{}, fmt.Errorf("move_window: window_id is required")
	}
	name, err := requireName("move_window", args.Workspace)
	if err != nil {
		return nil, MoveWindowOutput{}, err
	}
	if err := s.daemon.MoveWindow(args.WindowID, name); err != nil {
		return nil, MoveWindowOutput{}, fmt.Errorf("move_window: %w", err)
	}
	return nil, MoveWindowOutput{WindowID: args.WindowID, Workspace: name}, nil
}

func requireName(tool, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%s: workspace name is required", tool)
	}
	return name, nil
}
