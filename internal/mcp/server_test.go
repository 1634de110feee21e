package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/1broseidon/tilecore/internal/ipc"
)

type fakeDaemon struct {
	workspaces []ipc.WorkspaceInfo
	activated  string
	monitor    *int
	moved      map[uint32]string
	err        error
}

func (f *fakeDaemon) ListWorkspaces() (*ipc.WorkspacesData, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &ipc.WorkspacesData{Workspaces: f.workspaces}, nil
}

func (f *fakeDaemon) GetMonitors() (*ipc.MonitorsData, error) {
	return &ipc.MonitorsData{Monitors: []ipc.MonitorInfo{{ID: 0, Name: "HDMI-1", Workspace: "1"}}}, nil
}

func (f *fakeDaemon) ActivateWorkspace(name string, monitor *int) error {
	if f.err != nil {
		return f.err
	}
	f.activated = name
	f.monitor = monitor
	return nil
}

func (f *fakeDaemon) AddWorkspace(name, layout string) (*ipc.WorkspaceInfo, error) {
	if layout == "" {
		layout = "grid"
	}
	info := ipc.WorkspaceInfo{ID: len(f.workspaces) + 1, Name: name, Layout: layout}
	f.workspaces = append(f.workspaces, info)
	return &info, nil
}

func (f *fakeDaemon) RemoveWorkspace(name string) (bool, error) {
	for i, ws := range f.workspaces {
		if ws.Name == name {
			f.workspaces = append(f.workspaces[:i], f.workspaces[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDaemon) MoveWindow(windowID uint32, workspace string) error {
	if f.moved == nil {
		f.moved = make(map[uint32]string)
	}
	f.moved[windowID] = workspace
	return nil
}

func TestListWorkspaces_ReportsActive(t *testing.T) {
	daemon := &fakeDaemon{workspaces: []ipc.WorkspaceInfo{
		{ID: 1, Name: "1"},
		{ID: 2, Name: "2", Active: true},
	}}
	s := NewServer(daemon, nil)

	_, out, err := s.handleListWorkspaces(context.Background(), nil, ListWorkspacesInput{})
	if err != nil {
		t.Fatalf("handleListWorkspaces: %v", err)
	}
	if out.Active != "2" || len(out.Workspaces) != 2 {
		t.Fatalf("unexpected output %+v", out)
	}
}

func TestListMonitors(t *testing.T) {
	s := NewServer(&fakeDaemon{}, nil)
	_, out, err := s.handleListMonitors(context.Background(), nil, ListMonitorsInput{})
	if err != nil {
		t.Fatalf("handleListMonitors: %v", err)
	}
	if len(out.Monitors) != 1 || out.Monitors[0].Name != "HDMI-1" {
		t.Fatalf("unexpected monitors %+v", out.Monitors)
	}
}

func TestActivateWorkspace(t *testing.T) {
	daemon := &fakeDaemon{}
	s := NewServer(daemon, nil)

	monitor := 1
	_, out, err := s.handleActivateWorkspace(context.Background(), nil, ActivateWorkspaceInput{Name: " web ", Monitor: &monitor})
	if err != nil {
		t.Fatalf("handleActivateWorkspace: %v", err)
	}
	if daemon.activated != "web" || daemon.monitor == nil || *daemon.monitor != 1 {
		t.Fatalf("daemon saw %q on %v", daemon.activated, daemon.monitor)
	}
	if out.Name != "web" {
		t.Fatalf("output name = %q", out.Name)
	}

	if _, _, err := s.handleActivateWorkspace(context.Background(), nil, ActivateWorkspaceInput{}); err == nil {
		t.Fatalf("expected error for empty name")
	}
}

func TestActivateWorkspace_PropagatesDaemonError(t *testing.T) {
	s := NewServer(&fakeDaemon{err: errors.New("daemon error: workspace not found")}, nil)
	_, _, err := s.handleActivateWorkspace(context.Background(), nil, ActivateWorkspaceInput{Name: "nope"})
	if err == nil || !strings.Contains(err.Error(), "activate_workspace: daemon error") {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestAddAndRemoveWorkspace(t *testing.T) {
	daemon := &fakeDaemon{}
	s := NewServer(daemon, nil)

	_, added, err := s.handleAddWorkspace(context.Background(), nil, AddWorkspaceInput{Name: "scratch", Layout: "columns"})
	if err != nil {
		t.Fatalf("handleAddWorkspace: %v", err)
	}
	if added.Workspace.Name != "scratch" || added.Workspace.Layout != "columns" {
		t.Fatalf("unexpected workspace %+v", added.Workspace)
	}

	_, removed, err := s.handleRemoveWorkspace(context.Background(), nil, RemoveWorkspaceInput{Name: "scratch"})
	if err != nil || !removed.Removed {
		t.Fatalf("remove = %+v, %v", removed, err)
	}
	_, removed, err = s.handleRemoveWorkspace(context.Background(), nil, RemoveWorkspaceInput{Name: "scratch"})
	if err != nil || removed.Removed {
		t.Fatalf("second remove = %+v, %v", removed, err)
	}
}

func TestMoveWindow(t *testing.T) {
	daemon := &fakeDaemon{}
	s := NewServer(daemon, nil)

	tests := []struct {
		name    string
		input   MoveWindowInput
		wantErr bool
	}{
		{"valid", MoveWindowInput{WindowID: 0x1c00007, Workspace: "2"}, false},
		{"missing window", MoveWindowInput{Workspace: "2"}, true},
		{"missing workspace", MoveWindowInput{WindowID: 0x1c00007}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.handleMoveWindow(context.Background(), nil, tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
	if daemon.moved[0x1c00007] != "2" {
		t.Fatalf("moved = %v", daemon.moved)
	}
}
