package mcp

import (
	"context"
	"log/slog"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/tilecore/internal/ipc"
)

const (
	ServerName    = "tilecore"
	ServerVersion = "0.1.0"
)

// DaemonClient is the subset of the IPC client the tools call.
type DaemonClient interface {
	ListWorkspaces() (*ipc.WorkspacesData, error)
	GetMonitors() (*ipc.MonitorsData, error)
	ActivateWorkspace(name string, monitor *int) error
	AddWorkspace(name, layout string) (*ipc.WorkspaceInfo, error)
	RemoveWorkspace(name string) (bool, error)
	MoveWindow(windowID uint32, workspace string) error
}

// Server exposes workspace control as MCP tools backed by the daemon.
type Server struct {
	mcpServer *mcpsdk.Server
	daemon    DaemonClient
	logger    *slog.Logger
}

// NewServer creates an MCP server that forwards tool calls to daemon.
func NewServer(daemon DaemonClient, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		daemon: daemon,
		logger: logger,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_workspaces",
		Description: "List every workspace in order with its layout, the monitor it is shown on (absent when hidden), whether it is active, and the window IDs routed to it.",
	}, s.handleListWorkspaces)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_monitors",
		Description: "List monitors with their geometry and the workspace each one shows.",
	}, s.handleListMonitors)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "activate_workspace",
		Description: "Show a workspace on a monitor (the focused monitor by default). If the workspace is visible elsewhere, the two monitors swap workspaces.",
	}, s.handleActivateWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "add_workspace",
		Description: "Create a new hidden workspace with a unique name and an optional layout.",
	}, s.handleAddWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "remove_workspace",
		Description: "Remove a workspace. Its windows move to the last remaining workspace. Fails if fewer workspaces than monitors would remain.",
	}, s.handleRemoveWorkspace)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "move_window",
		Description: "Move a tracked window to another workspace by X11 window ID.",
	}, s.handleMoveWindow)
}
