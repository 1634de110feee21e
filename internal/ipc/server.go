package ipc

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"sync"
	"time"

	"github.com/1broseidon/tilecore/internal/runtimepath"
)

// requestTimeout bounds how long one command may wait on the daemon.
const requestTimeout = 10 * time.Second

// Controller executes IPC commands against the running daemon.
type Controller interface {
	Status(ctx context.Context) (StatusData, error)
	Monitors(ctx context.Context) ([]MonitorInfo, error)
	Workspaces(ctx context.Context) ([]WorkspaceInfo, error)
	AddWorkspace(ctx context.Context, name, layout string) (WorkspaceInfo, error)
	RemoveWorkspace(ctx context.Context, name string) (bool, error)
	ActivateWorkspace(ctx context.Context, name string, monitor *int) error
	RenameWorkspace(ctx context.Context, oldName, newName string) error
	MoveWindow(ctx context.Context, windowID uint32, workspace string) error
}

// Server handles IPC requests from clients
type Server struct {
	socketPath   string
	listener     net.Listener
	ctrl         Controller
	logger       *slog.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	shuttingDown bool
	shutdownMu   sync.Mutex
}

// NewServer creates a new IPC server. An empty socketPath selects
// runtimepath.SocketPath.
func NewServer(socketPath string, ctrl Controller, logger *slog.Logger) (*Server, error) {
	if socketPath == "" {
		path, err := runtimepath.SocketPath()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve IPC socket path: %w", err)
		}
		socketPath = path
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Remove existing socket if present
	os.Remove(socketPath)

	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		socketPath: socketPath,
		ctrl:       ctrl,
		logger:     logger,
		ctx:        ctx,
		cancel:     cancel,
	}, nil
}

// SocketPath returns the socket the server listens on.
func (s *Server) SocketPath() string {
	return s.socketPath
}

// Start begins listening for IPC connections
func (s *Server) Start() error {
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create IPC socket: %w", err)
	}
	s.listener = listener

	if err := os.Chmod(s.socketPath, 0600); err != nil {
		listener.Close()
		return fmt.Errorf("failed to set socket permissions: %w", err)
	}

	s.logger.Info("IPC server listening", "socket", s.socketPath)

	go s.acceptLoop()

	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			s.shutdownMu.Lock()
			if s.shuttingDown {
				s.shutdownMu.Unlock()
				return
			}
			s.shutdownMu.Unlock()
			s.logger.Warn("IPC accept error", "error", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)

	// One JSON request per line.
	data, err := reader.ReadBytes('\n')
	if err != nil && err != io.EOF {
		s.logger.Debug("IPC read error", "error", err)
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		s.sendError(conn, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, requestTimeout)
	defer cancel()
	resp := s.handleCommand(ctx, req)

	respData, err := resp.Marshal()
	if err != nil {
		s.logger.Error("failed to marshal IPC response", "error", err)
		return
	}

	respData = append(respData, '\n')
	if _, err := conn.Write(respData); err != nil {
		s.logger.Debug("failed to send IPC response", "error", err)
	}
}

func (s *Server) handleCommand(ctx context.Context, req *Request) *Response {
	s.logger.Debug("IPC command", "command", req.Command)

	switch req.Command {
	case CommandGetStatus:
		status, err := s.ctrl.Status(ctx)
		return reply(status, err)
	case CommandGetMonitors:
		monitors, err := s.ctrl.Monitors(ctx)
		return reply(MonitorsData{Monitors: monitors}, err)
	case CommandListWorkspaces:
		workspaces, err := s.ctrl.Workspaces(ctx)
		return reply(WorkspacesData{Workspaces: workspaces}, err)
	case CommandAddWorkspace:
		var p AddWorkspacePayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		if p.Name == "" {
			return NewErrorResponse("name is required")
		}
		info, err := s.ctrl.AddWorkspace(ctx, p.Name, p.Layout)
		return reply(info, err)
	case CommandRemoveWorkspace:
		var p RemoveWorkspacePayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		removed, err := s.ctrl.RemoveWorkspace(ctx, p.Name)
		return reply(RemoveWorkspaceData{Removed: removed}, err)
	case CommandActivateWorkspace:
		var p ActivateWorkspacePayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		if p.Name == "" {
			return NewErrorResponse("name is required")
		}
		return reply(nil, s.ctrl.ActivateWorkspace(ctx, p.Name, p.Monitor))
	case CommandRenameWorkspace:
		var p RenameWorkspacePayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		if p.OldName == "" || p.NewName == "" {
			return NewErrorResponse("old_name and new_name are required")
		}
		return reply(nil, s.ctrl.RenameWorkspace(ctx, p.OldName, p.NewName))
	case CommandMoveWindow:
		var p MoveWindowPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return NewErrorResponse(err.Error())
		}
		if p.WindowID == 0 || p.Workspace == "" {
			return NewErrorResponse("window_id and workspace are required")
		}
		return reply(nil, s.ctrl.MoveWindow(ctx, p.WindowID, p.Workspace))
	default:
		return NewErrorResponse(fmt.Sprintf("Unknown command: %s", req.Command))
	}
}

func decodePayload(payload json.RawMessage, out any) error {
	if len(payload) == 0 {
		return fmt.Errorf("missing payload")
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func reply(data any, err error) *Response {
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	resp, err := NewOKResponse(data)
	if err != nil {
		return NewErrorResponse(err.Error())
	}
	return resp
}

func (s *Server) sendError(conn net.Conn, errMsg string) {
	resp := NewErrorResponse(errMsg)
	data, _ := resp.Marshal()
	data = append(data, '\n')
	conn.Write(data)
}

// Stop gracefully shuts down the IPC server
func (s *Server) Stop() {
	s.shutdownMu.Lock()
	s.shuttingDown = true
	s.shutdownMu.Unlock()

	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}
	os.Remove(s.socketPath)
}
