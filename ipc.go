package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	socketDir        = ".photowidget"
	editorSocketName = "editor.sock"

	cmdOpen    = "open"
	cmdRefresh = "refresh"
)

// IPCCommand represents a command sent to a running editor
type IPCCommand struct {
	Cmd  string `json:"cmd"`            // "open" or "refresh"
	Mode string `json:"mode,omitempty"` // for open: "photo" or "text"
}

// CommandHandler receives the commands accepted by the IPC server
type CommandHandler interface {
	OpenEditor(launch EditorLaunch)
	RefreshState()
}

// IPCServer manages the Unix socket server for receiving commands
type IPCServer struct {
	listener   net.Listener
	socketPath string
	handler    CommandHandler
	mu         sync.Mutex
	closed     bool
}

// getSocketDir returns the socket directory path
func getSocketDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.TempDir()
	}
	return filepath.Join(homeDir, socketDir)
}

// getEditorSocketPath returns the path of the running editor's socket
func getEditorSocketPath() string {
	return filepath.Join(getSocketDir(), editorSocketName)
}

// TrySendToExisting tries to connect to an existing instance and send a command
// Returns true if successful, false if no instance is running
func TrySendToExisting(socketPath string, cmd IPCCommand) bool {
	conn, err := net.DialTimeout("unix", socketPath, 500*time.Millisecond)
	if err != nil {
		// Connection failed - socket might be stale, clean it up
		os.Remove(socketPath)
		return false
	}
	defer conn.Close()

	if err := json.NewEncoder(conn).Encode(cmd); err != nil {
		return false
	}
	return true
}

// TrySendOpen asks a running editor to switch to the requested surface
func TrySendOpen(launch EditorLaunch) bool {
	return TrySendToExisting(getEditorSocketPath(), IPCCommand{Cmd: cmdOpen, Mode: launch.Arg()})
}

// NotifyEditor tells a running editor, if any, that the stored state changed
func NotifyEditor() bool {
	socketPath := getEditorSocketPath()
	if _, err := os.Stat(socketPath); err != nil {
		return false
	}
	return TrySendToExisting(socketPath, IPCCommand{Cmd: cmdRefresh})
}

// NewIPCServer creates a new IPC server listening on socketPath
func NewIPCServer(handler CommandHandler, socketPath string) (*IPCServer, error) {
	if err := os.MkdirAll(filepath.Dir(socketPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create socket directory: %w", err)
	}

	// Remove existing socket file if it exists
	os.Remove(socketPath)

	listener, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create socket: %w", err)
	}

	return &IPCServer{
		listener:   listener,
		socketPath: socketPath,
		handler:    handler,
	}, nil
}

// Start begins accepting connections
func (s *IPCServer) Start() {
	go func() {
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				s.mu.Lock()
				closed := s.closed
				s.mu.Unlock()
				if closed {
					return
				}
				continue
			}

			go s.handleConnection(conn)
		}
	}()
}

// handleConnection processes a single IPC connection
func (s *IPCServer) handleConnection(conn net.Conn) {
	defer conn.Close()

	var cmd IPCCommand
	if err := json.NewDecoder(conn).Decode(&cmd); err != nil {
		slog.Warn("ignoring malformed ipc command", "err", err)
		return
	}

	switch cmd.Cmd {
	case cmdOpen:
		s.handler.OpenEditor(ParseEditorLaunch(cmd.Mode))
	case cmdRefresh:
		s.handler.RefreshState()
	default:
		slog.Warn("ignoring unknown ipc command", "cmd", cmd.Cmd)
	}
}

// Close shuts down the IPC server and removes the socket file
func (s *IPCServer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	if s.listener != nil {
		s.listener.Close()
	}

	os.Remove(s.socketPath)
}

// StartEditorServer starts the IPC server for the editor process
func StartEditorServer(handler CommandHandler) (*IPCServer, error) {
	server, err := NewIPCServer(handler, getEditorSocketPath())
	if err != nil {
		return nil, err
	}
	server.Start()
	return server, nil
}
