package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"themehint/pkg/core"
)

const (
	CommandActivate = "activate"
	CommandStart    = "start"
	CommandStop     = "stop"
)

const requestTimeout = 5 * time.Second

type Request struct {
	Command string `json:"command"`
}

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Handler receives lifecycle triggers from socket clients.
type Handler interface {
	Started()
	Activated()
	Stopped()
}

// Server accepts trigger commands on a unix socket.
type Server struct {
	path    string
	handler Handler
	log     core.Logger
}

func NewServer(path string, handler Handler, log core.Logger) *Server {
	return &Server{path: path, handler: handler, log: log}
}

// Serve listens until ctx is done. The socket file is removed on return.
func (s *Server) Serve(ctx context.Context) error {
	// Remove the socket file if it already exists
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove existing socket file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}

	listener, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("failed to start socket server: %w", err)
	}
	defer os.Remove(s.path)

	s.log.Info("Socket server started", "path", s.path)

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.log.Debug("Socket server stopped", "path", s.path)
				return nil
			}
			s.log.Error("Failed to accept connection", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleConnection(conn)
		}()
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(requestTimeout))

	var req Request
	if err := json.NewDecoder(conn).Decode(&req); err != nil {
		s.log.Error("Failed to decode request", err)
		return
	}

	s.log.Info("Received request", "command", req.Command)

	resp := s.dispatch(req.Command)
	if err := json.NewEncoder(conn).Encode(resp); err != nil {
		s.log.Error("Failed to encode response", err)
	} else {
		s.log.Debug("Response sent successfully", "status", resp.Status)
	}
}

func (s *Server) dispatch(command string) Response {
	switch command {
	case CommandActivate:
		s.handler.Activated()
		return Response{Status: "success", Message: "Theme pass scheduled"}
	case CommandStart:
		s.handler.Started()
		return Response{Status: "success", Message: "Theme pass scheduled"}
	case CommandStop:
		s.handler.Stopped()
		return Response{Status: "success", Message: "Theme hints cleared"}
	default:
		s.log.Error("Unknown command received", fmt.Errorf("command: %s", command))
		return Response{Status: "error", Message: "Unknown command"}
	}
}
