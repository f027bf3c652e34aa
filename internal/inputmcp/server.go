// Package inputmcp exposes a request_user_input MCP tool. An agent calls it
// with a set of questions; the call blocks until the user answers in the
// feed's input panel.
package inputmcp

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/threadfeed/threadfeed/internal/conversation"
	"github.com/threadfeed/threadfeed/internal/logger"
)

// Server is the MCP endpoint plus the bookkeeping for requests waiting on
// the user.
type Server struct {
	mcpServer  *server.MCPServer
	httpServer *server.StreamableHTTPServer
	port       int
	mu         sync.Mutex

	workspaceID string
	threadID    string

	requests chan conversation.InputRequest
	pending  map[string]chan map[string][]string
	newID    func() string
}

// New creates a server that attributes requests to the given thread unless
// the caller names another one. The server is not started until Start.
func New(workspaceID, threadID string) *Server {
	s := &Server{
		workspaceID: workspaceID,
		threadID:    threadID,
		requests:    make(chan conversation.InputRequest, 8),
		pending:     make(map[string]chan map[string][]string),
		newID:       newRequestID,
	}
	s.mcpServer = server.NewMCPServer(
		"threadfeed-input",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	s.registerTools()
	return s
}

// Start serves MCP over streamable HTTP on a random local port.
func (s *Server) Start(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer != nil {
		return 0, fmt.Errorf("server already started")
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to find available port: %w", err)
	}
	s.port = listener.Addr().(*net.TCPAddr).Port
	_ = listener.Close()

	s.httpServer = server.NewStreamableHTTPServer(
		s.mcpServer,
		server.WithStateLess(true),
	)

	addr := fmt.Sprintf("127.0.0.1:%d", s.port)
	httpServer := s.httpServer
	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Start(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			s.httpServer = nil
			return 0, fmt.Errorf("failed to start HTTP server: %w", err)
		}
	case <-time.After(100 * time.Millisecond):
	}

	logger.Debug("Input MCP server ready on port %d", s.port)
	return s.port, nil
}

// Stop shuts the HTTP server down. Requests still waiting are released
// through their contexts.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(context.Background()); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}
	s.httpServer = nil
	return nil
}

// URL returns the MCP endpoint.
func (s *Server) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fmt.Sprintf("http://localhost:%d/mcp", s.port)
}

// Requests delivers input requests as agents raise them.
func (s *Server) Requests() <-chan conversation.InputRequest {
	return s.requests
}

// Answer resolves a waiting request. It reports false for ids this server
// does not know, e.g. requests that came with a snapshot.
func (s *Server) Answer(requestID string, answers map[string][]string) bool {
	s.mu.Lock()
	ch, ok := s.pending[requestID]
	if ok {
		delete(s.pending, requestID)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	ch <- answers
	return true
}

// Pending returns the number of unanswered requests.
func (s *Server) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *Server) register(id string) chan map[string][]string {
	ch := make(chan map[string][]string, 1)
	s.mu.Lock()
	s.pending[id] = ch
	s.mu.Unlock()
	return ch
}

func (s *Server) forget(id string) {
	s.mu.Lock()
	delete(s.pending, id)
	s.mu.Unlock()
}
