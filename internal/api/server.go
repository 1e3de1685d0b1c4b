package api

import (
	"net/http/httptest"
	"sync"

	"github.com/balaji-balu/lizzy-client/internal/api/middleware"
	"github.com/balaji-balu/lizzy-client/internal/api/store"
	"github.com/balaji-balu/lizzy-client/internal/version"
)

// Server is a running in-process agent.
type Server struct {
	*httptest.Server
	Store    *store.Store
	Recorder *middleware.Recorder

	mu      sync.Mutex
	version string
	output  string
}

// NewServer starts an agent on a local port that accepts the given bearer
// token, any token when empty. Close it when done.
func NewServer(token string) *Server {
	s := &Server{
		Store:    store.New(),
		Recorder: &middleware.Recorder{},
		version:  version.Version,
	}
	s.Server = httptest.NewServer(NewRouter(RouterConfig{
		Store:    s.Store,
		Recorder: s.Recorder,
		Token:    token,
		Version:  s.Version,
		Output:   s.Output,
	}))
	return s
}

// SetVersion changes the X-Lizzy-Version the agent reports.
func (s *Server) SetVersion(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version = v
}

func (s *Server) Version() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// SetOutput changes the log the agent attaches to its responses.
func (s *Server) SetOutput(out string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.output = out
}

func (s *Server) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output
}
