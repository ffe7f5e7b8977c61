package mcp

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/honeycarbs/jobsearch/internal/config"
	"github.com/honeycarbs/jobsearch/internal/httpapi"
	"github.com/honeycarbs/jobsearch/pkg/logging"
)

// Server serves the MCP streamable-HTTP endpoint, the REST API and
// /metrics from one listener
type Server struct {
	logger *logging.Logger
	config config.Config

	srv     *http.Server
	started atomic.Bool
}

// NewServer constructs the HTTP server around res
func NewServer(log *logging.Logger, cfg config.Config, res Resources) (*Server, error) {
	handler, err := newHandler(log, res)
	if err != nil {
		return nil, err
	}

	httpSrv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		logger: log,
		config: cfg,
		srv:    httpSrv,
	}, nil
}

func newHandler(log *logging.Logger, res Resources) (http.Handler, error) {
	impl := &sdkmcp.Implementation{
		Name:    "jobsearch",
		Version: "0.2.0",
	}

	mcpServer := sdkmcp.NewServer(impl, nil)
	NewToolRegistry(log).RegisterAll(mcpServer, res)

	streamHandler := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return mcpServer
	}, nil)

	api, err := httpapi.NewHandler(res.JobService, res.SavedService, res.Checks, log)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/mcp/stream", streamHandler)
	if res.MetricsHandler != nil {
		mux.Handle("/metrics", res.MetricsHandler)
	}
	mux.Handle("/", api.Router())
	return mux, nil
}

// Run starts the HTTP server and blocks until shutdown
func (s *Server) Run() error {
	if !s.started.CompareAndSwap(false, true) {
		return nil
	}

	s.logger.Info("HTTP server listening", "addr", s.srv.Addr)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutdown requested for HTTP server")
	if err := s.srv.Shutdown(ctx); err != nil {
		s.logger.Warn("HTTP server shutdown with error", "err", err)
		return err
	}

	s.logger.Info("HTTP server shutdown complete")
	return nil
}
