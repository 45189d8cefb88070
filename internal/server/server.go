// Package server hosts the session transport and protocol engine behind a
// managed lifecycle: start, stop, is-running.
package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/segmentio/encoding/json"
	"golang.org/x/sync/errgroup"

	"github.com/mcpfetch/mcpfetch/internal/engine"
	"github.com/mcpfetch/mcpfetch/internal/errors"
	"github.com/mcpfetch/mcpfetch/internal/session"
	"github.com/mcpfetch/mcpfetch/internal/tool"
	"github.com/mcpfetch/mcpfetch/internal/wire"
)

const (
	// defaultStartupGrace is how long Start waits for the serve loop to
	// surface an immediate failure before reporting success.
	defaultStartupGrace = 100 * time.Millisecond

	// defaultShutdownTimeout bounds the graceful shutdown wait.
	defaultShutdownTimeout = 5 * time.Second

	// readHeaderTimeout bounds request header reads. The SSE stream itself
	// has no write deadline; it stays open for the session's lifetime.
	readHeaderTimeout = 10 * time.Second

	messagePath = "/messages/"
)

// Registration pairs a tool descriptor with its handler, for callers that
// extend the built-in tool set.
type Registration struct {
	Descriptor tool.Descriptor
	Handler    tool.Handler
}

// Options configures the server.
type Options struct {
	// Logger receives operational logging. Defaults to a discard logger.
	Logger *slog.Logger

	// Host is the bind host. Defaults to "0.0.0.0".
	Host string

	// HTTPClient is used by the fetch tool. Defaults to a client with a
	// 30s timeout.
	HTTPClient *http.Client

	// ServerName and ServerVersion identify this server in the
	// initialization handshake.
	ServerName    string
	ServerVersion string

	// StartupGrace is the wait after binding before Start reports success.
	StartupGrace time.Duration

	// ShutdownTimeout bounds the graceful shutdown wait in Stop.
	ShutdownTimeout time.Duration

	// Tools are registered in addition to the built-ins.
	Tools []Registration
}

func (o *Options) withDefaults() Options {
	out := *o

	if out.Logger == nil {
		out.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	if out.Host == "" {
		out.Host = "0.0.0.0"
	}

	if out.ServerName == "" {
		out.ServerName = "mcp-website-fetcher"
	}

	if out.ServerVersion == "" {
		out.ServerVersion = "0.1.0"
	}

	if out.StartupGrace <= 0 {
		out.StartupGrace = defaultStartupGrace
	}

	if out.ShutdownTimeout <= 0 {
		out.ShutdownTimeout = defaultShutdownTimeout
	}

	return out
}

// Server owns the run state and the serving goroutine.
//
// At most one serve loop is active per Server at a time; Start and Stop are
// safe to call from any goroutine.
type Server struct {
	log  *slog.Logger
	opts Options

	mu        sync.Mutex
	running   bool
	addr      string
	httpSrv   *http.Server
	transport *session.Transport
	eg        *errgroup.Group
}

// New creates a stopped server.
func New(opts Options) *Server {
	opts = opts.withDefaults()

	return &Server{
		log:  opts.Logger.With("component", "server"),
		opts: opts,
	}
}

// Start binds the listener and launches the serve loop in the background.
//
// Returns ErrAlreadyRunning if the server is running, or BindError if the
// listener could not bind. On success the server is running and Addr
// reports the bound address.
func (s *Server) Start(ctx context.Context, port int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.ErrAlreadyRunning
	}

	registry := tool.Builtin(s.opts.Logger, s.opts.HTTPClient)

	for _, reg := range s.opts.Tools {
		if err := registry.Register(reg.Descriptor, reg.Handler); err != nil {
			return fmt.Errorf("register tool: %w", err)
		}
	}

	eng := engine.New(s.opts.Logger, registry, wire.Implementation{
		Name:    s.opts.ServerName,
		Version: s.opts.ServerVersion,
	})

	transport := session.NewTransport(s.opts.Logger, eng, messagePath)

	addr := net.JoinHostPort(s.opts.Host, strconv.Itoa(port))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		s.log.Error("Listener bind failed", "addr", addr, "error", err)

		return &errors.BindError{Addr: addr, Err: err}
	}

	httpSrv := &http.Server{
		Handler:           s.router(transport),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	serveErr := make(chan error, 1)

	eg := &errgroup.Group{}
	eg.Go(func() error {
		err := httpSrv.Serve(ln)
		if err != nil && err != http.ErrServerClosed {
			serveErr <- err

			return err
		}

		return nil
	})

	// Give the serve loop a moment to surface an immediate failure.
	select {
	case err := <-serveErr:
		_ = eg.Wait()

		return &errors.BindError{Addr: addr, Err: err}
	case <-time.After(s.opts.StartupGrace):
	case <-ctx.Done():
		_ = httpSrv.Close()
		_ = eg.Wait()

		return ctx.Err()
	}

	s.running = true
	s.addr = ln.Addr().String()
	s.httpSrv = httpSrv
	s.transport = transport
	s.eg = eg

	s.log.Info("Server started", "addr", s.addr)

	return nil
}

// Stop gracefully shuts the server down.
//
// Idempotent: stopping a stopped server is a no-op. The wait is bounded by
// ShutdownTimeout; on timeout the condition is logged, remaining connections
// are closed, and the server is marked not-running regardless.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		s.log.Debug("Stop called while not running")

		return nil
	}

	s.log.Info("Server stopping")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.opts.ShutdownTimeout)
	defer cancel()

	// Tear down sessions first so the SSE handlers unblock and graceful
	// shutdown can complete.
	s.transport.CloseAll()

	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		s.log.Warn("Graceful shutdown incomplete", "error", errors.ErrShutdownTimeout, "cause", err)
		_ = s.httpSrv.Close()
	}

	_ = s.eg.Wait()

	s.running = false
	s.addr = ""
	s.httpSrv = nil
	s.transport = nil
	s.eg = nil

	s.log.Info("Server stopped")

	return nil
}

// IsRunning reports the current run state.
func (s *Server) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// Addr returns the bound address while running, or "" when stopped.
// Useful when starting with port 0.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addr
}

// router wires the HTTP surface: the stream endpoint, the message post
// endpoint, and a health check.
func (s *Server) router(transport *session.Transport) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/sse", transport.ServeSSE)
	r.Post(messagePath, transport.ServeMessage)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
