package mcpfetch

import (
	"context"

	"github.com/mcpfetch/mcpfetch/internal/server"
)

// serverWrapper wraps the internal server to adapt it to the public interface.
type serverWrapper struct {
	impl *server.Server
}

// Compile-time check that *serverWrapper implements the Server interface.
var _ Server = (*serverWrapper)(nil)

// newServerImpl creates the internal server implementation.
func newServerImpl(opts []Option) Server {
	return &serverWrapper{impl: server.New(applyOptions(opts))}
}

// Start binds the listener and launches the serving loop in the background.
func (s *serverWrapper) Start(ctx context.Context, port int) error {
	return s.impl.Start(ctx, port)
}

// Stop gracefully shuts the server down.
func (s *serverWrapper) Stop(ctx context.Context) error {
	return s.impl.Stop(ctx)
}

// IsRunning reports whether the server is currently running.
func (s *serverWrapper) IsRunning() bool {
	return s.impl.IsRunning()
}

// Addr returns the bound address while running, or "" when stopped.
func (s *serverWrapper) Addr() string {
	return s.impl.Addr()
}
