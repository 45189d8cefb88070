package mcpfetch

import "context"

// Server manages the lifecycle of one MCP SSE server instance.
//
// The network listener and all sessions run in a background serving context;
// Start, Stop, and IsRunning are safe to call from any goroutine.
//
// Example usage:
//
//	srv := mcpfetch.NewServer(mcpfetch.WithLogger(slog.Default()))
//	if err := srv.Start(ctx, 8000); err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Stop(ctx)
//
//	// clients connect to GET /sse and POST /messages/?session_id=<id>
type Server interface {
	// Start binds the listener on the given port and launches the serving
	// loop in the background. Returns ErrAlreadyRunning if the server is
	// already running, or a BindError if the port cannot be bound; in the
	// failure cases the server remains not-running.
	//
	// Port 0 binds an ephemeral port; use Addr to discover it.
	Start(ctx context.Context, port int) error

	// Stop gracefully shuts the server down: open sessions are torn down
	// and the listener is closed, bounded by the shutdown timeout.
	// Idempotent; stopping a stopped server is a no-op.
	Stop(ctx context.Context) error

	// IsRunning reports whether the server is currently running.
	IsRunning() bool

	// Addr returns the bound address while running, or "" when stopped.
	Addr() string
}

// NewServer creates a stopped server.
//
// Call Start with a port to begin serving:
//
//	srv := mcpfetch.NewServer(
//	    mcpfetch.WithLogger(slog.Default()),
//	    mcpfetch.WithServerInfo("my-tools", "1.0.0"),
//	)
//	err := srv.Start(ctx, 8000)
func NewServer(opts ...Option) Server {
	return newServerImpl(opts)
}
