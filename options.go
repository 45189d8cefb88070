package mcpfetch

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mcpfetch/mcpfetch/internal/server"
)

// Option configures a Server using the functional options pattern.
type Option func(*server.Options)

// applyOptions applies functional options to a server.Options struct.
func applyOptions(opts []Option) server.Options {
	options := server.Options{}
	for _, opt := range opts {
		opt(&options)
	}

	return options
}

// WithLogger sets the logger for operational output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *server.Options) {
		o.Logger = logger
	}
}

// WithHost sets the bind host. Defaults to "0.0.0.0".
func WithHost(host string) Option {
	return func(o *server.Options) {
		o.Host = host
	}
}

// WithServerInfo sets the name and version announced in the
// initialization handshake.
func WithServerInfo(name, version string) Option {
	return func(o *server.Options) {
		o.ServerName = name
		o.ServerVersion = version
	}
}

// WithHTTPClient sets the HTTP client used by the fetch tool.
// Useful for injecting timeouts, proxies, or a test transport.
func WithHTTPClient(client *http.Client) Option {
	return func(o *server.Options) {
		o.HTTPClient = client
	}
}

// WithStartupGrace sets how long Start waits for the serve loop to surface
// an immediate failure before reporting success.
func WithStartupGrace(d time.Duration) Option {
	return func(o *server.Options) {
		o.StartupGrace = d
	}
}

// WithShutdownTimeout bounds the graceful shutdown wait in Stop.
// On timeout the condition is logged and remaining connections are closed.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *server.Options) {
		o.ShutdownTimeout = d
	}
}

// WithTool registers an additional tool alongside the built-ins.
// Start fails with DuplicateToolError if the name collides.
func WithTool(desc ToolDescriptor, handler ToolHandler) Option {
	return func(o *server.Options) {
		o.Tools = append(o.Tools, server.Registration{Descriptor: desc, Handler: handler})
	}
}
