package mcpfetch

import "github.com/mcpfetch/mcpfetch/internal/errors"

// Re-export error types from internal package

// DuplicateToolError indicates a tool name was registered twice.
type DuplicateToolError = errors.DuplicateToolError

// UnknownToolError indicates a call named a tool that is not registered.
type UnknownToolError = errors.UnknownToolError

// MissingArgumentError indicates a required schema field was absent from the arguments.
type MissingArgumentError = errors.MissingArgumentError

// ToolExecutionError wraps a failure raised by a tool handler.
type ToolExecutionError = errors.ToolExecutionError

// FetchError indicates the fetch tool could not retrieve the requested URL.
type FetchError = errors.FetchError

// BindError indicates the listener could not bind to the requested address.
type BindError = errors.BindError

// ServerError is the base interface for all errors produced by this module.
type ServerError = errors.ServerError

// Re-export sentinel errors from internal package.
var (
	// ErrAlreadyRunning indicates the server is already running in this process.
	ErrAlreadyRunning = errors.ErrAlreadyRunning

	// ErrNotInitialized indicates a request arrived before the initialize handshake.
	ErrNotInitialized = errors.ErrNotInitialized

	// ErrUnknownSession indicates a posted message named a session that is not open.
	ErrUnknownSession = errors.ErrUnknownSession

	// ErrShutdownTimeout indicates graceful shutdown exceeded its bounded wait.
	ErrShutdownTimeout = errors.ErrShutdownTimeout
)
