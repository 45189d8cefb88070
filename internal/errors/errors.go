// Package errors defines the error taxonomy shared across the server.
package errors

import (
	"errors"
	"fmt"
)

// ServerError is the base interface for all errors produced by this module.
type ServerError interface {
	error
	IsMCPFetchError() bool
}

// Compile-time verification that all error types implement ServerError.
var (
	_ ServerError = (*DuplicateToolError)(nil)
	_ ServerError = (*UnknownToolError)(nil)
	_ ServerError = (*MissingArgumentError)(nil)
	_ ServerError = (*ToolExecutionError)(nil)
	_ ServerError = (*FetchError)(nil)
	_ ServerError = (*BindError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrAlreadyRunning indicates the server is already running in this process.
	ErrAlreadyRunning = errors.New("server already running")

	// ErrNotInitialized indicates a request arrived before the initialize handshake.
	ErrNotInitialized = errors.New("session not initialized")

	// ErrAlreadyInitialized indicates a second initialize request on the same session.
	ErrAlreadyInitialized = errors.New("session already initialized")

	// ErrUnknownSession indicates a posted message named a session that is not open.
	ErrUnknownSession = errors.New("unknown session")

	// ErrSessionClosed indicates the session was torn down while a message was in flight.
	ErrSessionClosed = errors.New("session closed")

	// ErrShutdownTimeout indicates graceful shutdown exceeded its bounded wait.
	// It is logged and swallowed; shutdown proceeds regardless.
	ErrShutdownTimeout = errors.New("shutdown timed out")
)

// DuplicateToolError indicates a tool name was registered twice.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool already registered: %s", e.Name)
}

// IsMCPFetchError implements ServerError.
func (e *DuplicateToolError) IsMCPFetchError() bool { return true }

// UnknownToolError indicates a call named a tool that is not registered.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Name)
}

// IsMCPFetchError implements ServerError.
func (e *UnknownToolError) IsMCPFetchError() bool { return true }

// MissingArgumentError indicates a required schema field was absent from the arguments.
type MissingArgumentError struct {
	Tool  string
	Field string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("tool %s: missing required argument %q", e.Tool, e.Field)
}

// IsMCPFetchError implements ServerError.
func (e *MissingArgumentError) IsMCPFetchError() bool { return true }

// ToolExecutionError wraps a failure raised by a tool handler.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}

// IsMCPFetchError implements ServerError.
func (e *ToolExecutionError) IsMCPFetchError() bool { return true }

// FetchError indicates the fetch tool could not retrieve the requested URL.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}

	return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsMCPFetchError implements ServerError.
func (e *FetchError) IsMCPFetchError() bool { return true }

// BindError indicates the listener could not bind to the requested address.
type BindError struct {
	Addr string
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("bind %s: %v", e.Addr, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

// IsMCPFetchError implements ServerError.
func (e *BindError) IsMCPFetchError() bool { return true }
