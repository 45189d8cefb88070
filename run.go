package mcpfetch

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
)

// Run statuses reported in a RunResult.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// InvocationInputs carries the input parameters of an invocation.
type InvocationInputs struct {
	Port int `json:"port"`
}

// Invocation describes a request to run the managed server. ConsumerID and
// Signature identify the caller and are passed through untouched.
type Invocation struct {
	Inputs     InvocationInputs `json:"inputs"`
	ConsumerID string           `json:"consumer_id,omitempty"`
	Signature  string           `json:"signature,omitempty"`
}

// RunResult reports the outcome of a Run call.
type RunResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// The managed server is a process-wide singleton guarded by managedMu.
var (
	managedMu     sync.Mutex
	managedServer Server
)

// Run starts the managed server on the port named in the invocation. When the
// server is already running the call reports success without touching it.
// Expected startup failures, such as a port that is already in use, are
// reported in the RunResult rather than as an error.
func Run(ctx context.Context, inv Invocation, opts ...Option) (*RunResult, error) {
	managedMu.Lock()
	defer managedMu.Unlock()

	if managedServer != nil && managedServer.IsRunning() {
		return &RunResult{
			Status:  StatusSuccess,
			Message: fmt.Sprintf("Server already running on %s", managedServer.Addr()),
		}, nil
	}

	srv := NewServer(opts...)
	if err := srv.Start(ctx, inv.Inputs.Port); err != nil {
		var bindErr *BindError
		if stderrors.As(err, &bindErr) || stderrors.Is(err, ErrAlreadyRunning) {
			return &RunResult{
				Status:  StatusError,
				Message: fmt.Sprintf("Failed to start MCP server: %v", err),
			}, nil
		}
		return nil, err
	}

	managedServer = srv
	return &RunResult{
		Status:  StatusSuccess,
		Message: fmt.Sprintf("MCP server started on %s", srv.Addr()),
	}, nil
}

// Shutdown stops the managed server if one is running. It is safe to call
// when no server has been started.
func Shutdown(ctx context.Context) error {
	managedMu.Lock()
	defer managedMu.Unlock()

	if managedServer == nil {
		return nil
	}

	err := managedServer.Stop(ctx)
	managedServer = nil
	return err
}

// Running reports whether the managed server is currently running.
func Running() bool {
	managedMu.Lock()
	defer managedMu.Unlock()

	return managedServer != nil && managedServer.IsRunning()
}

// ManagedAddr returns the bound address of the managed server, or "" when it
// is not running.
func ManagedAddr() string {
	managedMu.Lock()
	defer managedMu.Unlock()

	if managedServer == nil {
		return ""
	}
	return managedServer.Addr()
}
