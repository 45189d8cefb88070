// Package engine implements the per-session protocol state machine.
package engine

import (
	"context"
	stderrors "errors"
	"log/slog"

	"github.com/segmentio/encoding/json"

	"github.com/mcpfetch/mcpfetch/internal/errors"
	"github.com/mcpfetch/mcpfetch/internal/session"
	"github.com/mcpfetch/mcpfetch/internal/tool"
	"github.com/mcpfetch/mcpfetch/internal/wire"
)

// state is the per-session protocol state.
type state int

const (
	stateUninitialized state = iota
	stateInitialized
)

// Engine services protocol requests for sessions by dispatching to the tool
// registry. One Serve call runs per session; sessions are independent.
type Engine struct {
	log      *slog.Logger
	registry *tool.Registry
	info     wire.Implementation
}

// New creates an engine backed by the given registry.
func New(log *slog.Logger, registry *tool.Registry, info wire.Implementation) *Engine {
	return &Engine{
		log:      log.With("component", "engine"),
		registry: registry,
		info:     info,
	}
}

// Serve consumes a session's messages until end-of-stream, servicing them in
// arrival order. Tool and protocol failures become error responses on the
// stream; only a torn-down session or cancelled context stops the loop.
func (e *Engine) Serve(ctx context.Context, sess *session.Session) {
	log := e.log.With("session_id", sess.ID())
	log.Debug("Engine serving session")

	defer log.Debug("Engine stopped")

	st := stateUninitialized

	for {
		select {
		case req := <-sess.Incoming():
			if err := e.handle(ctx, sess, req, &st); err != nil {
				if !stderrors.Is(err, errors.ErrSessionClosed) {
					log.Warn("Abandoning session", "error", err)
				}

				return
			}

		case <-sess.Done():
			return

		case <-ctx.Done():
			return
		}
	}
}

// handle services one message. A returned error means the session write side
// is gone and the loop should stop; protocol-level failures are reported to
// the client instead.
func (e *Engine) handle(ctx context.Context, sess *session.Session, req *wire.Request, st *state) error {
	if req.IsNotification() {
		e.handleNotification(sess, req, *st)

		return nil
	}

	var resp *wire.Response

	switch req.Method {
	case wire.MethodInitialize:
		resp = e.handleInitialize(sess, req, st)

	case wire.MethodPing:
		resp = wire.NewResponse(req.ID, struct{}{})

	case wire.MethodListTools:
		resp = e.handleListTools(req, *st)

	case wire.MethodCallTool:
		resp = e.handleCallTool(ctx, req, *st)

	default:
		resp = wire.NewErrorResponse(req.ID, wire.CodeMethodNotFound, "method not found: "+req.Method)
	}

	return e.respond(sess, resp)
}

func (e *Engine) handleNotification(sess *session.Session, req *wire.Request, st state) {
	switch req.Method {
	case wire.MethodInitialized:
		if st != stateInitialized {
			e.log.Warn("Initialized notification before handshake", "session_id", sess.ID())

			return
		}

		e.log.Debug("Client completed initialization", "session_id", sess.ID())

	default:
		e.log.Debug("Ignoring notification", "session_id", sess.ID(), "method", req.Method)
	}
}

func (e *Engine) handleInitialize(sess *session.Session, req *wire.Request, st *state) *wire.Response {
	if *st != stateUninitialized {
		return wire.NewErrorResponse(req.ID, wire.CodeInvalidRequest, errors.ErrAlreadyInitialized.Error())
	}

	var params wire.InitializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return wire.NewErrorResponse(req.ID, wire.CodeInvalidParams, "invalid initialize params: "+err.Error())
		}
	}

	e.log.Info("Session initialized",
		"session_id", sess.ID(),
		"client", params.ClientInfo.Name,
		"protocol_version", params.ProtocolVersion,
	)

	*st = stateInitialized

	return wire.NewResponse(req.ID, &wire.InitializeResult{
		ProtocolVersion: wire.ProtocolVersion,
		Capabilities: wire.ServerCapabilities{
			Tools: &wire.ToolsCapability{},
		},
		ServerInfo: e.info,
	})
}

func (e *Engine) handleListTools(req *wire.Request, st state) *wire.Response {
	if st != stateInitialized {
		return wire.NewErrorResponse(req.ID, wire.CodeInvalidRequest, errors.ErrNotInitialized.Error())
	}

	descs := e.registry.List()

	tools := make([]wire.ToolInfo, 0, len(descs))
	for _, d := range descs {
		tools = append(tools, wire.ToolInfo{
			Name:        d.Name,
			Description: d.Description,
			InputSchema: d.InputSchema,
		})
	}

	return wire.NewResponse(req.ID, &wire.ListToolsResult{Tools: tools})
}

func (e *Engine) handleCallTool(ctx context.Context, req *wire.Request, st state) *wire.Response {
	if st != stateInitialized {
		return wire.NewErrorResponse(req.ID, wire.CodeInvalidRequest, errors.ErrNotInitialized.Error())
	}

	var params wire.CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return wire.NewErrorResponse(req.ID, wire.CodeInvalidParams, "invalid call params: "+err.Error())
	}

	if params.Arguments == nil {
		params.Arguments = map[string]any{}
	}

	content, err := e.registry.Invoke(ctx, params.Name, params.Arguments)
	if err != nil {
		return wire.NewErrorResponse(req.ID, callErrorCode(err), err.Error())
	}

	return wire.NewResponse(req.ID, &wire.CallToolResult{Content: content})
}

// callErrorCode maps tool dispatch failures to JSON-RPC error codes.
// Bad requests (unknown tool, missing argument) are invalid params; handler
// failures are internal errors. Either way the session stays open.
func callErrorCode(err error) int {
	var (
		unknown *errors.UnknownToolError
		missing *errors.MissingArgumentError
	)

	if stderrors.As(err, &unknown) || stderrors.As(err, &missing) {
		return wire.CodeInvalidParams
	}

	return wire.CodeInternalError
}

func (e *Engine) respond(sess *session.Session, resp *wire.Response) error {
	data, err := wire.Encode(resp)
	if err != nil {
		return err
	}

	return sess.Send(data)
}
