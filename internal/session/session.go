// Package session bridges the SSE stream and the message post endpoint into
// one bidirectional channel per client.
package session

import (
	"crypto/rand"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/mcpfetch/mcpfetch/internal/errors"
	"github.com/mcpfetch/mcpfetch/internal/wire"
)

const (
	// incomingBufferSize bounds posted messages awaiting the engine.
	incomingBufferSize = 16

	// outgoingBufferSize bounds responses awaiting the stream writer.
	outgoingBufferSize = 16
)

// entropy feeds session id generation. Session ids are capability tokens
// embedded in the post endpoint URL, so they draw from crypto/rand.
var entropy = &ulid.LockedMonotonicReader{
	MonotonicReader: ulid.Monotonic(rand.Reader, 0),
}

// NewID returns a fresh unguessable session id.
func NewID() string {
	return ulid.MustNew(ulid.Now(), entropy).String()
}

// Session is one logical bidirectional exchange with a client.
//
// Posted messages arrive on the incoming channel and are consumed by the
// protocol engine; engine responses go out on the outgoing channel and are
// flushed onto the SSE stream by the transport.
type Session struct {
	id  string
	log *slog.Logger

	incoming chan *wire.Request
	outgoing chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

// New creates an open session with the given id.
func New(log *slog.Logger, id string) *Session {
	return &Session{
		id:       id,
		log:      log.With("session_id", id),
		incoming: make(chan *wire.Request, incomingBufferSize),
		outgoing: make(chan []byte, outgoingBufferSize),
		done:     make(chan struct{}),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Deliver enqueues a posted message for the engine.
//
// Returns ErrSessionClosed if the session was torn down.
func (s *Session) Deliver(req *wire.Request) error {
	select {
	case <-s.done:
		return errors.ErrSessionClosed
	default:
	}

	select {
	case s.incoming <- req:
		return nil
	case <-s.done:
		return errors.ErrSessionClosed
	}
}

// Send enqueues a serialized message for the stream writer.
//
// Returns ErrSessionClosed if the session was torn down.
func (s *Session) Send(data []byte) error {
	select {
	case s.outgoing <- data:
		return nil
	case <-s.done:
		return errors.ErrSessionClosed
	}
}

// Incoming is the engine's read side.
func (s *Session) Incoming() <-chan *wire.Request { return s.incoming }

// Outgoing is the stream writer's read side.
func (s *Session) Outgoing() <-chan []byte { return s.outgoing }

// Done is closed when the session is torn down.
func (s *Session) Done() <-chan struct{} { return s.done }

// Close tears the session down. Safe to call multiple times; the engine's
// read side observes end-of-stream via Done.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.log.Debug("Session closed")
		close(s.done)
	})
}
