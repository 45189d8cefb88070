package session

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/mcpfetch/mcpfetch/internal/wire"
)

// maxMessageBytes bounds a single posted protocol message.
const maxMessageBytes = 4 << 20

// Handler consumes a session's incoming messages. The protocol engine
// implements this; the transport starts one Serve per session.
type Handler interface {
	Serve(ctx context.Context, sess *Session)
}

// Transport manages all open sessions and exposes the two HTTP endpoints:
// the long-lived SSE stream and the short-lived message post.
type Transport struct {
	log         *slog.Logger
	handler     Handler
	messagePath string

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool

	wg sync.WaitGroup
}

// NewTransport creates a transport that routes posted messages to sessions
// and hands each new session to the handler.
//
// messagePath is the base path of the post endpoint announced to clients,
// e.g. "/messages/".
func NewTransport(log *slog.Logger, handler Handler, messagePath string) *Transport {
	return &Transport{
		log:         log.With("component", "transport"),
		handler:     handler,
		messagePath: messagePath,
		sessions:    make(map[string]*Session, 8),
	}
}

// ServeSSE handles GET on the stream endpoint: it opens a session, announces
// the post endpoint, and pushes every engine message onto the stream until
// the client disconnects or the server shuts down.
func (t *Transport) ServeSSE(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sess := New(t.log, NewID())

	if err := t.register(sess); err != nil {
		http.Error(w, "server shutting down", http.StatusServiceUnavailable)

		return
	}

	t.log.Info("Session opened", "session_id", sess.ID())

	defer func() {
		t.unregister(sess.ID())
		sess.Close()
		t.log.Info("Session closed", "session_id", sess.ID())
	}()

	t.wg.Add(1)

	go func() {
		defer t.wg.Done()
		t.handler.Serve(r.Context(), sess)
	}()

	// Announce the endpoint clients must POST protocol messages to.
	endpoint := t.messagePath + "?session_id=" + sess.ID()
	if err := wire.WriteSSEEvent(w, wire.EventEndpoint, []byte(endpoint)); err != nil {
		return
	}

	if err := rc.Flush(); err != nil {
		return
	}

	for {
		select {
		case data := <-sess.Outgoing():
			if err := wire.WriteSSEEvent(w, wire.EventMessage, data); err != nil {
				t.log.Warn("Stream write failed", "session_id", sess.ID(), "error", err)

				return
			}

			if err := rc.Flush(); err != nil {
				t.log.Warn("Stream flush failed", "session_id", sess.ID(), "error", err)

				return
			}

		case <-r.Context().Done():
			return

		case <-sess.Done():
			return
		}
	}
}

// ServeMessage handles POST on the side endpoint: it routes one protocol
// message to the session named by the session_id query parameter and
// acknowledges immediately, without waiting for protocol processing.
func (t *Transport) ServeMessage(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		http.Error(w, "missing session_id", http.StatusBadRequest)

		return
	}

	t.mu.RLock()
	sess, ok := t.sessions[sessionID]
	t.mu.RUnlock()

	if !ok {
		t.log.Warn("Message for unknown session", "session_id", sessionID)
		http.Error(w, "unknown session", http.StatusNotFound)

		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMessageBytes))
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)

		return
	}

	req, err := wire.DecodeRequest(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	if err := sess.Deliver(req); err != nil {
		http.Error(w, "unknown session", http.StatusNotFound)

		return
	}

	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte("Accepted"))
}

// CloseAll tears down every open session and refuses new ones.
// It blocks until all engine goroutines have returned.
func (t *Transport) CloseAll() {
	t.mu.Lock()

	t.closed = true

	sessions := make([]*Session, 0, len(t.sessions))
	for _, sess := range t.sessions {
		sessions = append(sessions, sess)
	}

	t.sessions = make(map[string]*Session)

	t.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}

	t.wg.Wait()
}

// SessionCount returns the number of open sessions.
func (t *Transport) SessionCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.sessions)
}

func (t *Transport) register(sess *Session) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return http.ErrServerClosed
	}

	t.sessions[sess.ID()] = sess

	return nil
}

func (t *Transport) unregister(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.sessions, id)
}
