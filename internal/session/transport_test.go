package session

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpfetch/mcpfetch/internal/wire"
)

func nopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// echoHandler responds to every request with its method name.
type echoHandler struct{}

func (echoHandler) Serve(ctx context.Context, sess *Session) {
	for {
		select {
		case req := <-sess.Incoming():
			data, err := wire.Encode(wire.NewResponse(req.ID, map[string]string{"method": req.Method}))
			if err != nil {
				return
			}

			if err := sess.Send(data); err != nil {
				return
			}

		case <-sess.Done():
			return

		case <-ctx.Done():
			return
		}
	}
}

func newTestServer(t *testing.T) (*Transport, *httptest.Server) {
	t.Helper()

	tr := NewTransport(nopLogger(), echoHandler{}, "/messages/")

	r := chi.NewRouter()
	r.Get("/sse", tr.ServeSSE)
	r.Post("/messages/", tr.ServeMessage)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return tr, srv
}

// sseStream is a test client for the event stream.
type sseStream struct {
	resp *http.Response
	br   *bufio.Reader
}

func openStream(t *testing.T, baseURL string) *sseStream {
	t.Helper()

	resp, err := http.Get(baseURL + "/sse") //nolint:noctx
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	return &sseStream{resp: resp, br: bufio.NewReader(resp.Body)}
}

// nextEvent reads one SSE frame.
func (s *sseStream) nextEvent(t *testing.T) (event, data string) {
	t.Helper()

	for {
		line, err := s.br.ReadString('\n')
		require.NoError(t, err)

		line = strings.TrimRight(line, "\n")

		switch {
		case line == "":
			return event, data
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		}
	}
}

// endpoint reads the endpoint announcement and returns the post URL.
func (s *sseStream) endpoint(t *testing.T, baseURL string) string {
	t.Helper()

	event, data := s.nextEvent(t)
	require.Equal(t, wire.EventEndpoint, event)
	require.Contains(t, data, "/messages/?session_id=")

	return baseURL + data
}

func postMessage(t *testing.T, url, body string) *http.Response {
	t.Helper()

	resp, err := http.Post(url, "application/json", strings.NewReader(body)) //nolint:noctx
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func TestTransport_AnnouncesEndpoint(t *testing.T) {
	tr, srv := newTestServer(t)

	stream := openStream(t, srv.URL)
	endpoint := stream.endpoint(t, srv.URL)

	assert.Contains(t, endpoint, srv.URL+"/messages/?session_id=")
	assert.Equal(t, 1, tr.SessionCount())
}

func TestTransport_RoutesPostToSession(t *testing.T) {
	_, srv := newTestServer(t)

	stream := openStream(t, srv.URL)
	endpoint := stream.endpoint(t, srv.URL)

	resp := postMessage(t, endpoint, `{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	event, data := stream.nextEvent(t)
	assert.Equal(t, wire.EventMessage, event)

	var decoded struct {
		ID     int               `json:"id"`
		Result map[string]string `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &decoded))
	assert.Equal(t, 1, decoded.ID)
	assert.Equal(t, "ping", decoded.Result["method"])
}

func TestTransport_PostErrors(t *testing.T) {
	_, srv := newTestServer(t)

	stream := openStream(t, srv.URL)
	endpoint := stream.endpoint(t, srv.URL)

	t.Run("missing session_id", func(t *testing.T) {
		resp := postMessage(t, srv.URL+"/messages/", `{"jsonrpc":"2.0","id":1,"method":"ping"}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown session_id", func(t *testing.T) {
		resp := postMessage(t, srv.URL+"/messages/?session_id=01STALESESSIONID0000000000", `{"jsonrpc":"2.0","id":1,"method":"ping"}`)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("malformed body", func(t *testing.T) {
		resp := postMessage(t, endpoint, `{"jsonrpc":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("open session unaffected", func(t *testing.T) {
		resp := postMessage(t, endpoint, `{"jsonrpc":"2.0","id":2,"method":"ping"}`)
		require.Equal(t, http.StatusAccepted, resp.StatusCode)

		event, _ := stream.nextEvent(t)
		assert.Equal(t, wire.EventMessage, event)
	})
}

func TestTransport_SessionsAreIsolated(t *testing.T) {
	_, srv := newTestServer(t)

	streamA := openStream(t, srv.URL)
	endpointA := streamA.endpoint(t, srv.URL)

	streamB := openStream(t, srv.URL)
	endpointB := streamB.endpoint(t, srv.URL)

	require.NotEqual(t, endpointA, endpointB)

	// Each session hears only its own responses, in post order.
	respA1 := postMessage(t, endpointA, `{"jsonrpc":"2.0","id":10,"method":"a-first"}`)
	require.Equal(t, http.StatusAccepted, respA1.StatusCode)

	respB1 := postMessage(t, endpointB, `{"jsonrpc":"2.0","id":20,"method":"b-first"}`)
	require.Equal(t, http.StatusAccepted, respB1.StatusCode)

	respA2 := postMessage(t, endpointA, `{"jsonrpc":"2.0","id":11,"method":"a-second"}`)
	require.Equal(t, http.StatusAccepted, respA2.StatusCode)

	for i, want := range []int{10, 11} {
		_, data := streamA.nextEvent(t)

		var decoded struct {
			ID int `json:"id"`
		}
		require.NoError(t, json.Unmarshal([]byte(data), &decoded))
		assert.Equal(t, want, decoded.ID, "stream A event %d", i)
	}

	_, data := streamB.nextEvent(t)

	var decoded struct {
		ID     int               `json:"id"`
		Result map[string]string `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(data), &decoded))
	assert.Equal(t, 20, decoded.ID)
	assert.Equal(t, "b-first", decoded.Result["method"])
}

func TestTransport_CloseAllTearsDownSessions(t *testing.T) {
	tr, srv := newTestServer(t)

	stream := openStream(t, srv.URL)
	endpoint := stream.endpoint(t, srv.URL)

	tr.CloseAll()

	require.Equal(t, 0, tr.SessionCount())

	// The stream reaches end-of-file once the session is torn down.
	errCh := make(chan error, 1)

	go func() {
		_, err := io.Copy(io.Discard, stream.resp.Body)
		errCh <- err
	}()

	select {
	case <-errCh:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not close after CloseAll")
	}

	// Posts to the torn-down session are client errors.
	resp := postMessage(t, endpoint, `{"jsonrpc":"2.0","id":1,"method":"ping"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// New streams are refused while shutting down.
	refused, err := http.Get(srv.URL + "/sse") //nolint:noctx
	require.NoError(t, err)

	defer refused.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, refused.StatusCode)
}
