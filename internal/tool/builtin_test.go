package tool

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcpfetch/mcpfetch/internal/errors"
)

func builtinRegistry(client *http.Client) *Registry {
	return Builtin(slog.New(slog.NewTextHandler(io.Discard, nil)), client)
}

func TestBuiltin_ListsAllToolsInOrder(t *testing.T) {
	r := builtinRegistry(nil)

	descs := r.List()
	require.Len(t, descs, 3)
	assert.Equal(t, "fetch", descs[0].Name)
	assert.Equal(t, "echo", descs[1].Name)
	assert.Equal(t, "hello", descs[2].Name)

	for _, d := range descs {
		assert.NotEmpty(t, d.Description)
		require.NotNil(t, d.InputSchema)
		assert.Equal(t, "object", d.InputSchema.Type)
	}
}

func TestBuiltin_Hello(t *testing.T) {
	r := builtinRegistry(nil)

	t.Run("defaults to World", func(t *testing.T) {
		content, err := r.Invoke(context.Background(), "hello", map[string]any{})
		require.NoError(t, err)
		require.Len(t, content, 1)
		assert.Equal(t, "Hello, World!", content[0].(*TextContent).Text)
	})

	t.Run("greets a name", func(t *testing.T) {
		content, err := r.Invoke(context.Background(), "hello", map[string]any{"name": "Ada"})
		require.NoError(t, err)
		require.Len(t, content, 1)
		assert.Equal(t, "Hello, Ada!", content[0].(*TextContent).Text)
	})
}

func TestBuiltin_Echo(t *testing.T) {
	r := builtinRegistry(nil)

	t.Run("returns message verbatim", func(t *testing.T) {
		content, err := r.Invoke(context.Background(), "echo", map[string]any{"message": "x"})
		require.NoError(t, err)
		require.Len(t, content, 1)
		assert.Equal(t, "x", content[0].(*TextContent).Text)
	})

	t.Run("requires message", func(t *testing.T) {
		_, err := r.Invoke(context.Background(), "echo", map[string]any{})

		var missing *errors.MissingArgumentError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "message", missing.Field)
	})
}

func TestBuiltin_Fetch(t *testing.T) {
	t.Run("returns body on success", func(t *testing.T) {
		var gotUA string

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUA = r.Header.Get("User-Agent")
			_, _ = w.Write([]byte("<html>hello</html>"))
		}))
		defer srv.Close()

		r := builtinRegistry(srv.Client())

		content, err := r.Invoke(context.Background(), "fetch", map[string]any{"url": srv.URL})
		require.NoError(t, err)
		require.Len(t, content, 1)
		assert.Equal(t, "<html>hello</html>", content[0].(*TextContent).Text)
		assert.Equal(t, userAgent, gotUA)
	})

	t.Run("follows redirects", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/" {
				http.Redirect(w, r, "/target", http.StatusFound)

				return
			}

			_, _ = w.Write([]byte("landed"))
		}))
		defer srv.Close()

		r := builtinRegistry(srv.Client())

		content, err := r.Invoke(context.Background(), "fetch", map[string]any{"url": srv.URL})
		require.NoError(t, err)
		assert.Equal(t, "landed", content[0].(*TextContent).Text)
	})

	t.Run("fails on error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		r := builtinRegistry(srv.Client())

		_, err := r.Invoke(context.Background(), "fetch", map[string]any{"url": srv.URL})
		require.Error(t, err)

		var fetchErr *errors.FetchError
		require.ErrorAs(t, err, &fetchErr)
		assert.Equal(t, http.StatusInternalServerError, fetchErr.StatusCode)

		// The failure is also wrapped as a tool execution error.
		var exec *errors.ToolExecutionError
		require.ErrorAs(t, err, &exec)
		assert.Equal(t, "fetch", exec.Tool)
	})

	t.Run("requires url", func(t *testing.T) {
		r := builtinRegistry(nil)

		_, err := r.Invoke(context.Background(), "fetch", map[string]any{})

		var missing *errors.MissingArgumentError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, "url", missing.Field)
	})
}
