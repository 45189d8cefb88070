package tool

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/mcpfetch/mcpfetch/internal/errors"
)

// userAgent identifies the fetch tool's outbound requests.
const userAgent = "MCP Test Server (github.com/mcpfetch/mcpfetch)"

// defaultFetchTimeout bounds the fetch tool's outbound requests when no
// client is injected.
const defaultFetchTimeout = 30 * time.Second

// Builtin builds a registry populated with the built-in tools:
// fetch, echo, and hello.
//
// If httpClient is nil, a default with a 30s timeout is used. The default
// transport follows redirects.
func Builtin(log *slog.Logger, httpClient *http.Client) *Registry {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultFetchTimeout}
	}

	r := NewRegistry()

	// Registration of the built-ins cannot collide; ignore the error.
	_ = r.Register(Descriptor{
		Name:        "fetch",
		Description: "Fetches a website and returns its content",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"url"},
			Properties: map[string]*jsonschema.Schema{
				"url": {Type: "string", Description: "URL to fetch"},
			},
		},
	}, fetchHandler(log, httpClient))

	_ = r.Register(Descriptor{
		Name:        "echo",
		Description: "Returns the provided message",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{"message"},
			Properties: map[string]*jsonschema.Schema{
				"message": {Type: "string", Description: "Message to echo back"},
			},
		},
	}, echoHandler)

	_ = r.Register(Descriptor{
		Name:        "hello",
		Description: "Returns a greeting message",
		InputSchema: &jsonschema.Schema{
			Type:     "object",
			Required: []string{},
			Properties: map[string]*jsonschema.Schema{
				"name": {Type: "string", Description: "Name to greet (defaults to 'World')"},
			},
		},
	}, helloHandler)

	return r
}

// fetchHandler issues an HTTP GET and returns the response body as text.
func fetchHandler(log *slog.Logger, client *http.Client) Handler {
	return func(ctx context.Context, args map[string]any) ([]Content, error) {
		url, _ := args["url"].(string)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, &errors.FetchError{URL: url, Err: err}
		}

		req.Header.Set("User-Agent", userAgent)

		resp, err := client.Do(req)
		if err != nil {
			return nil, &errors.FetchError{URL: url, Err: err}
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			log.Warn("Fetch returned failure status", "url", url, "status", resp.StatusCode)

			return nil, &errors.FetchError{URL: url, StatusCode: resp.StatusCode}
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &errors.FetchError{URL: url, Err: err}
		}

		return TextResult(string(body)), nil
	}
}

// echoHandler returns the message argument verbatim.
func echoHandler(_ context.Context, args map[string]any) ([]Content, error) {
	message, _ := args["message"].(string)

	return TextResult(message), nil
}

// helloHandler greets the given name, defaulting to "World".
func helloHandler(_ context.Context, args map[string]any) ([]Content, error) {
	name := "World"
	if v, ok := args["name"].(string); ok && v != "" {
		name = v
	}

	return TextResult("Hello, " + name + "!"), nil
}
