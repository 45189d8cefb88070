// Package mcpfetch provides an embeddable MCP server that exposes a small
// set of remote-callable tools (fetch a URL, echo a message, greet a name)
// over a server-sent-events stream.
//
// Clients open a long-lived GET /sse connection and receive an endpoint
// event naming a per-session POST URL. Protocol messages posted there are
// serviced in arrival order and the responses are pushed back down the
// stream, so the two HTTP channels form one bidirectional session.
//
// # Basic Usage
//
// The top-level Run entry point starts the server from an invocation
// descriptor and reports the outcome:
//
//	result, err := mcpfetch.Run(ctx, mcpfetch.Invocation{
//	    Inputs: mcpfetch.InvocationInputs{Port: 8000},
//	}, mcpfetch.WithLogger(slog.Default()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Status, result.Message)
//
//	// ... later
//	_ = mcpfetch.Shutdown(ctx)
//
// # Managed Servers
//
// For direct lifecycle control, create a Server:
//
//	srv := mcpfetch.NewServer(
//	    mcpfetch.WithLogger(slog.Default()),
//	    mcpfetch.WithHost("127.0.0.1"),
//	)
//	if err := srv.Start(ctx, 8000); err != nil {
//	    log.Fatal(err)
//	}
//	defer srv.Stop(ctx)
//
// Start is rejected with ErrAlreadyRunning while the server is up; Stop is
// idempotent and bounded by a shutdown timeout.
//
// # Custom Tools
//
// Additional tools can be registered alongside the built-ins:
//
//	shout := mcpfetch.ToolDescriptor{
//	    Name:        "shout",
//	    Description: "Returns the message uppercased",
//	    InputSchema: &mcpfetch.Schema{
//	        Type:     "object",
//	        Required: []string{"message"},
//	        Properties: map[string]*mcpfetch.Schema{
//	            "message": {Type: "string"},
//	        },
//	    },
//	}
//	srv := mcpfetch.NewServer(mcpfetch.WithTool(shout,
//	    func(ctx context.Context, args map[string]any) ([]mcpfetch.Content, error) {
//	        msg, _ := args["message"].(string)
//	        return mcpfetch.TextResult(strings.ToUpper(msg)), nil
//	    },
//	))
//
// # Error Handling
//
// Tool and protocol failures are reported to the offending session as
// structured error responses; they never close the stream. Lifecycle
// failures are returned to the embedding caller as typed errors:
//
//	if err := srv.Start(ctx, port); err != nil {
//	    var bindErr *mcpfetch.BindError
//	    if errors.As(err, &bindErr) {
//	        log.Fatalf("port unavailable: %v", bindErr)
//	    }
//	    log.Fatal(err)
//	}
package mcpfetch
