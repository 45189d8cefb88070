package wire

import (
	"fmt"
	"io"
)

// SSE event names used on the stream.
const (
	EventEndpoint = "endpoint"
	EventMessage  = "message"
)

// WriteSSEEvent writes one server-sent event frame.
//
// Data must not contain newlines; protocol messages are single-line JSON.
func WriteSSEEvent(w io.Writer, event string, data []byte) error {
	_, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)

	return err
}
