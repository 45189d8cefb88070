package mcpfetch

import (
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/mcpfetch/mcpfetch/internal/tool"
)

// Re-export tool types for the public API.
type (
	// ToolDescriptor describes a registered tool: name, description, and
	// input schema. Immutable once registered.
	ToolDescriptor = tool.Descriptor

	// ToolHandler executes a tool invocation and returns its content items.
	ToolHandler = tool.Handler

	// Content is one item in a tool invocation result.
	Content = tool.Content

	// TextContent is plain text returned by a tool.
	TextContent = tool.TextContent

	// ImageContent is base64 image data returned by a tool.
	ImageContent = tool.ImageContent

	// EmbeddedResource is a resource embedded in a tool result.
	EmbeddedResource = tool.EmbeddedResource

	// Schema is a JSON Schema object describing a tool's input. Fields
	// listed in Required must be present in the call arguments.
	Schema = jsonschema.Schema
)

// TextResult wraps text into a single-item content list.
func TextResult(text string) []Content {
	return tool.TextResult(text)
}

// ImageResult wraps image data into a single-item content list.
func ImageResult(data, mimeType string) []Content {
	return tool.ImageResult(data, mimeType)
}
