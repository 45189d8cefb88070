package tool

// Content is one item in a tool invocation result.
//
// The concrete types mirror the MCP content union: text, image, and
// embedded resource. All built-in tools return a single TextContent.
type Content interface {
	contentType() string
}

// TextContent is plain text returned by a tool.
type TextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (*TextContent) contentType() string { return "text" }

// ImageContent is base64 image data returned by a tool.
type ImageContent struct {
	Type     string `json:"type"`
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

func (*ImageContent) contentType() string { return "image" }

// ResourceContents is the payload of an embedded resource.
type ResourceContents struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
}

// EmbeddedResource is a resource embedded in a tool result.
type EmbeddedResource struct {
	Type     string            `json:"type"`
	Resource *ResourceContents `json:"resource"`
}

func (*EmbeddedResource) contentType() string { return "resource" }

// TextResult wraps text into a single-item content list.
func TextResult(text string) []Content {
	return []Content{&TextContent{Type: "text", Text: text}}
}

// ImageResult wraps image data into a single-item content list.
func ImageResult(data, mimeType string) []Content {
	return []Content{&ImageContent{Type: "image", Data: data, MIMEType: mimeType}}
}
