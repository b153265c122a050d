// Package provider defines the contract between the session loop and an LLM
// backend.
package provider

import "context"

// Message is one chat turn in the wire format the backend expects.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest describes one generation call.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Client is an LLM backend.
type Client interface {
	// ChatStream sends the request and streams the reply. onChunk is called
	// for every non-empty content fragment in arrival order; the full
	// accumulated text is returned at the end. onChunk may be nil.
	ChatStream(ctx context.Context, req ChatRequest, onChunk func(string)) (string, error)

	// ListModels returns the model names the backend serves.
	ListModels(ctx context.Context) ([]string, error)

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
