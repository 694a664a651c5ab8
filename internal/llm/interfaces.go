package llm

import "context"

// CompletionRequest is a single-prompt completion call.
type CompletionRequest struct {
	Prompt string

	// JSON asks the backend to constrain its output to a JSON object where the
	// provider supports it. Providers without a JSON mode rely on the prompt.
	JSON bool
}

// Backend is one language model provider.
// All prompts use single-string completion style (not chat).
type Backend interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Ping performs a lightweight reachability check.
	Ping(ctx context.Context) error

	GetModel() string
}

// Embedder generates vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	GetModel() string
}
