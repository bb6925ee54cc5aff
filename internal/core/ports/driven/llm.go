package driven

import "context"

// LLMService provides language model completion for structured
// extraction. This is an optional service - when nil, extraction is
// disabled and indexing persists chunks only.
//
// Implementations may include:
//   - OpenAI (GPT-4o and compatible APIs)
//   - Anthropic (Claude)
//   - Ollama (local models)
//
// The returned text is free-form: prompts instruct the model to emit a
// structured schema, but callers must never assume compliance. The
// extractor owns recovering a valid record from whatever comes back.
type LLMService interface {
	// Generate produces a text completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight
	// test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
