package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// GenerationResult is the outcome of one generation call. Answer carries a
// human-readable "Error: ..." message when the service could not be reached;
// FullPrompt and Model are populated either way so the caller can trace the
// attempt.
type GenerationResult struct {
	// Answer is the generated response, or a descriptive error string.
	Answer string

	// FullPrompt is the complete prompt sent to the model.
	FullPrompt string

	// Model is the model identifier the call was made with.
	Model string
}

// Generator produces grounded answers from a query and a retrieved context
// block. Generation failures are never raised as errors: they degrade to a
// visible error message in the result so callers need no special casing.
type Generator interface {
	// Generate builds the grounding prompt and calls the generation service
	// synchronously. The call is bounded by the configured timeout.
	Generate(ctx context.Context, query, contextBlock string) *GenerationResult

	// CheckConnection reports whether the generation service is reachable.
	// Best-effort: returns false on any failure, never panics.
	CheckConnection(ctx context.Context) bool

	// ListModels returns the models available on the generation service.
	// Best-effort: returns an empty slice on any failure.
	ListModels(ctx context.Context) []string
}
