package engine

import "context"

// Backend materializes models from weight files.
type Backend interface {
	// Name identifies the backend (e.g. "llamacpp").
	Name() string
	// LoadModel loads the model at path. The path is passed to the engine verbatim.
	LoadModel(path string, params ModelParams) (Model, error)
}

// Model is a loaded set of weights. Contexts created from it share the weights.
type Model interface {
	// NewContext creates an inference context; params are copied.
	NewContext(params ContextParams) (Context, error)
	// VocabSize is the number of entries in a logits row.
	VocabSize() int
	// EOS is the end-of-sequence token.
	EOS() Token
	// Close releases the weights. Contexts must be closed first.
	Close() error
}

// Context owns a KV cache. A Context is not safe for concurrent use.
type Context interface {
	// Tokenize converts text into tokens, optionally prepending BOS.
	Tokenize(text string, addBOS bool) ([]Token, error)
	// ContextSize is the number of KV cache slots (n_ctx).
	ContextSize() int
	// Decode evaluates a batch. A non-nil error means the batch was not evaluated.
	Decode(b *Batch) error
	// Logits returns the logits row for batch index i of the last Decode.
	// Only rows requested through Batch.Add are available.
	Logits(i int) ([]float32, error)
	// TokenToPiece detokenizes a single token.
	TokenToPiece(t Token) string
	Close() error
}

// Generator is implemented by contexts whose engine performs the
// token-by-token sampling itself. GenerateGreedy evaluates the prompt and
// emits up to maxTokens arg-max tokens, stopping at EOS or when onPiece
// returns false.
type Generator interface {
	GenerateGreedy(ctx context.Context, prompt string, maxTokens int, onPiece func(piece string) bool) (int, error)
}
