// Package engine is the boundary to the inference engine (llama.cpp).
//
// Everything substantive - the forward pass, KV cache layout, tokenizer,
// quantized weights - lives behind the small interfaces declared here:
//
//   - Backend loads a model file with ModelParams.
//   - Model creates inference contexts from ContextParams.
//   - Context tokenizes, decodes batches and exposes logits.
//   - Generator is an optional Context capability for engines that run
//     their own sampling loop.
//
// Concrete backends live in sub-packages and register themselves by name
// from build-tagged files:
//
//   - llamacpp: direct cgo binding to llama.h. Enabled with `-tags=llama`.
//   - gollama:  go-skynet/go-llama.cpp. Enabled with `-tags=gollama`.
//
// The two tags link their own copy of llama.cpp and must not be combined.
// Without either tag, Lookup returns a backend that fails every load with
// ErrUnavailable, keeping default builds CGO-free.
package engine
