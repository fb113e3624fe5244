package engine

import (
	"fmt"
	"strings"
)

// Token is a vocabulary id.
type Token int32

// SplitMode selects how a model is split across several GPUs.
type SplitMode int

const (
	SplitNone  SplitMode = 0 // single GPU
	SplitLayer SplitMode = 1 // split layers and KV across GPUs
	SplitRow   SplitMode = 2 // split rows across GPUs
)

func (s SplitMode) String() string {
	switch s {
	case SplitNone:
		return "none"
	case SplitLayer:
		return "layer"
	case SplitRow:
		return "row"
	default:
		return fmt.Sprintf("split(%d)", int(s))
	}
}

// ParseSplitMode accepts a name ("none", "layer", "row") or a numeric value.
func ParseSplitMode(s string) (SplitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "layer", "1":
		return SplitLayer, nil
	case "none", "0":
		return SplitNone, nil
	case "row", "2":
		return SplitRow, nil
	}
	return 0, fmt.Errorf("unknown split mode %q", s)
}

// DefaultSeed asks the engine to pick a random seed.
const DefaultSeed uint32 = 0xFFFFFFFF

// ModelParams are applied when a model file is loaded.
type ModelParams struct {
	GPULayers int32
	SplitMode SplitMode
	MainGPU   int32
	VocabOnly bool
	UseMMap   bool
	UseMLock  bool
}

// DefaultModelParams mirrors llama_model_default_params().
func DefaultModelParams() ModelParams {
	return ModelParams{
		GPULayers: 0,
		SplitMode: SplitLayer,
		MainGPU:   0,
		UseMMap:   true,
	}
}

// ContextParams are applied when an inference context is created from a
// loaded model. Changing them has no effect on contexts that already exist.
type ContextParams struct {
	Seed         uint32
	ContextSize  uint32
	BatchSize    uint32
	Threads      int32
	ThreadsBatch int32
}

// DefaultContextParams mirrors llama_context_default_params().
func DefaultContextParams() ContextParams {
	return ContextParams{
		Seed:         DefaultSeed,
		ContextSize:  512,
		BatchSize:    512,
		Threads:      4,
		ThreadsBatch: 4,
	}
}
