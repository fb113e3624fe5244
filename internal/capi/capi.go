// Package capi maps registry and decode results onto the integer status
// codes returned across the C boundary by cmd/libmodelreg.
package capi

import (
	"context"
	"errors"

	"modelreg/internal/decode"
	"modelreg/internal/engine"
	"modelreg/internal/registry"
)

// Status codes.
const (
	StatusOK = 0
	// StatusFailed reports a null path, an engine failure or an unknown id.
	StatusFailed = -1
	// StatusRejected reports an id that is already loaded, or a decode
	// example that could not run to completion.
	StatusRejected = 1
)

// Load registers path under id. A nil path is the C null pointer.
func Load(reg *registry.Registry, id string, path *string, params engine.ModelParams) int {
	if path == nil {
		return StatusFailed
	}
	err := reg.Load(id, *path, params)
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, registry.ErrAlreadyLoaded):
		return StatusRejected
	default:
		return StatusFailed
	}
}

// ModelParams builds load parameters from the raw C arguments.
func ModelParams(gpuLayers int32, splitMode int, mainGPU int32, vocabOnly, useMMap, useMLock bool) engine.ModelParams {
	return engine.ModelParams{
		GPULayers: gpuLayers,
		SplitMode: engine.SplitMode(splitMode),
		MainGPU:   mainGPU,
		VocabOnly: vocabOnly,
		UseMMap:   useMMap,
		UseMLock:  useMLock,
	}
}

func Unload(reg *registry.Registry, id string) int {
	return status(reg.Unload(id))
}

func SetSeed(reg *registry.Registry, id string, seed int) int {
	return status(reg.SetSeed(id, seed))
}

func SetCtxSize(reg *registry.Registry, id string, size int) int {
	return status(reg.SetContextSize(id, size))
}

func SetBatchSize(reg *registry.Registry, id string, size int) int {
	return status(reg.SetBatchSize(id, size))
}

func SetThreads(reg *registry.Registry, id string, threads int) int {
	return status(reg.SetThreads(id, threads))
}

func SetThreadsBatch(reg *registry.Registry, id string, threads int) int {
	return status(reg.SetThreadsBatch(id, threads))
}

// Test runs the greedy decode example for id. The prompt and generated
// text go to opts.Out.
func Test(reg *registry.Registry, id, prompt string, opts decode.Options) int {
	h, err := reg.Get(id)
	if err != nil {
		return StatusFailed
	}
	_, err = decode.Run(context.Background(), h, prompt, opts)
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, registry.ErrModelNotFound):
		return StatusFailed
	default:
		return StatusRejected
	}
}

func status(err error) int {
	if err != nil {
		return StatusFailed
	}
	return StatusOK
}
