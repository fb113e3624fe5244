// Command libmodelreg builds the C shared library:
//
//	go build -tags=llama -buildmode=c-shared -o bin/libmodelreg.so ./cmd/libmodelreg
//
// Every entry point takes a model id first and returns an int status; see
// internal/capi for the codes. Decode output and logs go to stderr.
package main

/*
#include <stdbool.h>
#include <stdint.h>
*/
import "C"

import (
	"os"

	"modelreg/internal/capi"
	"modelreg/internal/decode"
	"modelreg/internal/logging"
	"modelreg/internal/registry"

	_ "modelreg/internal/engine/llamacpp"
)

var (
	logger = logging.FromEnv(os.Stderr)
	models = registry.New(registry.Config{Logger: &logger})
)

//export load_model
func load_model(modelID, modelPath *C.char, gpuLayers C.int32_t, splitMode C.int, mainGPU C.int32_t, vocabOnly, useMMap, useMLock C.bool) C.int {
	var path *string
	if modelPath != nil {
		p := C.GoString(modelPath)
		path = &p
	}
	params := capi.ModelParams(int32(gpuLayers), int(splitMode), int32(mainGPU), bool(vocabOnly), bool(useMMap), bool(useMLock))
	return C.int(capi.Load(models, C.GoString(modelID), path, params))
}

//export unload_model
func unload_model(modelID *C.char) C.int {
	return C.int(capi.Unload(models, C.GoString(modelID)))
}

//export set_seed
func set_seed(modelID *C.char, seed C.int) C.int {
	return C.int(capi.SetSeed(models, C.GoString(modelID), int(seed)))
}

//export set_ctx_size
func set_ctx_size(modelID *C.char, ctxSize C.int) C.int {
	return C.int(capi.SetCtxSize(models, C.GoString(modelID), int(ctxSize)))
}

//export set_batch_size
func set_batch_size(modelID *C.char, batchSize C.int) C.int {
	return C.int(capi.SetBatchSize(models, C.GoString(modelID), int(batchSize)))
}

//export set_threads
func set_threads(modelID *C.char, threads C.int) C.int {
	return C.int(capi.SetThreads(models, C.GoString(modelID), int(threads)))
}

//export set_threads_batch
func set_threads_batch(modelID *C.char, threads C.int) C.int {
	return C.int(capi.SetThreadsBatch(models, C.GoString(modelID), int(threads)))
}

//export llama_test
func llama_test(modelID, prompt *C.char) C.int {
	return C.int(capi.Test(models, C.GoString(modelID), C.GoString(prompt), decode.Options{
		Out:    os.Stderr,
		Logger: &logger,
	}))
}

func main() {}
