// Package gollama registers a "gollama" engine backend built on
// github.com/go-skynet/go-llama.cpp when compiled with `-tags=gollama`.
//
// go-llama.cpp binds the inference context to the model instance. NewContext
// reuses the instance loaded by LoadModel when it is idle and the context
// size and batch size match; otherwise it loads a new instance.
// Its contexts cannot expose logits; they implement engine.Generator and
// run arg-max sampling inside the binding instead.
package gollama

// Name is the backend name used in configuration.
const Name = "gollama"
