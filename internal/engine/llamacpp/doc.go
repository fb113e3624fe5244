// Package llamacpp binds llama.cpp through cgo and registers itself as the
// "llamacpp" engine backend when built with `-tags=llama`.
//
// The shared library is expected next to the built binary: the link
// directives set an rpath of $ORIGIN and search ../../../bin at link time,
// with llama.h under third_party/llama.cpp. Without the tag this package
// compiles to nothing.
package llamacpp

// Name is the backend name used in configuration.
const Name = "llamacpp"
