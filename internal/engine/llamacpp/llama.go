//go:build llama

package llamacpp

/*
#cgo CFLAGS: -I${SRCDIR}/../../../third_party/llama.cpp
#cgo LDFLAGS: -Wl,-rpath,'$ORIGIN' -L${SRCDIR}/../../../bin -lllama -lm -lstdc++
#include <stdlib.h>
#include "llama.h"
*/
import "C"

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"unsafe"

	"modelreg/internal/engine"
)

var backendOnce sync.Once

func init() { engine.Register(backend{}) }

type backend struct{}

func (backend) Name() string { return Name }

func (backend) LoadModel(path string, p engine.ModelParams) (engine.Model, error) {
	backendOnce.Do(func() { C.llama_backend_init() })

	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	params := C.llama_model_default_params()
	params.n_gpu_layers = C.int32_t(p.GPULayers)
	params.split_mode = C.enum_llama_split_mode(p.SplitMode)
	params.main_gpu = C.int32_t(p.MainGPU)
	params.vocab_only = C.bool(p.VocabOnly)
	params.use_mmap = C.bool(p.UseMMap)
	params.use_mlock = C.bool(p.UseMLock)

	ptr := C.llama_load_model_from_file(cPath, params)
	if ptr == nil {
		return nil, fmt.Errorf("llama_load_model_from_file failed for %s", path)
	}
	m := &model{ptr: ptr}
	runtime.SetFinalizer(m, func(m *model) { _ = m.Close() })
	return m, nil
}

type model struct {
	mu  sync.Mutex
	ptr *C.struct_llama_model
}

func (m *model) NewContext(p engine.ContextParams) (engine.Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ptr == nil {
		return nil, engine.ErrClosed
	}
	params := C.llama_context_default_params()
	params.seed = C.uint32_t(p.Seed)
	params.n_ctx = C.uint32_t(p.ContextSize)
	params.n_batch = C.uint32_t(p.BatchSize)
	params.n_threads = C.uint32_t(p.Threads)
	params.n_threads_batch = C.uint32_t(p.ThreadsBatch)

	ptr := C.llama_new_context_with_model(m.ptr, params)
	if ptr == nil {
		return nil, errors.New("llama_new_context_with_model failed")
	}
	c := &llamaContext{ptr: ptr, model: m, nBatch: int(p.BatchSize)}
	runtime.SetFinalizer(c, func(c *llamaContext) { _ = c.Close() })
	return c, nil
}

func (m *model) VocabSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ptr == nil {
		return 0
	}
	return int(C.llama_n_vocab(m.ptr))
}

func (m *model) EOS() engine.Token {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ptr == nil {
		return -1
	}
	return engine.Token(C.llama_token_eos(m.ptr))
}

func (m *model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ptr == nil {
		return nil
	}
	C.llama_free_model(m.ptr)
	m.ptr = nil
	runtime.SetFinalizer(m, nil)
	return nil
}

type llamaContext struct {
	ptr    *C.struct_llama_context
	model  *model
	nBatch int
	// batch is reused across Decode calls and grown on demand.
	batch    C.struct_llama_batch
	batchCap int
}

func (c *llamaContext) Tokenize(text string, addBOS bool) ([]engine.Token, error) {
	if c.ptr == nil {
		return nil, engine.ErrClosed
	}
	cText := C.CString(text)
	defer C.free(unsafe.Pointer(cText))
	textLen := C.int32_t(len(text))

	// Upper bound: one token per byte plus BOS.
	size := len(text) + 2
	buf := make([]C.llama_token, size)
	n := C.llama_tokenize(c.model.ptr, cText, textLen, &buf[0], C.int32_t(size), C.bool(addBOS), C.bool(false))
	if n < 0 {
		// A negative count is the required size.
		size = int(-n)
		buf = make([]C.llama_token, size)
		n = C.llama_tokenize(c.model.ptr, cText, textLen, &buf[0], C.int32_t(size), C.bool(addBOS), C.bool(false))
		if n < 0 {
			return nil, fmt.Errorf("llama_tokenize failed (%d)", int(n))
		}
	}
	out := make([]engine.Token, int(n))
	for i := range out {
		out[i] = engine.Token(buf[i])
	}
	return out, nil
}

func (c *llamaContext) ContextSize() int {
	if c.ptr == nil {
		return 0
	}
	return int(C.llama_n_ctx(c.ptr))
}

func (c *llamaContext) ensureBatch(n int) {
	if n <= c.batchCap {
		return
	}
	if c.batchCap > 0 {
		C.llama_batch_free(c.batch)
	}
	size := n
	if size < c.nBatch {
		size = c.nBatch
	}
	c.batch = C.llama_batch_init(C.int32_t(size), 0, 1)
	c.batchCap = size
}

func (c *llamaContext) Decode(b *engine.Batch) error {
	if c.ptr == nil {
		return engine.ErrClosed
	}
	n := b.Len()
	if n == 0 {
		return errors.New("empty batch")
	}
	c.ensureBatch(n)

	tokens := unsafe.Slice(c.batch.token, c.batchCap)
	pos := unsafe.Slice(c.batch.pos, c.batchCap)
	nSeq := unsafe.Slice(c.batch.n_seq_id, c.batchCap)
	seqIDs := unsafe.Slice(c.batch.seq_id, c.batchCap)
	logits := unsafe.Slice(c.batch.logits, c.batchCap)
	for i := 0; i < n; i++ {
		tokens[i] = C.llama_token(b.Tokens[i])
		pos[i] = C.llama_pos(b.Pos[i])
		nSeq[i] = 1
		*seqIDs[i] = 0
		if b.Logits[i] {
			logits[i] = 1
		} else {
			logits[i] = 0
		}
	}
	c.batch.n_tokens = C.int32_t(n)

	if rc := C.llama_decode(c.ptr, c.batch); rc != 0 {
		return fmt.Errorf("llama_decode returned %d", int(rc))
	}
	return nil
}

func (c *llamaContext) Logits(i int) ([]float32, error) {
	if c.ptr == nil {
		return nil, engine.ErrClosed
	}
	p := C.llama_get_logits_ith(c.ptr, C.int32_t(i))
	if p == nil {
		return nil, fmt.Errorf("no logits for batch index %d", i)
	}
	n := c.model.VocabSize()
	row := unsafe.Slice((*float32)(unsafe.Pointer(p)), n)
	out := make([]float32, n)
	copy(out, row)
	return out, nil
}

func (c *llamaContext) TokenToPiece(t engine.Token) string {
	if c.ptr == nil {
		return ""
	}
	buf := make([]byte, 32)
	n := C.llama_token_to_piece(c.model.ptr, C.llama_token(t), (*C.char)(unsafe.Pointer(&buf[0])), C.int32_t(len(buf)))
	if n < 0 {
		buf = make([]byte, int(-n))
		n = C.llama_token_to_piece(c.model.ptr, C.llama_token(t), (*C.char)(unsafe.Pointer(&buf[0])), C.int32_t(len(buf)))
		if n < 0 {
			return ""
		}
	}
	return string(buf[:int(n)])
}

func (c *llamaContext) Close() error {
	if c.ptr == nil {
		return nil
	}
	if c.batchCap > 0 {
		C.llama_batch_free(c.batch)
		c.batchCap = 0
	}
	C.llama_free(c.ptr)
	c.ptr = nil
	runtime.SetFinalizer(c, nil)
	return nil
}
