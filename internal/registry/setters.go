package registry

import (
	"math"

	"modelreg/internal/engine"
)

// MinContextSize is the smallest context size SetContextSize stores.
const MinContextSize = 2048

// SetSeed sets the sampling seed. Negative values wrap as in C, so -1
// selects engine.DefaultSeed (random).
func (r *Registry) SetSeed(id string, seed int) error {
	return r.update(id, "seed", seed, func(p *engine.ContextParams) {
		p.Seed = uint32(seed)
	})
}

// SetContextSize sets the KV cache size; values below MinContextSize are
// raised to it and values past the engine's uint32 field saturate.
func (r *Registry) SetContextSize(id string, size int) error {
	n := uint32(MinContextSize)
	switch {
	case int64(size) > math.MaxUint32:
		n = math.MaxUint32
	case size > MinContextSize:
		n = uint32(size)
	}
	return r.update(id, "ctx_size", size, func(p *engine.ContextParams) {
		p.ContextSize = n
	})
}

// SetBatchSize sets the maximum number of tokens per decode call.
func (r *Registry) SetBatchSize(id string, size int) error {
	return r.update(id, "batch_size", size, func(p *engine.ContextParams) {
		p.BatchSize = uint32(size)
	})
}

// SetThreads sets the number of threads used for generation.
func (r *Registry) SetThreads(id string, threads int) error {
	return r.update(id, "threads", threads, func(p *engine.ContextParams) {
		p.Threads = int32(threads)
	})
}

// SetThreadsBatch sets the number of threads used for batch (prompt) processing.
func (r *Registry) SetThreadsBatch(id string, threads int) error {
	return r.update(id, "threads_batch", threads, func(p *engine.ContextParams) {
		p.ThreadsBatch = int32(threads)
	})
}

func (r *Registry) update(id, field string, value int, fn func(*engine.ContextParams)) error {
	h, err := r.Get(id)
	if err != nil {
		return err
	}
	if err := h.update(fn); err != nil {
		return err
	}
	r.log.Debug().Str("model", id).Str("field", field).Int("value", value).Msg("context param set")
	return nil
}
