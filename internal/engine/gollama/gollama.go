//go:build gollama

package gollama

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	llama "github.com/go-skynet/go-llama.cpp"

	"modelreg/internal/engine"
)

func init() { engine.Register(backend{}) }

type backend struct{}

func (backend) Name() string { return Name }

func (backend) LoadModel(path string, p engine.ModelParams) (engine.Model, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("model path is empty")
	}
	cp := engine.DefaultContextParams()
	base, err := llama.New(path, modelOptions(p, cp)...)
	if err != nil {
		return nil, err
	}
	return &model{path: path, params: p, base: base, baseParams: cp}, nil
}

// modelOptions maps params onto go-llama.cpp options. The binding has no
// knobs for split mode, vocab-only loading or batch threads.
func modelOptions(p engine.ModelParams, c engine.ContextParams) []llama.ModelOption {
	mo := []llama.ModelOption{
		llama.SetContext(int(c.ContextSize)),
		llama.SetNBatch(int(c.BatchSize)),
		llama.SetGPULayers(int(p.GPULayers)),
		llama.SetMainGPU(strconv.Itoa(int(p.MainGPU))),
		llama.SetMMap(p.UseMMap),
	}
	if p.UseMLock {
		mo = append(mo, llama.EnableMLock)
	}
	return mo
}

type model struct {
	mu         sync.Mutex
	path       string
	params     engine.ModelParams
	base       *llama.LLama
	baseParams engine.ContextParams
	baseInUse  bool
	closed     bool
}

// sameLoadOptions reports whether a and b load identical instances. Seed and
// thread counts are prediction options and do not matter here.
func sameLoadOptions(a, b engine.ContextParams) bool {
	return a.ContextSize == b.ContextSize && a.BatchSize == b.BatchSize
}

// NewContext lends out the instance loaded by LoadModel when it is idle and
// was loaded with the same context options; otherwise it loads a new one.
func (m *model) NewContext(p engine.ContextParams) (engine.Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, engine.ErrClosed
	}
	if m.base != nil && !m.baseInUse && sameLoadOptions(p, m.baseParams) {
		m.baseInUse = true
		return &genContext{llm: m.base, params: p, release: m.returnBase}, nil
	}
	llm, err := llama.New(m.path, modelOptions(m.params, p)...)
	if err != nil {
		return nil, err
	}
	return &genContext{llm: llm, params: p}, nil
}

func (m *model) returnBase() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.baseInUse = false
	if m.closed && m.base != nil {
		m.base.Free()
		m.base = nil
	}
}

// VocabSize is not exposed by go-llama.cpp.
func (m *model) VocabSize() int { return 0 }

// EOS is not exposed by go-llama.cpp; the binding stops on it internally.
func (m *model) EOS() engine.Token { return -1 }

func (m *model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	if m.base != nil && !m.baseInUse {
		m.base.Free()
		m.base = nil
	}
	return nil
}

type genContext struct {
	llm    *llama.LLama
	params engine.ContextParams
	// release returns a borrowed instance instead of freeing it.
	release func()
}

func (c *genContext) Tokenize(text string, addBOS bool) ([]engine.Token, error) {
	if c.llm == nil {
		return nil, engine.ErrClosed
	}
	// The binding always prepends BOS.
	_, ids, err := c.llm.TokenizeString(text, llama.SetThreads(int(c.params.Threads)))
	if err != nil {
		return nil, err
	}
	if !addBOS && len(ids) > 0 {
		ids = ids[1:]
	}
	out := make([]engine.Token, len(ids))
	for i, id := range ids {
		out[i] = engine.Token(id)
	}
	return out, nil
}

func (c *genContext) ContextSize() int { return int(c.params.ContextSize) }

func (c *genContext) Decode(*engine.Batch) error { return engine.ErrUnsupported }

func (c *genContext) Logits(int) ([]float32, error) { return nil, engine.ErrUnsupported }

func (c *genContext) TokenToPiece(engine.Token) string { return "" }

func (c *genContext) GenerateGreedy(ctx context.Context, prompt string, maxTokens int, onPiece func(string) bool) (int, error) {
	if c.llm == nil {
		return 0, engine.ErrClosed
	}
	n := 0
	c.llm.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
		}
		n++
		return onPiece(tok)
	})
	po := []llama.PredictOption{
		llama.SetTokens(max(1, maxTokens)),
		llama.SetThreads(max(1, int(c.params.Threads))),
		llama.SetBatch(int(c.params.BatchSize)),
		// temperature 0 selects llama_sample_token_greedy in the binding
		llama.SetTemperature(0),
		llama.SetTopK(1),
	}
	if c.params.Seed != engine.DefaultSeed {
		po = append(po, llama.SetSeed(int(c.params.Seed)))
	}
	if _, err := c.llm.Predict(prompt, po...); err != nil {
		if ctx.Err() != nil {
			return n, ctx.Err()
		}
		return n, err
	}
	return n, nil
}

func (c *genContext) Close() error {
	if c.llm == nil {
		return nil
	}
	if c.release != nil {
		c.release()
	} else {
		c.llm.Free()
	}
	c.llm = nil
	return nil
}
