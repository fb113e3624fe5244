// Package enginetest provides a deterministic in-memory engine.Backend for
// tests. It tokenizes on whitespace, predicts tokens from a fixed script
// and records every call it receives.
package enginetest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"modelreg/internal/engine"
)

// Reserved token ids of the fake vocabulary.
const (
	BOS engine.Token = 1
	EOS engine.Token = 2
)

// firstWordToken is where prompt words start; they never collide with
// scripted tokens, which must be below VocabSize.
const firstWordToken engine.Token = 100000

// Engine is a fake backend. Configure the exported fields before use.
type Engine struct {
	// VocabSize is the logits row width (default 64).
	VocabSize int
	// Script lists the arg-max token after the prime decode (index 0) and
	// after each generated token. Past its end the model predicts EOS.
	Script []engine.Token
	// Pieces overrides the text of scripted tokens (default " t<id>").
	Pieces map[engine.Token]string
	// Greedy makes contexts implement engine.Generator.
	Greedy bool

	LoadErr    error
	ContextErr error
	// DecodeErrAt fails the n-th Decode call (1-based); 0 disables.
	DecodeErrAt int

	mu         sync.Mutex
	words      map[string]engine.Token
	wordsRev   map[engine.Token]string
	loads      int
	openModels int
	openCtx    int
	decodes    int
	batches    [][]engine.Token
	lastModel  engine.ModelParams
	lastCtx    engine.ContextParams
	paths      []string
}

// New returns an Engine with a 64-token vocabulary.
func New(script ...engine.Token) *Engine {
	return &Engine{VocabSize: 64, Script: script}
}

func (e *Engine) Name() string { return "fake" }

func (e *Engine) LoadModel(path string, params engine.ModelParams) (engine.Model, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paths = append(e.paths, path)
	e.lastModel = params
	if e.LoadErr != nil {
		return nil, e.LoadErr
	}
	e.loads++
	e.openModels++
	return &model{e: e}, nil
}

// Loads counts successful LoadModel calls.
func (e *Engine) Loads() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loads
}

// OpenModels counts loaded models that were not closed.
func (e *Engine) OpenModels() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.openModels
}

// OpenContexts counts contexts that were not closed.
func (e *Engine) OpenContexts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.openCtx
}

// Decodes counts Decode calls, failed ones included.
func (e *Engine) Decodes() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.decodes
}

// Batches returns the tokens of every successfully decoded batch.
func (e *Engine) Batches() [][]engine.Token {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]engine.Token, len(e.batches))
	copy(out, e.batches)
	return out
}

// LastModelParams returns the params of the latest LoadModel call.
func (e *Engine) LastModelParams() engine.ModelParams {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastModel
}

// LastContextParams returns the params of the latest NewContext call.
func (e *Engine) LastContextParams() engine.ContextParams {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastCtx
}

// Paths returns every path passed to LoadModel.
func (e *Engine) Paths() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.paths...)
}

func (e *Engine) vocab() int {
	if e.VocabSize <= 0 {
		return 64
	}
	return e.VocabSize
}

func (e *Engine) wordToken(w string) engine.Token {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.words == nil {
		e.words = map[string]engine.Token{}
		e.wordsRev = map[engine.Token]string{}
	}
	if t, ok := e.words[w]; ok {
		return t
	}
	t := firstWordToken + engine.Token(len(e.words))
	e.words[w] = t
	e.wordsRev[t] = w
	return t
}

func (e *Engine) piece(t engine.Token) string {
	switch t {
	case BOS, EOS:
		return ""
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if p, ok := e.Pieces[t]; ok {
		return p
	}
	if w, ok := e.wordsRev[t]; ok {
		return " " + w
	}
	return fmt.Sprintf(" t%d", t)
}

// predicted returns the scripted arg-max token for a decode step.
func (e *Engine) predicted(step int) engine.Token {
	if step < len(e.Script) {
		return e.Script[step]
	}
	return EOS
}

type model struct {
	e      *Engine
	mu     sync.Mutex
	closed bool
}

func (m *model) NewContext(params engine.ContextParams) (engine.Context, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, engine.ErrClosed
	}
	e := m.e
	e.mu.Lock()
	e.lastCtx = params
	if e.ContextErr != nil {
		e.mu.Unlock()
		return nil, e.ContextErr
	}
	e.openCtx++
	e.mu.Unlock()
	c := &fakeContext{e: e, params: params, step: -1}
	if e.Greedy {
		return &greedyContext{fakeContext: c}, nil
	}
	return c, nil
}

func (m *model) VocabSize() int { return m.e.vocab() }

func (m *model) EOS() engine.Token { return EOS }

func (m *model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return engine.ErrClosed
	}
	m.closed = true
	m.e.mu.Lock()
	m.e.openModels--
	m.e.mu.Unlock()
	return nil
}

type fakeContext struct {
	e      *Engine
	params engine.ContextParams
	closed bool
	// step counts decodes that produced final logits; -1 before the first.
	step   int
	wanted []bool
}

func (c *fakeContext) Tokenize(text string, addBOS bool) ([]engine.Token, error) {
	if c.closed {
		return nil, engine.ErrClosed
	}
	var out []engine.Token
	if addBOS {
		out = append(out, BOS)
	}
	for _, w := range strings.Fields(text) {
		out = append(out, c.e.wordToken(w))
	}
	return out, nil
}

func (c *fakeContext) ContextSize() int { return int(c.params.ContextSize) }

func (c *fakeContext) Decode(b *engine.Batch) error {
	if c.closed {
		return engine.ErrClosed
	}
	e := c.e
	e.mu.Lock()
	e.decodes++
	n := e.decodes
	fail := e.DecodeErrAt > 0 && n == e.DecodeErrAt
	if !fail {
		e.batches = append(e.batches, append([]engine.Token(nil), b.Tokens...))
	}
	e.mu.Unlock()
	if fail {
		return errors.New("fake decode failure")
	}
	if b.Len() == 0 {
		return errors.New("empty batch")
	}
	if int(c.params.BatchSize) > 0 && b.Len() > int(c.params.BatchSize) {
		return fmt.Errorf("batch of %d exceeds n_batch %d", b.Len(), c.params.BatchSize)
	}
	c.wanted = append(c.wanted[:0], b.Logits...)
	// A prime may span several batches; only a batch that requests the
	// final logits advances the script.
	if b.Logits[b.Len()-1] {
		c.step++
	}
	return nil
}

func (c *fakeContext) Logits(i int) ([]float32, error) {
	if c.closed {
		return nil, engine.ErrClosed
	}
	if i < 0 || i >= len(c.wanted) || !c.wanted[i] {
		return nil, fmt.Errorf("no logits for batch index %d", i)
	}
	row := make([]float32, c.e.vocab())
	for j := range row {
		row[j] = -1
	}
	t := c.e.predicted(c.step)
	if int(t) >= 0 && int(t) < len(row) {
		row[t] = 1
	}
	return row, nil
}

func (c *fakeContext) TokenToPiece(t engine.Token) string { return c.e.piece(t) }

func (c *fakeContext) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.e.mu.Lock()
	c.e.openCtx--
	c.e.mu.Unlock()
	return nil
}

type greedyContext struct {
	*fakeContext
}

func (g *greedyContext) GenerateGreedy(ctx context.Context, prompt string, maxTokens int, onPiece func(string) bool) (int, error) {
	n := 0
	for step := 0; step < maxTokens; step++ {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		t := g.e.predicted(step)
		if t == EOS {
			break
		}
		n++
		if !onPiece(g.e.piece(t)) {
			break
		}
	}
	return n, nil
}
