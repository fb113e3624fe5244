// Package decode runs the greedy decoding example: tokenize a prompt, prime
// the KV cache with it, then emit one arg-max token per step until EOS or
// the maximum sequence length.
package decode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"modelreg/internal/engine"
)

// DefaultMaxLen is the total sequence length, prompt included.
const DefaultMaxLen = 32

var (
	// ErrContext is returned when the engine cannot create a context.
	ErrContext = errors.New("failed to create the inference context")
	// ErrTokenize is returned when the prompt cannot be tokenized.
	ErrTokenize = errors.New("failed to tokenize the prompt")
	// ErrCacheCapacity is returned when prompt plus generation exceeds the context size.
	ErrCacheCapacity = errors.New("the required KV cache size is not big enough")
	// ErrDecode is returned when an engine decode call fails.
	ErrDecode = errors.New("decode failed")
)

// Source pins a loaded model for the duration of a run.
// *registry.Handle implements it.
type Source interface {
	Acquire() (engine.Model, engine.ContextParams, func(), error)
}

// Options tune a run. The zero value uses DefaultMaxLen and discards output.
type Options struct {
	// MaxLen is the total sequence length including the prompt.
	MaxLen int
	// Out receives the prompt pieces followed by every generated piece.
	Out io.Writer
	// OnPiece is called for every generated piece; an error stops the run.
	OnPiece func(piece string) error
	Logger  *zerolog.Logger
}

// Result summarizes a run.
type Result struct {
	PromptTokens int
	// Tokens are the generated token ids; empty when the engine generated.
	Tokens  []engine.Token
	Text    string
	Decoded int
	// StopReason is "eos" or "length".
	StopReason string
	Elapsed    time.Duration
}

// TokensPerSecond is the generation speed of the run.
func (r Result) TokensPerSecond() float64 {
	if r.Elapsed <= 0 {
		return 0
	}
	return float64(r.Decoded) / r.Elapsed.Seconds()
}

// RequiredCache is the number of KV cache slots needed to hold a prompt of
// promptTokens plus every token generated up to maxLen.
func RequiredCache(promptTokens, maxLen int) int {
	return promptTokens + max(0, maxLen-promptTokens)
}

// Greedy returns the index of the largest logit; ties go to the lowest index.
// It returns -1 for an empty row.
func Greedy(logits []float32) engine.Token {
	if len(logits) == 0 {
		return -1
	}
	best := 0
	for i := 1; i < len(logits); i++ {
		if logits[i] > logits[best] {
			best = i
		}
	}
	return engine.Token(best)
}

// Run creates a context from the source's current parameters and decodes
// greedily from prompt. The cache-capacity check happens before anything
// is decoded.
func Run(ctx context.Context, src Source, prompt string, opts Options) (Result, error) {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = opts.Logger.With().Str("component", "decode").Logger()
	}

	m, params, release, err := src.Acquire()
	if err != nil {
		return Result{}, err
	}
	defer release()

	lctx, err := m.NewContext(params)
	if err != nil {
		failuresTotal.WithLabelValues("context").Inc()
		log.Error().Err(err).Msg("failed to create the llama context")
		return Result{}, fmt.Errorf("%w: %w", ErrContext, err)
	}
	defer lctx.Close()

	tokens, err := lctx.Tokenize(prompt, true)
	if err == nil && len(tokens) == 0 {
		err = errors.New("prompt produced no tokens")
	}
	if err != nil {
		failuresTotal.WithLabelValues("tokenize").Inc()
		return Result{}, fmt.Errorf("%w: %w", ErrTokenize, err)
	}

	nCtx := lctx.ContextSize()
	nKVReq := RequiredCache(len(tokens), maxLen)
	log.Debug().Int("n_len", maxLen).Int("n_ctx", nCtx).Int("n_kv_req", nKVReq).Msg("decode start")
	if nKVReq > nCtx {
		failuresTotal.WithLabelValues("cache_capacity").Inc()
		log.Error().Int("n_kv_req", nKVReq).Int("n_ctx", nCtx).Msg("either reduce n_len or increase n_ctx")
		return Result{PromptTokens: len(tokens)}, fmt.Errorf("%w: need %d slots, n_ctx is %d", ErrCacheCapacity, nKVReq, nCtx)
	}

	r := &runner{
		ctx:    ctx,
		lctx:   lctx,
		out:    opts.Out,
		onText: opts.OnPiece,
		res:    Result{PromptTokens: len(tokens)},
	}
	if gen, ok := lctx.(engine.Generator); ok {
		err = r.generate(gen, prompt, maxLen)
	} else {
		err = r.loop(m, tokens, maxLen, int(params.BatchSize))
	}
	r.res.Text = r.text.String()
	if err != nil {
		return r.res, err
	}

	tokensTotal.Add(float64(r.res.Decoded))
	durationSeconds.Observe(r.res.Elapsed.Seconds())
	log.Info().
		Int("decoded", r.res.Decoded).
		Str("stop", r.res.StopReason).
		Dur("elapsed", r.res.Elapsed).
		Float64("tokens_per_second", r.res.TokensPerSecond()).
		Msg("decode finished")
	return r.res, nil
}

type runner struct {
	ctx    context.Context
	lctx   engine.Context
	out    io.Writer
	onText func(string) error
	text   strings.Builder
	res    Result
}

func (r *runner) write(s string) error {
	if r.out == nil || s == "" {
		return nil
	}
	_, err := io.WriteString(r.out, s)
	return err
}

func (r *runner) emit(piece string) error {
	r.text.WriteString(piece)
	if err := r.write(piece); err != nil {
		return err
	}
	if r.onText != nil {
		return r.onText(piece)
	}
	return nil
}

// loop is the token-by-token path for engines that expose logits.
func (r *runner) loop(m engine.Model, tokens []engine.Token, maxLen, nBatch int) error {
	for _, t := range tokens {
		if err := r.write(r.lctx.TokenToPiece(t)); err != nil {
			return err
		}
	}

	batch := engine.NewBatch(max(len(tokens), 1))
	start := time.Now()
	if err := prime(r.lctx, batch, tokens, nBatch); err != nil {
		failuresTotal.WithLabelValues("decode").Inc()
		return fmt.Errorf("%w: prompt: %w", ErrDecode, err)
	}

	vocab := m.VocabSize()
	eos := m.EOS()
	nCur := len(tokens)
	r.res.StopReason = "length"
	for nCur <= maxLen {
		if err := r.ctx.Err(); err != nil {
			return err
		}
		logits, err := r.lctx.Logits(batch.Len() - 1)
		if err != nil {
			failuresTotal.WithLabelValues("decode").Inc()
			return fmt.Errorf("%w: %w", ErrDecode, err)
		}
		if vocab > 0 && len(logits) > vocab {
			logits = logits[:vocab]
		}
		next := Greedy(logits)
		if next < 0 {
			failuresTotal.WithLabelValues("decode").Inc()
			return fmt.Errorf("%w: empty logits row", ErrDecode)
		}
		if next == eos || nCur == maxLen {
			if next == eos {
				r.res.StopReason = "eos"
			}
			break
		}
		if err := r.emit(r.lctx.TokenToPiece(next)); err != nil {
			return err
		}

		batch.Clear()
		batch.Add(next, nCur, true)
		r.res.Tokens = append(r.res.Tokens, next)
		r.res.Decoded++
		nCur++

		if err := r.lctx.Decode(batch); err != nil {
			failuresTotal.WithLabelValues("decode").Inc()
			return fmt.Errorf("%w: failed to eval: %w", ErrDecode, err)
		}
	}
	r.res.Elapsed = time.Since(start)
	return r.write("\n")
}

// prime decodes the prompt in chunks of at most nBatch tokens; only the
// last prompt token requests logits.
func prime(lctx engine.Context, batch *engine.Batch, tokens []engine.Token, nBatch int) error {
	if nBatch <= 0 {
		nBatch = len(tokens)
	}
	for start := 0; start < len(tokens); start += nBatch {
		end := min(start+nBatch, len(tokens))
		batch.Clear()
		for i := start; i < end; i++ {
			batch.Add(tokens[i], i, i == len(tokens)-1)
		}
		if err := lctx.Decode(batch); err != nil {
			return err
		}
	}
	return nil
}

// generate delegates sampling to engines implementing engine.Generator.
func (r *runner) generate(gen engine.Generator, prompt string, maxLen int) error {
	if err := r.write(prompt); err != nil {
		return err
	}
	budget := maxLen - r.res.PromptTokens
	r.res.StopReason = "length"
	if budget <= 0 {
		return r.write("\n")
	}
	var emitErr error
	start := time.Now()
	n, err := gen.GenerateGreedy(r.ctx, prompt, budget, func(piece string) bool {
		if emitErr = r.emit(piece); emitErr != nil {
			return false
		}
		return true
	})
	r.res.Decoded = n
	r.res.Elapsed = time.Since(start)
	if emitErr != nil {
		return emitErr
	}
	if err != nil {
		if r.ctx.Err() != nil {
			return r.ctx.Err()
		}
		failuresTotal.WithLabelValues("decode").Inc()
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if n < budget {
		r.res.StopReason = "eos"
	}
	return r.write("\n")
}
