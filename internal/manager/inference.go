package manager

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"modelreg/internal/decode"
	"modelreg/pkg/types"
)

// Decode runs greedy decoding on a handle and streams NDJSON to w: one
// {"token":...} line per generated piece, then a types.DecodeDone line.
// flush, when set, is called after every line.
func (m *Manager) Decode(ctx context.Context, id string, req types.DecodeRequest, w io.Writer, flush func()) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return ErrBadRequest("prompt is required")
	}
	if req.MaxLen < 0 {
		return ErrBadRequest("max_len must not be negative")
	}
	h, err := m.reg.Get(id)
	if err != nil {
		return err
	}
	maxLen := req.MaxLen
	if maxLen == 0 {
		maxLen = m.maxLen
	}

	res, err := decode.Run(ctx, h, req.Prompt, decode.Options{
		MaxLen: maxLen,
		Logger: &m.log,
		OnPiece: func(piece string) error {
			if _, err := w.Write(tokenLineJSON(piece)); err != nil {
				return err
			}
			if flush != nil {
				flush()
			}
			return nil
		},
	})
	if err != nil {
		if ctx.Err() == nil {
			m.setLastError(err)
		}
		m.publish(Event{Name: EventDecodeFailed, HandleID: id, Fields: map[string]any{"error": err.Error()}})
		return err
	}
	m.decodes.Add(1)
	m.publish(Event{Name: EventDecodeDone, HandleID: id, Fields: map[string]any{
		"completion_tokens": res.Decoded,
		"stop_reason":       res.StopReason,
	}})

	jb, _ := json.Marshal(types.DecodeDone{
		Done:             true,
		Content:          res.Text,
		PromptTokens:     res.PromptTokens,
		CompletionTokens: res.Decoded,
		StopReason:       res.StopReason,
		TokensPerSecond:  res.TokensPerSecond(),
	})
	if _, err := w.Write(append(jb, '\n')); err != nil {
		return err
	}
	if flush != nil {
		flush()
	}
	return nil
}

// tokenLineJSON formats a token NDJSON line using json.Marshal for correctness.
func tokenLineJSON(tok string) []byte {
	type tokenMsg struct {
		Token string `json:"token"`
	}
	b, _ := json.Marshal(tokenMsg{Token: tok})
	return append(b, '\n')
}
