package engine

// Batch is a set of tokens submitted to Context.Decode in one call.
// All tokens belong to sequence 0.
type Batch struct {
	Tokens []Token
	Pos    []int32
	Logits []bool
}

// NewBatch allocates a batch with room for capacity tokens.
func NewBatch(capacity int) *Batch {
	return &Batch{
		Tokens: make([]Token, 0, capacity),
		Pos:    make([]int32, 0, capacity),
		Logits: make([]bool, 0, capacity),
	}
}

// Add appends a token at position pos; wantLogits requests its logits row.
func (b *Batch) Add(t Token, pos int, wantLogits bool) {
	b.Tokens = append(b.Tokens, t)
	b.Pos = append(b.Pos, int32(pos))
	b.Logits = append(b.Logits, wantLogits)
}

// Clear empties the batch, keeping its storage.
func (b *Batch) Clear() {
	b.Tokens = b.Tokens[:0]
	b.Pos = b.Pos[:0]
	b.Logits = b.Logits[:0]
}

// Len is the number of tokens in the batch.
func (b *Batch) Len() int { return len(b.Tokens) }
