package types

// LoadRequest is the body of POST /handles. Omitted load options take the
// engine defaults.
type LoadRequest struct {
	// Handle id. Required.
	// example: tiny
	ID string `json:"id" example:"tiny"`
	// Model file path. May be omitted when ID or Model names a catalog entry.
	// example: /home/user/models/tinyllama-1.1b-chat.Q4_K_M.gguf
	Path string `json:"path,omitempty" example:"/home/user/models/tinyllama-1.1b-chat.Q4_K_M.gguf"`
	// Catalog id to resolve the path from.
	// example: tinyllama-1.1b-chat.Q4_K_M.gguf
	Model string `json:"model,omitempty" example:"tinyllama-1.1b-chat.Q4_K_M.gguf"`
	// example: 0
	GPULayers *int32 `json:"gpu_layers,omitempty" example:"0"`
	// example: layer
	SplitMode string `json:"split_mode,omitempty" example:"layer"`
	// example: 0
	MainGPU   *int32 `json:"main_gpu,omitempty" example:"0"`
	VocabOnly *bool  `json:"vocab_only,omitempty"`
	UseMMap   *bool  `json:"use_mmap,omitempty"`
	UseMLock  *bool  `json:"use_mlock,omitempty"`
}

// ParamsRequest is the body of PATCH /handles/{id}/params. Only fields that
// are present are applied.
type ParamsRequest struct {
	// example: 42
	Seed *int `json:"seed,omitempty" example:"42"`
	// Values below 2048 are raised to 2048.
	// example: 4096
	CtxSize *int `json:"ctx_size,omitempty" example:"4096"`
	// example: 512
	BatchSize *int `json:"batch_size,omitempty" example:"512"`
	// example: 8
	Threads *int `json:"threads,omitempty" example:"8"`
	// example: 8
	ThreadsBatch *int `json:"threads_batch,omitempty" example:"8"`
}

// Empty reports whether no field is set.
func (p ParamsRequest) Empty() bool {
	return p.Seed == nil && p.CtxSize == nil && p.BatchSize == nil && p.Threads == nil && p.ThreadsBatch == nil
}

// DecodeRequest is the body of POST /handles/{id}/decode.
type DecodeRequest struct {
	// Prompt to tokenize and continue greedily.
	// example: Hello my name is
	Prompt string `json:"prompt" example:"Hello my name is"`
	// Total sequence length including the prompt; 0 uses the server default.
	// example: 32
	MaxLen int `json:"max_len,omitempty" example:"32"`
}

// DecodeDone is the final NDJSON line of a decode stream.
type DecodeDone struct {
	Done bool `json:"done" example:"true"`
	// Generated text without the prompt.
	// example: John, I am a student.
	Content string `json:"content" example:" John, I am a student."`
	// example: 5
	PromptTokens int `json:"prompt_tokens" example:"5"`
	// example: 7
	CompletionTokens int `json:"completion_tokens" example:"7"`
	// eos or length.
	// example: eos
	StopReason string `json:"stop_reason" example:"eos"`
	// example: 12.5
	TokensPerSecond float64 `json:"tokens_per_second" example:"12.5"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// List of available models.
	Models []Model `json:"models"`
}

// HandlesResponse wraps the list returned by GET /handles.
type HandlesResponse struct {
	Handles []HandleStatus `json:"handles"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}
