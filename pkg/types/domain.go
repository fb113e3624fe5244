package types

// Model represents a GGUF model file discovered in the models directory.
type Model struct {
	// File name of the model; used as its catalog id.
	// example: tinyllama-1.1b-chat.Q4_K_M.gguf
	ID string `json:"id" example:"tinyllama-1.1b-chat.Q4_K_M.gguf"`
	// File name without the .gguf extension.
	// example: tinyllama-1.1b-chat.Q4_K_M
	Name string `json:"name" example:"tinyllama-1.1b-chat.Q4_K_M"`
	// Absolute path to the model file on disk.
	// example: /home/user/models/tinyllama-1.1b-chat.Q4_K_M.gguf
	Path string `json:"path" example:"/home/user/models/tinyllama-1.1b-chat.Q4_K_M.gguf"`
	// Quantization tag parsed from the file name, if any.
	// example: Q4_K_M
	Quant string `json:"quant" example:"Q4_K_M"`
	// Optional family (e.g., llama, mistral, phi).
	// example: llama
	Family string `json:"family,omitempty" example:"llama"`
}

// LoadParams are the load-time parameters of a handle.
type LoadParams struct {
	// Layers offloaded to the GPU.
	// example: 0
	GPULayers int32 `json:"gpu_layers" example:"0"`
	// How the model is split across GPUs: none, layer or row.
	// example: layer
	SplitMode string `json:"split_mode" example:"layer"`
	// example: 0
	MainGPU   int32 `json:"main_gpu" example:"0"`
	VocabOnly bool  `json:"vocab_only" example:"false"`
	UseMMap   bool  `json:"use_mmap" example:"true"`
	UseMLock  bool  `json:"use_mlock" example:"false"`
}

// ContextParams are the parameters a handle's next inference context is
// created with.
type ContextParams struct {
	// RNG seed; 4294967295 means random.
	// example: 4294967295
	Seed uint32 `json:"seed" example:"4294967295"`
	// example: 2048
	CtxSize uint32 `json:"ctx_size" example:"2048"`
	// example: 512
	BatchSize uint32 `json:"batch_size" example:"512"`
	// example: 4
	Threads int32 `json:"threads" example:"4"`
	// example: 4
	ThreadsBatch int32 `json:"threads_batch" example:"4"`
}
