package types

// HandleStatus describes a loaded handle.
type HandleStatus struct {
	// example: tiny
	ID string `json:"id" example:"tiny"`
	// example: /home/user/models/tinyllama-1.1b-chat.Q4_K_M.gguf
	Path    string        `json:"path" example:"/home/user/models/tinyllama-1.1b-chat.Q4_K_M.gguf"`
	Load    LoadParams    `json:"load"`
	Context ContextParams `json:"context"`
	// Load time in unix seconds.
	// example: 1700000000
	LoadedAt int64 `json:"loaded_at_unix" example:"1700000000"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Loaded handles, sorted by id.
	Handles []HandleStatus `json:"handles"`
	// Engine backend models are loaded with.
	// example: llamacpp
	Backend string `json:"backend" example:"llamacpp"`
	// Backends compiled into this binary.
	// example: ["llamacpp"]
	Backends []string `json:"backends"`
	// ready when at least one handle is loaded, otherwise idle.
	// example: ready
	State string `json:"state" example:"ready"`
	// Last error observed by the manager (if any).
	LastError string `json:"last_error,omitempty"`
	// example: 12
	LoadsTotal uint64 `json:"loads_total" example:"12"`
	// example: 3
	UnloadsTotal uint64 `json:"unloads_total" example:"3"`
	// example: 40
	DecodesTotal uint64 `json:"decodes_total" example:"40"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
