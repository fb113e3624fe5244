package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultAddr         = ":8080"
	DefaultModelsDir    = "~/models/llm"
	DefaultMaxBodyBytes = 1 << 20
	DefaultDecodeMaxLen = 32
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Addr         string `json:"addr" yaml:"addr" toml:"addr"`
	ModelsDir    string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	Backend      string `json:"backend" yaml:"backend" toml:"backend"`
	LogLevel     string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat    string `json:"log_format" yaml:"log_format" toml:"log_format"`
	MaxBodyBytes int64  `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	// Total sequence length used when a decode request omits max_len.
	DecodeMaxLen int `json:"decode_max_len" yaml:"decode_max_len" toml:"decode_max_len"`
	// Per-request decode timeout in seconds; 0 disables.
	DecodeTimeoutSeconds int64 `json:"decode_timeout_seconds" yaml:"decode_timeout_seconds" toml:"decode_timeout_seconds"`

	CORS   CORS    `json:"cors" yaml:"cors" toml:"cors"`
	Models []Model `json:"models" yaml:"models" toml:"models"`
}

// CORS configures the optional CORS middleware.
type CORS struct {
	Enabled        bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	AllowedOrigins []string `json:"allowed_origins" yaml:"allowed_origins" toml:"allowed_origins"`
	AllowedMethods []string `json:"allowed_methods" yaml:"allowed_methods" toml:"allowed_methods"`
	AllowedHeaders []string `json:"allowed_headers" yaml:"allowed_headers" toml:"allowed_headers"`
}

// Model is a handle loaded at startup. Nil fields keep engine defaults.
type Model struct {
	ID string `json:"id" yaml:"id" toml:"id"`
	// Path may be omitted when ID is a file in ModelsDir.
	Path string `json:"path" yaml:"path" toml:"path"`

	GPULayers *int32 `json:"gpu_layers" yaml:"gpu_layers" toml:"gpu_layers"`
	SplitMode string `json:"split_mode" yaml:"split_mode" toml:"split_mode"`
	MainGPU   *int32 `json:"main_gpu" yaml:"main_gpu" toml:"main_gpu"`
	VocabOnly *bool  `json:"vocab_only" yaml:"vocab_only" toml:"vocab_only"`
	UseMMap   *bool  `json:"use_mmap" yaml:"use_mmap" toml:"use_mmap"`
	UseMLock  *bool  `json:"use_mlock" yaml:"use_mlock" toml:"use_mlock"`

	Seed         *int `json:"seed" yaml:"seed" toml:"seed"`
	CtxSize      *int `json:"ctx_size" yaml:"ctx_size" toml:"ctx_size"`
	BatchSize    *int `json:"batch_size" yaml:"batch_size" toml:"batch_size"`
	Threads      *int `json:"threads" yaml:"threads" toml:"threads"`
	ThreadsBatch *int `json:"threads_batch" yaml:"threads_batch" toml:"threads_batch"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ApplyDefaults fills unspecified fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.ModelsDir == "" {
		c.ModelsDir = DefaultModelsDir
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "console"
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.DecodeMaxLen <= 0 {
		c.DecodeMaxLen = DefaultDecodeMaxLen
	}
}

// Validate reports every problem in the preload list at once.
func (c Config) Validate() error {
	var err error
	if c.DecodeTimeoutSeconds < 0 {
		err = multierr.Append(err, fmt.Errorf("decode_timeout_seconds must not be negative"))
	}
	seen := make(map[string]bool, len(c.Models))
	for i, m := range c.Models {
		if strings.TrimSpace(m.ID) == "" {
			err = multierr.Append(err, fmt.Errorf("models[%d]: id is required", i))
			continue
		}
		if seen[m.ID] {
			err = multierr.Append(err, fmt.Errorf("models[%d]: duplicate id %q", i, m.ID))
		}
		seen[m.ID] = true
		switch strings.ToLower(m.SplitMode) {
		case "", "none", "layer", "row":
		default:
			err = multierr.Append(err, fmt.Errorf("models[%d]: unknown split_mode %q", i, m.SplitMode))
		}
	}
	return err
}
