package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"modelreg/internal/config"
	"modelreg/internal/engine"
)

// rootOptions carries the persistent flags shared by every subcommand.
type rootOptions struct {
	configPath string
	logLevel   string
	logFormat  string
	backend    string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "modelreg",
		Short:         "Registry of loaded llama.cpp models with a greedy decode API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", envStr("MODELREG_CONFIG", ""), "Config file: .yaml, .yml, .json or .toml (defaults MODELREG_CONFIG)")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error (overrides config)")
	pf.StringVar(&opts.logFormat, "log-format", "", "Log format: console|json (overrides config)")
	pf.StringVar(&opts.backend, "backend", "", fmt.Sprintf("Engine backend (compiled in: %s)", backendList()))

	root.AddCommand(newServeCmd(opts), newDecodeCmd(opts), newModelsCmd(opts), newBackendsCmd())
	return root
}

// loadConfig reads the config file when one was given, applies the
// persistent flag overrides and then override, fills defaults and validates.
func (o *rootOptions) loadConfig(override func(*config.Config)) (config.Config, error) {
	var cfg config.Config
	if o.configPath != "" {
		c, err := config.Load(o.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = c
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}
	if o.backend != "" {
		cfg.Backend = o.backend
	}
	if override != nil {
		override(&cfg)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List the engine backends compiled into this binary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names := engine.Backends()
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "none (build with -tags=llama or -tags=gollama)")
				return nil
			}
			def := engine.Lookup("").Name()
			for _, n := range names {
				mark := " "
				if n == def {
					mark = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", mark, n)
			}
			return nil
		},
	}
}

func backendList() string {
	if names := engine.Backends(); len(names) > 0 {
		return strings.Join(names, ",")
	}
	return "none"
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// splitCSV splits a comma separated flag value, dropping empty items.
func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
