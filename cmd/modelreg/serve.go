package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"modelreg/internal/config"
	"modelreg/internal/engine"
	"modelreg/internal/httpapi"
	"modelreg/internal/logging"
	"modelreg/internal/manager"
	"modelreg/internal/registry"
)

const shutdownTimeout = 5 * time.Second

type serveOptions struct {
	addr          string
	modelsDir     string
	decodeTimeout int64
	cors          bool
	corsOrigins   string
	corsMethods   string
	corsHeaders   string
}

func newServeCmd(root *rootOptions) *cobra.Command {
	o := &serveOptions{}
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Serve the registry over HTTP",
		Example: "  modelreg serve --addr :8080 --models-dir ~/models/llm\n  modelreg serve --config modelreg.yaml --log-format json",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			cfg, err := root.loadConfig(func(c *config.Config) {
				if o.addr != "" {
					c.Addr = o.addr
				}
				if o.modelsDir != "" {
					c.ModelsDir = o.modelsDir
				}
				if flags.Changed("decode-timeout") {
					c.DecodeTimeoutSeconds = o.decodeTimeout
				}
				if flags.Changed("cors") {
					c.CORS.Enabled = o.cors
				}
				if v := splitCSV(o.corsOrigins); v != nil {
					c.CORS.AllowedOrigins = v
				}
				if v := splitCSV(o.corsMethods); v != nil {
					c.CORS.AllowedMethods = v
				}
				if v := splitCSV(o.corsHeaders); v != nil {
					c.CORS.AllowedHeaders = v
				}
			})
			if err != nil {
				return err
			}
			log := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.addr, "addr", envStr("MODELREG_ADDR", ""), "HTTP listen address, e.g. :8080 (defaults MODELREG_ADDR)")
	f.StringVar(&o.modelsDir, "models-dir", envStr("MODELREG_MODELS_DIR", ""), "Directory to scan for *.gguf model files")
	f.Int64Var(&o.decodeTimeout, "decode-timeout", 0, "Per-request decode timeout in seconds (0 disables)")
	f.BoolVar(&o.cors, "cors", false, "Enable CORS")
	f.StringVar(&o.corsOrigins, "cors-origins", "", "Comma separated allowed origins")
	f.StringVar(&o.corsMethods, "cors-methods", "", "Comma separated allowed methods")
	f.StringVar(&o.corsHeaders, "cors-headers", "", "Comma separated allowed headers")
	return cmd
}

// newServer wires the registry, manager and HTTP layer for cfg and preloads
// the configured models. A failed preload is logged; the server still
// starts with whatever loaded.
func newServer(cfg config.Config, log zerolog.Logger) (*http.Server, *manager.Manager) {
	backend := engine.Lookup(cfg.Backend)
	reg := registry.New(registry.Config{Backend: backend, Logger: &log})
	mgr := manager.New(manager.Config{
		Registry:     reg,
		ModelsDir:    cfg.ModelsDir,
		DecodeMaxLen: cfg.DecodeMaxLen,
		Publisher:    manager.NewLogPublisher(log),
		Logger:       &log,
	})
	if err := mgr.Preload(cfg.Models); err != nil {
		log.Error().Err(err).Msg("preload failed")
	}

	httpapi.SetLogger(log)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetDecodeTimeoutSeconds(cfg.DecodeTimeoutSeconds)
	httpapi.SetCORSOptions(cfg.CORS.Enabled, cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewMux(mgr),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv, mgr
}

// serve runs the HTTP server until ctx is done, then shuts it down and
// unloads every handle.
func serve(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	srv, mgr := newServer(cfg, log)
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Warn().Err(err).Msg("unload on shutdown")
		}
	}()
	// Cancels in-flight decodes once shutdown starts.
	httpapi.SetBaseContext(ctx)

	errc := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.Addr).
			Str("models_dir", cfg.ModelsDir).
			Str("backend", mgr.Registry().Backend().Name()).
			Int("handles", mgr.Registry().Len()).
			Msg("modelreg listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("graceful shutdown error")
	}
	return nil
}
