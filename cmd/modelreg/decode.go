package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"modelreg/internal/common/fsutil"
	"modelreg/internal/config"
	"modelreg/internal/decode"
	"modelreg/internal/engine"
	"modelreg/internal/logging"
	"modelreg/internal/manager"
	"modelreg/internal/registry"
	"modelreg/pkg/types"
)

const defaultPrompt = "Hello my name is"

type decodeOptions struct {
	modelsDir string
	prompt    string
	maxLen    int
	gpuLayers int32
	splitMode string
	params    types.ParamsRequest
}

func newDecodeCmd(root *rootOptions) *cobra.Command {
	o := &decodeOptions{}
	var seed, ctxSize, batchSize, threads, threadsBatch int
	cmd := &cobra.Command{
		Use:   "decode <model>",
		Short: "Load a model and print a greedy completion of a prompt",
		Long: "Load a model, prime the KV cache with the prompt and print one arg-max token per step\n" +
			"until end of sequence or --max-len tokens in total. <model> is a .gguf path or a catalog id.",
		Example: "  modelreg decode ~/models/llm/tiny.gguf --prompt \"Hello my name is\"\n  modelreg decode tiny --ctx-size 4096 --max-len 64",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			for name, dst := range map[string]**int{
				"seed":          &o.params.Seed,
				"ctx-size":      &o.params.CtxSize,
				"batch-size":    &o.params.BatchSize,
				"threads":       &o.params.Threads,
				"threads-batch": &o.params.ThreadsBatch,
			} {
				if flags.Changed(name) {
					v, _ := flags.GetInt(name)
					*dst = &v
				}
			}
			cfg, err := root.loadConfig(func(c *config.Config) {
				if o.modelsDir != "" {
					c.ModelsDir = o.modelsDir
				}
			})
			if err != nil {
				return err
			}
			return runDecode(cmd, cfg, args[0], o, flags.Changed("gpu-layers"))
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.modelsDir, "models-dir", envStr("MODELREG_MODELS_DIR", ""), "Directory searched when <model> is a catalog id")
	f.StringVarP(&o.prompt, "prompt", "p", defaultPrompt, "Prompt to complete")
	f.IntVar(&o.maxLen, "max-len", decode.DefaultMaxLen, "Total sequence length, prompt included")
	f.Int32Var(&o.gpuLayers, "gpu-layers", 0, "Layers to offload to the GPU")
	f.StringVar(&o.splitMode, "split-mode", "", "Multi-GPU split mode: none|layer|row")
	f.IntVar(&seed, "seed", 0, "RNG seed")
	f.IntVar(&ctxSize, "ctx-size", 0, fmt.Sprintf("Context size in tokens (minimum %d)", registry.MinContextSize))
	f.IntVar(&batchSize, "batch-size", 0, "Logical batch size")
	f.IntVar(&threads, "threads", 0, "Threads used for generation")
	f.IntVar(&threadsBatch, "threads-batch", 0, "Threads used for prompt processing")
	return cmd
}

func runDecode(cmd *cobra.Command, cfg config.Config, model string, o *decodeOptions, gpuLayersSet bool) error {
	log := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	req := types.LoadRequest{ID: model, SplitMode: o.splitMode}
	if gpuLayersSet {
		req.GPULayers = &o.gpuLayers
	}
	var catalog []types.Model
	if path, err := fsutil.ExpandPath(model); err == nil && fsutil.IsFile(path) {
		req.ID = filepath.Base(path)
		req.Path = path
		catalog = []types.Model{}
	}

	mgr := manager.New(manager.Config{
		Registry:  registry.New(registry.Config{Backend: engine.Lookup(cfg.Backend), Logger: &log}),
		Catalog:   catalog,
		ModelsDir: cfg.ModelsDir,
		Logger:    &log,
	})
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Warn().Err(err).Msg("unload")
		}
	}()

	if err := mgr.Load(req); err != nil {
		return err
	}
	if !o.params.Empty() {
		if err := mgr.SetParams(req.ID, o.params); err != nil {
			return err
		}
	}
	h, err := mgr.Registry().Get(req.ID)
	if err != nil {
		return err
	}
	res, err := decode.Run(cmd.Context(), h, o.prompt, decode.Options{
		MaxLen: o.maxLen,
		Out:    cmd.OutOrStdout(),
		Logger: &log,
	})
	if err != nil {
		return err
	}
	log.Info().
		Int("prompt_tokens", res.PromptTokens).
		Int("decoded", res.Decoded).
		Str("stop_reason", res.StopReason).
		Dur("elapsed", res.Elapsed).
		Float64("tokens_per_second", res.TokensPerSecond()).
		Msg("decode done")
	return nil
}
