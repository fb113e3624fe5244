package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"modelreg/internal/catalog"
	"modelreg/internal/config"
)

func newModelsCmd(root *rootOptions) *cobra.Command {
	var modelsDir string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the *.gguf files in the models directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(func(c *config.Config) {
				if modelsDir != "" {
					c.ModelsDir = modelsDir
				}
			})
			if err != nil {
				return err
			}
			models, err := catalog.Scan(cfg.ModelsDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(models)
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tQUANT\tPATH")
			for _, m := range models {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", m.ID, m.Quant, m.Path)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&modelsDir, "models-dir", envStr("MODELREG_MODELS_DIR", ""), "Directory to scan for *.gguf model files")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	return cmd
}
