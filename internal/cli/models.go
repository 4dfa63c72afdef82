package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/huimingz/commitflow/internal/config"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage models",
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured models",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		listModels(cmd.OutOrStdout(), cfg)
		return nil
	},
}

func init() {
	modelsCmd.AddCommand(modelsListCmd)
	rootCmd.AddCommand(modelsCmd)
}

// listModels prints the configured models sorted by name, the default
// first marked. API keys are shown masked.
func listModels(out io.Writer, cfg *config.Config) {
	if len(cfg.Models) == 0 {
		fmt.Fprintln(out, "No models configured.")
		fmt.Fprintln(out, "\nRun 'commitflow init' to create a configuration file.")
		return
	}

	bold := color.New(color.Bold)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	names := make([]string, 0, len(cfg.Models))
	for name := range cfg.Models {
		names = append(names, name)
	}
	sort.Strings(names)

	bold.Fprintln(out, "Configured Models:")
	fmt.Fprintln(out)

	for _, name := range names {
		model := cfg.Models[name].Redacted()
		if name == cfg.DefaultModel {
			green.Fprintf(out, "  ✓ %s (default)\n", name)
		} else {
			fmt.Fprintf(out, "    %s\n", name)
		}

		cyan.Fprintf(out, "      Provider: %s\n", model.Provider)
		cyan.Fprintf(out, "      Model:    %s\n", model.Model)
		if model.BaseURL != "" {
			cyan.Fprintf(out, "      Base URL: %s\n", model.BaseURL)
		}
		if model.APIKey != "" {
			cyan.Fprintf(out, "      API Key:  %s\n", model.APIKey)
		}
		fmt.Fprintln(out)
	}
}
