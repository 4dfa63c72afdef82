package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/huimingz/commitflow/internal/config"
	"github.com/huimingz/commitflow/internal/ui"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Interactively update model and generation settings",
	Long: `Update the base URL and model of a configured model entry, and the
temperature and max tokens used for generation. Press Enter to keep a value.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := interruptContext(cmd.Context())
		defer stop()

		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		path := cfg.Path()
		if configFile != "" {
			path = configFile
		}

		values, err := configure(ctx, ui.NewInput(os.Stdin, cmd.OutOrStdout()), cfg)
		if err != nil {
			return err
		}
		if err := config.Update(path, values); err != nil {
			return err
		}
		return ui.NewStreamPrinter(cmd.OutOrStdout()).PrintSuccess(fmt.Sprintf("Configuration saved to %s", path))
	},
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

// configure asks for each setting and returns the dotted keys to write.
// Invalid numbers are asked for again.
func configure(ctx context.Context, input *ui.Input, cfg *config.Config) (map[string]interface{}, error) {
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("no models configured. Run 'commitflow init' first")
	}

	names := make([]string, 0, len(cfg.Models))
	for name := range cfg.Models {
		names = append(names, name)
	}
	sort.Strings(names)

	current := 0
	for i, name := range names {
		if name == cfg.ResolveModelName(modelName) {
			current = i
		}
	}
	idx, err := input.Select(ctx, "Which model do you want to configure?", names, current)
	if err != nil {
		return nil, err
	}
	name := names[idx]
	model := cfg.Models[name]

	baseURL, err := input.ReadLine(ctx, "Base URL: ", model.BaseURL)
	if err != nil {
		return nil, err
	}
	modelID, err := input.ReadLine(ctx, "Model: ", model.Model)
	if err != nil {
		return nil, err
	}

	gen := *cfg.GetGenerationConfig()
	temperature, err := readNumber(ctx, input, "Temperature (0-2): ", gen.Temperature, func(v float64) error {
		g := gen
		g.Temperature = v
		return g.Validate()
	})
	if err != nil {
		return nil, err
	}
	maxTokens, err := readNumber(ctx, input, "Max tokens (300-500): ", float64(gen.MaxTokens), func(v float64) error {
		if v != float64(int(v)) {
			return fmt.Errorf("must be a whole number")
		}
		g := gen
		g.MaxTokens = int(v)
		return g.Validate()
	})
	if err != nil {
		return nil, err
	}

	values := map[string]interface{}{
		config.ModelKey(name, "model"): strings.TrimSpace(modelID),
		"generation.temperature":       temperature,
		"generation.max_tokens":        int(maxTokens),
	}
	if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
		values[config.ModelKey(name, "base_url")] = baseURL
	}
	return values, nil
}

func readNumber(ctx context.Context, input *ui.Input, label string, current float64, check func(float64) error) (float64, error) {
	for {
		answer, err := input.ReadLine(ctx, label, strconv.FormatFloat(current, 'f', -1, 64))
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(answer), 64)
		if err == nil {
			err = check(v)
		}
		if err == nil {
			return v, nil
		}
		fmt.Fprintf(input.Writer(), "Invalid value: %v\n", err)
	}
}
