package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/huimingz/commitflow/internal/config"
	"github.com/huimingz/commitflow/internal/ui"
)

var setKeyCmd = &cobra.Command{
	Use:   "set-key [model] [key]",
	Short: "Store an API key for a configured model",
	Long: `Store an API key in the configuration file. The model defaults to
default_model; the key is read without echo when not given.

Examples:
  commitflow set-key
  commitflow set-key openrouter
  commitflow set-key openai sk-...`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := interruptContext(cmd.Context())
		defer stop()

		path, err := configPath()
		if err != nil {
			return err
		}
		cfg, err := loadConfig(true)
		if err != nil {
			return err
		}

		input := ui.NewInput(os.Stdin, cmd.OutOrStdout())
		if len(args) < 2 && !stdinIsInteractive() {
			return errors.New("no key given and stdin is not a terminal")
		}
		name, err := setKey(ctx, input, cfg, path, args)
		if err != nil {
			return err
		}
		return ui.NewStreamPrinter(cmd.OutOrStdout()).PrintSuccess(fmt.Sprintf("API key stored for %s in %s", name, path))
	},
}

func init() {
	rootCmd.AddCommand(setKeyCmd)
}

// setKey resolves the model from args or the configuration, reads the key
// when it was not passed, and writes it to path. It returns the model name.
func setKey(ctx context.Context, input *ui.Input, cfg *config.Config, path string, args []string) (string, error) {
	var name string
	if len(args) > 0 {
		name = args[0]
	} else {
		name = cfg.ResolveModelName(modelName)
	}
	if name == "" {
		return "", &config.FieldError{Field: "model", Reason: "is required, pass it as the first argument"}
	}
	if _, ok := cfg.Models[name]; !ok && len(cfg.Models) > 0 {
		return "", fmt.Errorf("model '%s' not found in configuration", name)
	}

	var key string
	if len(args) > 1 {
		key = args[1]
	} else {
		var err error
		key, err = input.ReadSecret(ctx, fmt.Sprintf("API key for %s: ", name))
		if err != nil {
			return "", err
		}
	}

	if err := config.SetAPIKey(path, name, key); err != nil {
		return "", err
	}
	return name, nil
}
