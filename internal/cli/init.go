package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/huimingz/commitflow/internal/config"
)

const defaultConfigTemplate = `# commitflow configuration

# Language of generated messages (en, zh, zh-tw, ja, ko, de, fr, es)
language: en

# Model to use, a key of the models section
default_model: openrouter

models:
  # OpenRouter (default endpoint https://openrouter.ai/api/v1)
  openrouter:
    provider: openrouter
    api_key: ${OPENROUTER_API_KEY}
    model: google/gemini-2.0-flash-exp:free
    # timeout: 60  # seconds

  # OpenAI
  # openai:
  #   provider: openai
  #   api_key: ${OPENAI_API_KEY}
  #   model: gpt-4o-mini

  # Deepseek
  # deepseek:
  #   provider: deepseek
  #   api_key: ${DEEPSEEK_API_KEY}
  #   model: deepseek-chat

  # Ollama (local)
  # ollama:
  #   provider: ollama
  #   model: llama3.2
  #   base_url: http://localhost:11434/v1

  # Google Gemini
  # gemini:
  #   provider: gemini
  #   api_key: ${GOOGLE_API_KEY}
  #   model: gemini-2.0-flash

  # xAI Grok
  # grok:
  #   provider: grok
  #   api_key: ${XAI_API_KEY}
  #   model: grok-beta

generation:
  temperature: 0.3
  max_tokens: 500    # 300 to 500
  diff_limit: 3000   # characters of diff sent to the model
  file_limit: 15     # changed paths listed in the prompt

scope:
  features_root: flows
  rules_file: .commitflow/scope.toml   # relative to the repository root
  max_categories: 2

retry:
  offer: true        # ask before retrying a transient provider failure
  max_offers: 3

ui:
  edit: true         # edit the message before committing
  tui: false         # use the full-screen editor
`

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file",
	Long: `Create a default configuration file (~/.commitflow.yaml, or the path given
with --config).

Edit the file to add your API key, or run 'commitflow set-key'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configFile
		if path == "" {
			var err error
			if path, err = config.DefaultPath(); err != nil {
				return err
			}
		}

		if err := config.WriteTemplate(path, defaultConfigTemplate, initForce); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "✅ Configuration file created: %s\n", filepath.Clean(path))
		fmt.Fprintln(out, "\nNext steps:")
		fmt.Fprintln(out, "  1. Set OPENROUTER_API_KEY or run 'commitflow set-key openrouter'")
		fmt.Fprintln(out, "  2. Stage your changes with 'git add'")
		fmt.Fprintln(out, "  3. Run 'commitflow commit'")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing config file")
	rootCmd.AddCommand(initCmd)
}
