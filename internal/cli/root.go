package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/huimingz/commitflow/internal/log"
	"github.com/huimingz/commitflow/internal/ui"
)

var (
	// Global flags
	debugMode  bool
	configFile string
	modelName  string

	// Version info
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "commitflow",
	Short: "Conventional commit messages for your staged changes",
	Long: `commitflow reads the staged diff, works out a scope from the branch name,
the flow directory and the kind of change, and asks a language model for a
single-line conventional commit message you can edit before committing.

Use "commitflow [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugMode {
			log.SetDebugMode(true)
			log.Debug("Debug mode enabled")
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Errors are printed here rather than by cobra.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		_ = ui.NewStreamPrinter(os.Stderr).PrintError(err.Error())
		return err
	}
	return nil
}

// SetVersionInfo sets version information from build flags
func SetVersionInfo(v, commit, time string) {
	version = v
	gitCommit = commit
	buildTime = time
}

// GetVersionInfo returns version information
func GetVersionInfo() (string, string, string) {
	return version, gitCommit, buildTime
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug mode for verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file path (default: ./.commitflow.yaml or ~/.commitflow.yaml)")
	rootCmd.PersistentFlags().StringVarP(&modelName, "model", "m", "", "Model to use (overrides config)")
}
