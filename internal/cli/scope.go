package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/huimingz/commitflow/internal/commitmsg"
	"github.com/huimingz/commitflow/internal/ui"
)

var scopeCmd = &cobra.Command{
	Use:   "scope",
	Short: "Show the scope resolved for the staged changes",
	Long: `Show the scope that would be used for the staged changes and what each
heuristic contributed: the flow directory of the changed paths, the label
taken from the branch name and the categories found in the diff.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPreview(cmd, writeSignals)
	},
}

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the prompt that would be sent to the model",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPreview(cmd, func(out io.Writer, p *commitmsg.Preview) error {
			_, err := fmt.Fprintln(out, p.Prompt)
			return err
		})
	},
}

func init() {
	promptCmd.Flags().StringVarP(&commitContext, "context", "c", "", "Additional context for the model")
	promptCmd.Flags().StringVarP(&commitLanguage, "language", "l", "", "Output language (en, zh, ja, etc.)")
	rootCmd.AddCommand(scopeCmd)
	rootCmd.AddCommand(promptCmd)
}

// runPreview prepares the staged changes without calling a model and hands
// the result to show.
func runPreview(cmd *cobra.Command, show func(io.Writer, *commitmsg.Preview) error) error {
	ctx, stop := interruptContext(cmd.Context())
	defer stop()

	cfg, err := loadConfig(true)
	if err != nil {
		return err
	}
	executor, err := newExecutor()
	if err != nil {
		return err
	}
	rules, err := loadRules(ctx, cfg, executor)
	if err != nil {
		return err
	}

	svc := commitmsg.NewService(serviceOptions(cfg, executor, rules))
	return preview(ctx, svc, commitmsg.Request{
		Context:  commitContext,
		Language: cfg.GetLanguage(commitLanguage),
	}, cmd.OutOrStdout(), show)
}

func preview(ctx context.Context, svc *commitmsg.Service, req commitmsg.Request, out io.Writer, show func(io.Writer, *commitmsg.Preview) error) error {
	p, err := svc.Prepare(ctx, req)
	if err != nil {
		if errors.Is(err, commitmsg.ErrNoChanges) {
			return ui.NewStreamPrinter(out).PrintInfo("No staged changes found.")
		}
		return err
	}
	return show(out, p)
}

// writeSignals prints the resolved scope and each heuristic's signal.
func writeSignals(out io.Writer, p *commitmsg.Preview) error {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	dim := color.New(color.FgHiBlack)

	value := func(s string) string {
		if s == "" {
			return dim.Sprint("(none)")
		}
		return s
	}

	bold.Fprintf(out, "Scope: %s\n\n", value(p.Signals.Scope))
	cyan.Fprintf(out, "  Flow:    %s\n", value(p.Signals.Flow))
	cyan.Fprintf(out, "  Branch:  %s %s\n", value(p.Signals.Branch), dim.Sprintf("(%s)", value(p.Branch)))
	cyan.Fprintf(out, "  Content: %s\n", value(p.Signals.Content))

	if _, err := fmt.Fprintf(out, "\nFiles (%d):\n  %s\n", len(p.Signals.Files), strings.Join(p.Signals.Files, "\n  ")); err != nil {
		return err
	}
	if len(p.Unlisted) > 0 {
		_, err := dim.Fprintf(out, "\nStaged without a text diff (%d):\n  %s\n", len(p.Unlisted), strings.Join(p.Unlisted, "\n  "))
		return err
	}
	return nil
}

// stdinIsInteractive reports whether prompts can be shown.
func stdinIsInteractive() bool {
	fi, err := os.Stdin.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
