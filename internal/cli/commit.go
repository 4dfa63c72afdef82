package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/huimingz/commitflow/internal/commitmsg"
	"github.com/huimingz/commitflow/internal/config"
	"github.com/huimingz/commitflow/internal/llm"
	"github.com/huimingz/commitflow/internal/log"
	"github.com/huimingz/commitflow/internal/ui"
)

var (
	commitContext  string
	commitLanguage string
	commitAutoYes  bool
	commitNoEdit   bool
	commitDryRun   bool
	commitTUI      bool
)

var commitCmd = &cobra.Command{
	Use:   "commit",
	Short: "Generate a commit message and commit the staged changes",
	Long: `Generate a conventional commit message for the staged changes.

This command will:
1. Read the staged changes (git diff --cached) and the current branch
2. Work out a scope from the flow directory, branch name and kind of change
3. Ask the model for a single-line message in "type(scope): subject" form
4. Let you edit the message and confirm before committing

Examples:
  commitflow commit
  commitflow commit -c "users reported a crash on logout"
  commitflow commit --language ja
  commitflow commit -m openrouter --tui
  commitflow commit --dry-run`,
	Args: cobra.NoArgs,
	RunE: runCommit,
}

func init() {
	commitCmd.Flags().StringVarP(&commitContext, "context", "c", "", "Additional context for the model")
	commitCmd.Flags().StringVarP(&commitLanguage, "language", "l", "", "Output language (en, zh, ja, etc.)")
	commitCmd.Flags().BoolVarP(&commitAutoYes, "yes", "y", false, "Commit without editing or confirming")
	commitCmd.Flags().BoolVar(&commitNoEdit, "no-edit", false, "Skip the edit step")
	commitCmd.Flags().BoolVar(&commitDryRun, "dry-run", false, "Show the message without committing")
	commitCmd.Flags().BoolVar(&commitTUI, "tui", false, "Edit the message in the full-screen editor")
	rootCmd.AddCommand(commitCmd)
}

func runCommit(cmd *cobra.Command, args []string) error {
	ctx, stop := interruptContext(cmd.Context())
	defer stop()

	cfg, err := loadConfig(false)
	if err != nil {
		return err
	}

	completer, _, err := newCompleter(ctx, cfg)
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

	printer := ui.NewStreamPrinter(os.Stdout, ui.WithVerbose(debugMode))
	input := ui.NewInput(os.Stdin, os.Stdout)

	opts := serviceOptions(cfg, executor, rules)
	opts.Completer = completer
	opts.OnState = func(s commitmsg.State) { _ = printer.PrintState(s) }

	language := cfg.GetLanguage(commitLanguage)
	log.Debug("Using language: %s", language)

	flow := &commitFlow{
		service: commitmsg.NewService(opts),
		request: commitmsg.Request{Context: commitContext, Language: language},
		input:   input,
		editor:  chooseEditor(cfg.GetUIConfig(), input),
		printer: printer,
		tree:    executor,
		retry:   cfg.GetRetryConfig(),
		autoYes: commitAutoYes,
		dryRun:  commitDryRun,
	}
	return flow.run(ctx)
}

// chooseEditor returns the editor for the review step, nil when editing is
// switched off.
func chooseEditor(uiCfg *config.UIConfig, input *ui.Input) ui.MessageEditor {
	if commitNoEdit || commitAutoYes || !uiCfg.EditEnabled() {
		return nil
	}
	if commitTUI || uiCfg.TUI {
		return ui.NewTUIEditor(nil, nil)
	}
	return ui.NewLineEditor(input)
}

// commitService is the part of commitmsg.Service the flow drives.
type commitService interface {
	Generate(ctx context.Context, req commitmsg.Request) (*commitmsg.Result, error)
	Commit(ctx context.Context, message string) error
}

// workingTree reports changes that are not staged yet.
type workingTree interface {
	Status(ctx context.Context) (string, error)
}

// commitFlow runs generate, show, edit, confirm and commit.
type commitFlow struct {
	service commitService
	request commitmsg.Request
	input   *ui.Input
	editor  ui.MessageEditor // nil skips editing
	printer *ui.StreamPrinter
	tree    workingTree // optional, lists unstaged changes when nothing is staged
	retry   *config.RetryConfig
	autoYes bool
	dryRun  bool
}

func (f *commitFlow) run(ctx context.Context) error {
	// kept is the last reviewed message. It is reused when a regeneration
	// fails so the user does not lose an edit.
	var kept *commitmsg.Result

	for {
		res, err := f.generate(ctx)
		switch {
		case errors.Is(err, commitmsg.ErrNoChanges):
			_ = f.printer.PrintInfo("No staged changes found.")
			f.showUnstaged(ctx)
			fmt.Fprintln(f.input.Writer(), "\nTo stage changes, use:")
			fmt.Fprintln(f.input.Writer(), "  git add <file>")
			fmt.Fprintln(f.input.Writer(), "  git add -A")
			return nil
		case errors.Is(err, commitmsg.ErrInFlight):
			_ = f.printer.PrintWarning("A commit message is already being generated")
			return nil
		case err != nil && kept != nil:
			_ = f.printer.PrintWarning(fmt.Sprintf("Generation failed (%v), keeping your previous message", err))
			res = kept
		case err != nil:
			return err
		}

		message, again, err := f.review(ctx, res)
		if err != nil || !again {
			return err
		}
		kept = &commitmsg.Result{Message: message, Scope: res.Scope, Signals: res.Signals}
	}
}

// showUnstaged lists the working tree changes that could be staged.
func (f *commitFlow) showUnstaged(ctx context.Context) {
	if f.tree == nil {
		return
	}
	status, err := f.tree.Status(ctx)
	if err != nil {
		log.Debug("Failed to read git status: %v", err)
		return
	}
	if status == "" {
		return
	}
	fmt.Fprintf(f.input.Writer(), "\nChanges not staged for commit:\n  %s\n", strings.ReplaceAll(status, "\n", "\n  "))
}

// generate calls the service, offering the user another attempt after a
// transient provider failure.
func (f *commitFlow) generate(ctx context.Context) (*commitmsg.Result, error) {
	for offers := 0; ; offers++ {
		res, err := f.service.Generate(ctx, f.request)
		if err == nil {
			return res, nil
		}
		if !f.canOfferRetry(err, offers) {
			return nil, err
		}

		log.Debug("Provider error classified as %s", llm.ClassifyError(err))
		_ = f.printer.PrintWarning(fmt.Sprintf("Generation failed: %v", err))
		retry, cerr := f.input.Confirm(ctx, "Retry?", true)
		if cerr != nil {
			return nil, cerr
		}
		if !retry {
			return nil, err
		}
	}
}

func (f *commitFlow) canOfferRetry(err error, offers int) bool {
	var perr *commitmsg.ProviderError
	if !errors.As(err, &perr) || f.autoYes {
		return false
	}
	if f.retry == nil || !f.retry.Enabled() || offers >= f.retry.MaxOffers {
		return false
	}
	return llm.IsRetryable(err)
}

// review shows the message, lets the user edit and confirm it, and commits.
// again is set when the user asks for a new message instead.
func (f *commitFlow) review(ctx context.Context, res *commitmsg.Result) (message string, again bool, err error) {
	out := f.input.Writer()
	if err := ui.ShowCommitMessage(res.Message, res.Scope, out); err != nil {
		return "", false, err
	}
	if res.Duration > 0 {
		now := time.Now()
		_ = f.printer.PrintStats(&ui.ExecutionStats{
			StartTime:        now.Add(-res.Duration),
			EndTime:          now,
			PromptTokens:     res.Usage.PromptTokens,
			CompletionTokens: res.Usage.CompletionTokens,
			TotalTokens:      res.Usage.TotalTokens,
		})
	}

	if f.dryRun {
		_ = f.printer.PrintInfo("Dry run, nothing committed.")
		return "", false, nil
	}

	message = res.Message
	if f.editor != nil {
		message, err = f.editor.Edit(ctx, message)
		if errors.Is(err, ui.ErrInterrupted) {
			_ = f.printer.PrintInfo("Commit cancelled.")
			return "", false, nil
		}
		if err != nil {
			return "", false, fmt.Errorf("failed to edit message: %w", err)
		}
	}

	if !f.autoYes {
		ok, err := f.input.Confirm(ctx, "\nDo you want to commit with this message?", true)
		if err != nil {
			return "", false, err
		}
		if !ok {
			again, err := f.input.Confirm(ctx, "Generate a new message?", false)
			if err != nil {
				return "", false, err
			}
			if !again {
				_ = f.printer.PrintInfo("Commit cancelled.")
			}
			return message, again, nil
		}
	}

	if err := f.service.Commit(ctx, message); err != nil {
		return "", false, err
	}
	_ = f.printer.PrintSuccess("Commit created successfully!")
	return message, false, nil
}
