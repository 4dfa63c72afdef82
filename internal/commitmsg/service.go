package commitmsg

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/huimingz/commitflow/internal/llm"
	"github.com/huimingz/commitflow/internal/log"
	"github.com/huimingz/commitflow/internal/prompt"
	"github.com/huimingz/commitflow/internal/scope"
	"github.com/huimingz/commitflow/pkg/lang"
)

// SourceControl is the repository the message is generated for.
type SourceControl interface {
	// StagedDiff returns the staged changes, "" when nothing is staged.
	StagedDiff(ctx context.Context) (string, error)

	// CurrentBranch returns the checked-out branch name.
	CurrentBranch(ctx context.Context) (string, error)

	// Commit records the staged changes with message.
	Commit(ctx context.Context, message string) error
}

// FileLister is implemented by sources that can list staged paths without
// reading the diff.
type FileLister interface {
	StagedFiles(ctx context.Context) ([]string, error)
}

// GenerateCommitMessage resolves the scope of diffText, builds the prompt and
// asks completer for a message. An empty diff yields ErrNoChanges.
func GenerateCommitMessage(ctx context.Context, completer Completer, diffText, branch string, opts Options) (string, error) {
	if strings.TrimSpace(diffText) == "" {
		return "", ErrNoChanges
	}
	if completer == nil {
		return "", &ConfigurationError{Field: "model", Reason: "has no completion provider"}
	}

	signals := scope.NewResolver(nil).Explain(diffText, branch)
	text := prompt.Build(prompt.Data{
		Scope: signals.Scope,
		Diff:  diffText,
		Files: signals.Files,
	})
	return NewGenerator(completer, nil).Generate(ctx, text, opts)
}

// Request carries the per-invocation inputs of Service.Generate.
type Request struct {
	Context  string // optional hint from the user
	Language string // output language code, "" or "en" adds no instruction
}

// Preview is everything derived from the repository before the provider is
// called.
type Preview struct {
	Diff    string
	Branch  string
	Signals scope.Signals
	Prompt  string

	// Unlisted are staged paths with no file header in the diff, such as
	// binary files. They take no part in scope resolution.
	Unlisted []string
}

// Result is a generated message and how it was produced.
type Result struct {
	Message  string
	Scope    string
	Signals  scope.Signals
	Usage    llm.Usage
	State    State
	Duration time.Duration
}

// ServiceOptions configures a Service.
type ServiceOptions struct {
	Source    SourceControl
	Completer Completer
	Resolver  *scope.Resolver // nil selects the default rules
	Options   Options
	DiffLimit int // characters of diff in the prompt, 0 for the default
	FileLimit int // paths listed in the prompt, 0 for the default
	OnState   StateFunc
}

// Service runs the whole flow from staged diff to message. At most one
// generation runs at a time; overlapping calls get ErrInFlight.
type Service struct {
	opts     ServiceOptions
	resolver *scope.Resolver
	inFlight atomic.Bool
}

// NewService creates a Service.
func NewService(opts ServiceOptions) *Service {
	resolver := opts.Resolver
	if resolver == nil {
		resolver = scope.NewResolver(nil)
	}
	return &Service{opts: opts, resolver: resolver}
}

// Prepare reads the staged diff and branch, resolves the scope and renders
// the prompt. It makes no provider call.
func (s *Service) Prepare(ctx context.Context, req Request) (*Preview, error) {
	if s.opts.Source == nil {
		return nil, fmt.Errorf("source control is not configured")
	}

	diffText, err := s.opts.Source.StagedDiff(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get staged changes: %w", err)
	}
	if strings.TrimSpace(diffText) == "" {
		return nil, ErrNoChanges
	}

	branch := scope.BranchName(ctx, s.opts.Source)
	signals := s.resolver.Explain(diffText, branch)

	files := signals.Files
	if s.opts.FileLimit > 0 && len(files) > s.opts.FileLimit {
		files = files[:s.opts.FileLimit]
	}

	var language string
	if l := lang.Parse(req.Language); l != lang.English {
		language = l.PromptName()
	}

	return &Preview{
		Diff:     diffText,
		Branch:   branch,
		Signals:  signals,
		Unlisted: s.unlisted(ctx, signals.Files),
		Prompt: prompt.Build(prompt.Data{
			Scope:     signals.Scope,
			Diff:      diffText,
			Files:     files,
			Language:  language,
			Context:   req.Context,
			DiffLimit: s.opts.DiffLimit,
		}),
	}, nil
}

// unlisted returns the staged paths the diff headers did not name. Sources
// that cannot list files, and listing failures, yield nil.
func (s *Service) unlisted(ctx context.Context, parsed []string) []string {
	lister, ok := s.opts.Source.(FileLister)
	if !ok {
		return nil
	}
	staged, err := lister.StagedFiles(ctx)
	if err != nil {
		log.Debug("Failed to list staged files: %v", err)
		return nil
	}

	seen := make(map[string]bool, len(parsed))
	for _, p := range parsed {
		seen[p] = true
	}
	var missing []string
	for _, p := range staged {
		if !seen[p] {
			missing = append(missing, p)
		}
	}
	if len(missing) > 0 {
		log.Debug("Staged files without a text diff: %v", missing)
	}
	return missing
}

// Generate produces a commit message for the staged changes. A missing
// completer is reported before the repository is read.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		log.Debug("Generation requested while another is running; ignored")
		return nil, ErrInFlight
	}
	defer s.inFlight.Store(false)

	if s.opts.Completer == nil {
		return nil, &ConfigurationError{Field: "model", Reason: "has no completion provider"}
	}

	start := time.Now()
	s.opts.OnState.emit(BuildingPrompt)
	p, err := s.Prepare(ctx, req)
	if err != nil {
		s.opts.OnState.emit(Idle)
		return nil, err
	}
	log.Debug("Scope resolved: %q (flow=%q branch=%q content=%q)",
		p.Signals.Scope, p.Signals.Flow, p.Signals.Branch, p.Signals.Content)

	c, err := NewGenerator(s.opts.Completer, s.opts.OnState).Run(ctx, p.Prompt, s.opts.Options)
	if err != nil {
		return nil, err
	}

	return &Result{
		Message:  c.Message,
		Scope:    p.Signals.Scope,
		Signals:  p.Signals,
		Usage:    c.Usage,
		State:    c.State,
		Duration: time.Since(start),
	}, nil
}

// Commit records the staged changes with message after trimming it.
// A blank message is rejected with ErrEmptyMessage.
func (s *Service) Commit(ctx context.Context, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyMessage
	}
	if err := s.opts.Source.Commit(ctx, message); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}
