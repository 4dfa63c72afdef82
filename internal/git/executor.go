package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// ErrDetachedHead is returned by CurrentBranch when HEAD names no branch.
var ErrDetachedHead = errors.New("HEAD is not on a branch")

// Executor defines the interface for git command execution
type Executor interface {
	// StagedDiff returns the unified diff of staged changes, "" when nothing is staged
	StagedDiff(ctx context.Context) (string, error)

	// StagedFiles returns the paths of staged files
	StagedFiles(ctx context.Context) ([]string, error)

	// Status returns the short git status
	Status(ctx context.Context) (string, error)

	// CurrentBranch returns the checked-out branch name
	CurrentBranch(ctx context.Context) (string, error)

	// Commit executes a git commit with the given message
	Commit(ctx context.Context, message string) error

	// Root returns the top-level directory of the working tree
	Root(ctx context.Context) (string, error)
}

// DefaultExecutor is the default implementation of Executor
type DefaultExecutor struct {
	workDir string
}

// NewExecutor creates a new DefaultExecutor
func NewExecutor(workDir string) *DefaultExecutor {
	return &DefaultExecutor{workDir: workDir}
}

// runGit runs a git command and returns the trimmed output
func (e *DefaultExecutor) runGit(ctx context.Context, args ...string) (string, error) {
	out, err := e.run(ctx, nil, args...)
	return strings.TrimSpace(out), err
}

// run runs a git command with stdin and returns its raw output
func (e *DefaultExecutor) run(ctx context.Context, stdin io.Reader, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = e.workDir
	cmd.Stdin = stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s failed: %w\n%s", strings.Join(args, " "), err, stderr.String())
	}

	return stdout.String(), nil
}

// StagedDiff returns the diff of staged changes
func (e *DefaultExecutor) StagedDiff(ctx context.Context) (string, error) {
	return e.runGit(ctx, "diff", "--cached", "--no-color", "--no-ext-diff")
}

// StagedFiles returns the paths of staged files in git's order, unquoted
func (e *DefaultExecutor) StagedFiles(ctx context.Context) ([]string, error) {
	out, err := e.run(ctx, nil, "diff", "--cached", "--name-only", "-z")
	if err != nil {
		return nil, err
	}
	out = strings.TrimRight(out, "\x00")
	if out == "" {
		return nil, nil
	}
	return strings.Split(out, "\x00"), nil
}

// Status returns the short git status. The leading status columns are kept.
func (e *DefaultExecutor) Status(ctx context.Context) (string, error) {
	out, err := e.run(ctx, nil, "status", "--short")
	return strings.TrimRight(out, "\n"), err
}

// CurrentBranch returns the current branch name. It also works before the
// first commit, when HEAD points at an unborn branch.
func (e *DefaultExecutor) CurrentBranch(ctx context.Context) (string, error) {
	out, err := e.runGit(ctx, "symbolic-ref", "--short", "-q", "HEAD")
	if err != nil {
		if _, revErr := e.runGit(ctx, "rev-parse", "--verify", "-q", "HEAD"); revErr == nil {
			return "", ErrDetachedHead
		}
		return "", err
	}
	return out, nil
}

// Commit executes a git commit with the given message, passed on stdin
func (e *DefaultExecutor) Commit(ctx context.Context, message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("commit message cannot be empty")
	}
	_, err := e.run(ctx, strings.NewReader(message), "commit", "-F", "-")
	return err
}

// Root returns the top-level directory of the working tree
func (e *DefaultExecutor) Root(ctx context.Context) (string, error) {
	return e.runGit(ctx, "rev-parse", "--show-toplevel")
}
