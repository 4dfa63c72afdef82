package ui

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/huimingz/commitflow/internal/commitmsg"
)

// ExecutionStats holds statistics about one generation
type ExecutionStats struct {
	StartTime        time.Time
	EndTime          time.Time
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Duration returns the execution duration
func (s *ExecutionStats) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// StreamPrinterOption is a functional option for StreamPrinter
type StreamPrinterOption func(*StreamPrinter)

// WithColor enables or disables color output
func WithColor(enabled bool) StreamPrinterOption {
	return func(p *StreamPrinter) {
		p.colorEnabled = enabled
	}
}

// WithVerbose enables or disables verbose mode
func WithVerbose(verbose bool) StreamPrinterOption {
	return func(p *StreamPrinter) {
		p.verbose = verbose
	}
}

// StreamPrinter writes progress and status lines to the terminal
type StreamPrinter struct {
	writer       io.Writer
	colorEnabled bool
	verbose      bool
}

// NewStreamPrinter creates a new StreamPrinter
func NewStreamPrinter(writer io.Writer, opts ...StreamPrinterOption) *StreamPrinter {
	p := &StreamPrinter{
		writer:       writer,
		colorEnabled: true,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *StreamPrinter) printf(attr color.Attribute, format string, args ...interface{}) error {
	if p.colorEnabled {
		_, err := color.New(attr).Fprintf(p.writer, format, args...)
		return err
	}
	_, err := fmt.Fprintf(p.writer, format, args...)
	return err
}

// PrintToken prints raw text without a trailing newline
func (p *StreamPrinter) PrintToken(token string) error {
	_, err := fmt.Fprint(p.writer, token)
	return err
}

// PrintState reports a generation state change. Idle and Validated are
// silent unless verbose is set.
func (p *StreamPrinter) PrintState(s commitmsg.State) error {
	switch s {
	case commitmsg.BuildingPrompt:
		return p.PrintProgress("Analyzing staged changes...")
	case commitmsg.AwaitingProvider:
		return p.PrintProgress("Generating commit message...")
	case commitmsg.FallbackApplied:
		return p.PrintWarning(fmt.Sprintf("Model returned no usable message, using %q", commitmsg.FallbackMessage))
	case commitmsg.Failed:
		return p.printf(color.FgRed, "✗ Generation failed\n")
	}
	if p.verbose {
		return p.printf(color.FgHiBlack, "· %s\n", s)
	}
	return nil
}

// PrintProgress prints a progress message
func (p *StreamPrinter) PrintProgress(message string) error {
	return p.printf(color.FgYellow, "⏳ %s\n", message)
}

// PrintInfo prints an info message
func (p *StreamPrinter) PrintInfo(message string) error {
	return p.printf(color.FgCyan, "ℹ️  %s\n", message)
}

// PrintSuccess prints a success message
func (p *StreamPrinter) PrintSuccess(message string) error {
	return p.printf(color.FgGreen, "✅ %s\n", message)
}

// PrintWarning prints a warning message
func (p *StreamPrinter) PrintWarning(message string) error {
	return p.printf(color.FgYellow, "⚠️  %s\n", message)
}

// PrintError prints an error message
func (p *StreamPrinter) PrintError(message string) error {
	return p.printf(color.FgRed, "❌ Error: %s\n", message)
}

// PrintStats prints token usage and elapsed time
func (p *StreamPrinter) PrintStats(stats *ExecutionStats) error {
	if stats == nil {
		return nil
	}

	return p.printf(color.FgHiBlack, "\n📊 Stats: %d tokens (prompt: %d, completion: %d) | Time: %s\n",
		stats.TotalTokens, stats.PromptTokens, stats.CompletionTokens, formatDuration(stats.Duration()))
}

// Newline prints a newline
func (p *StreamPrinter) Newline() error {
	_, err := fmt.Fprintln(p.writer)
	return err
}

// formatDuration formats a duration in a human-readable format
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
