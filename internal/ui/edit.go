package ui

import (
	"context"
	"strings"

	"github.com/fatih/color"
)

// EmptyMessageWarning is shown when an edited message is blank.
const EmptyMessageWarning = "Message cannot be empty"

// MessageEditor lets the user revise a generated commit message.
type MessageEditor interface {
	Edit(ctx context.Context, message string) (string, error)
}

// LineEditor edits the message on a single line, pre-filled with the
// generated text.
type LineEditor struct {
	input *Input
}

// NewLineEditor creates a LineEditor reading from input.
func NewLineEditor(input *Input) *LineEditor {
	return &LineEditor{input: input}
}

// Edit returns the revised message, trimmed. Blank answers are rejected and
// the user is asked again.
func (e *LineEditor) Edit(ctx context.Context, message string) (string, error) {
	red := color.New(color.FgRed)
	for {
		line, err := e.input.ReadLine(ctx, "✏️  ", message)
		if err != nil {
			return "", err
		}
		if edited := strings.TrimSpace(line); edited != "" {
			return edited, nil
		}
		if _, err := red.Fprintln(e.input.Writer(), EmptyMessageWarning); err != nil {
			return "", err
		}
	}
}
