package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
)

var (
	// ErrEmptyInput is returned when the user provides no input
	ErrEmptyInput = errors.New("empty input")

	// ErrInterrupted is returned when the user interrupts input with Ctrl+C
	ErrInterrupted = errors.New("input interrupted")

	// ErrTimeout is returned when input times out
	ErrTimeout = errors.New("input timeout")
)

// Input reads single answers from the user. On a terminal it uses readline
// so a current value can be edited in place; otherwise it reads plain lines
// and an empty line keeps the current value.
type Input struct {
	in      io.Reader
	out     io.Writer
	scanner *bufio.Scanner
}

// NewInput creates an Input reading from in and prompting on out.
func NewInput(in io.Reader, out io.Writer) *Input {
	return &Input{in: in, out: out, scanner: bufio.NewScanner(in)}
}

// Writer returns the output prompts are written to.
func (i *Input) Writer() io.Writer {
	return i.out
}

func (i *Input) terminal() bool {
	return i.in == os.Stdin && i.out == os.Stdout && readline.DefaultIsTerminal()
}

// ReadLine prompts with label and returns the answer. current is
// pre-filled on a terminal and returned for an empty line otherwise.
func (i *Input) ReadLine(ctx context.Context, label, current string) (string, error) {
	if err := ctxErr(ctx); err != nil {
		return "", err
	}

	if i.terminal() {
		rl, err := newReadline(label)
		if err == nil {
			defer rl.Close()
			line, err := rl.ReadlineWithDefault(current)
			return line, readlineErr(err)
		}
	}

	prompt := label
	if current != "" {
		prompt = fmt.Sprintf("%s[%s] ", label, current)
	}
	if _, err := fmt.Fprint(i.out, prompt); err != nil {
		return "", err
	}

	line, err := i.next()
	if err != nil {
		return "", err
	}
	if line == "" {
		return current, nil
	}
	return line, nil
}

// ReadSecret prompts with label without echoing the answer on a terminal.
// A blank answer yields ErrEmptyInput.
func (i *Input) ReadSecret(ctx context.Context, label string) (string, error) {
	if err := ctxErr(ctx); err != nil {
		return "", err
	}

	secret, err := i.readSecret(label)
	if err != nil {
		return "", err
	}

	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", ErrEmptyInput
	}
	return secret, nil
}

// Confirm asks a yes/no question on the same stream as the other prompts.
func (i *Input) Confirm(ctx context.Context, message string, defaultYes bool) (bool, error) {
	if err := ctxErr(ctx); err != nil {
		return false, err
	}
	return confirm(i.scanner, i.out, message, defaultYes)
}

// Select asks the user to pick one of options and returns its index.
func (i *Input) Select(ctx context.Context, message string, options []string, defaultIndex int) (int, error) {
	if err := ctxErr(ctx); err != nil {
		return -1, err
	}
	return selectOption(i.scanner, i.out, message, options, defaultIndex)
}

func (i *Input) readSecret(label string) (string, error) {
	if i.terminal() {
		rl, err := newReadline(label)
		if err == nil {
			defer rl.Close()
			b, err := rl.ReadPassword(label)
			return string(b), readlineErr(err)
		}
	}

	if _, err := fmt.Fprint(i.out, label); err != nil {
		return "", err
	}
	return i.next()
}

func (i *Input) next() (string, error) {
	if !i.scanner.Scan() {
		if err := i.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	// Some terminals deliver Ctrl+D inline.
	line, _, _ := strings.Cut(i.scanner.Text(), "\x04")
	return line, nil
}

func newReadline(prompt string) (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "^D",
	})
}

func readlineErr(err error) error {
	if errors.Is(err, readline.ErrInterrupt) {
		return ErrInterrupted
	}
	return err
}

func ctxErr(ctx context.Context) error {
	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.Canceled) {
			return ErrInterrupted
		}
		return ErrTimeout
	default:
		return nil
	}
}
