package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// Confirm asks the user for a yes/no confirmation
// Default is no (returns false on empty input)
func Confirm(message string, input io.Reader, output io.Writer) (bool, error) {
	return ConfirmWithDefault(message, false, input, output)
}

// ConfirmWithDefault asks for a yes/no answer until one is given. An empty
// answer selects defaultYes.
func ConfirmWithDefault(message string, defaultYes bool, input io.Reader, output io.Writer) (bool, error) {
	return confirm(bufio.NewScanner(input), output, message, defaultYes)
}

func confirm(scanner *bufio.Scanner, output io.Writer, message string, defaultYes bool) (bool, error) {
	choices := "[y/N]"
	if defaultYes {
		choices = "[Y/n]"
	}

	for {
		if _, err := fmt.Fprintf(output, "%s %s: ", message, choices); err != nil {
			return false, err
		}

		answer, err := scanLine(scanner)
		if err != nil {
			return false, err
		}

		switch strings.ToLower(answer) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		if _, err := fmt.Fprintln(output, "Please enter 'y' or 'n'"); err != nil {
			return false, err
		}
	}
}

// SelectOption lists options numbered from 1 and returns the index chosen.
// An empty answer selects defaultIndex, which is reset to 0 when out of range.
func SelectOption(message string, options []string, defaultIndex int, input io.Reader, output io.Writer) (int, error) {
	return selectOption(bufio.NewScanner(input), output, message, options, defaultIndex)
}

func selectOption(scanner *bufio.Scanner, output io.Writer, message string, options []string, defaultIndex int) (int, error) {
	if len(options) == 0 {
		return -1, errors.New("no options to select from")
	}
	if defaultIndex < 0 || defaultIndex >= len(options) {
		defaultIndex = 0
	}

	bold := color.New(color.Bold)
	if _, err := bold.Fprintln(output, message); err != nil {
		return -1, err
	}
	for i, opt := range options {
		marker := " "
		if i == defaultIndex {
			marker = "*"
		}
		if _, err := fmt.Fprintf(output, " %s %d) %s\n", marker, i+1, opt); err != nil {
			return -1, err
		}
	}

	for {
		if _, err := fmt.Fprintf(output, "Select [%d]: ", defaultIndex+1); err != nil {
			return -1, err
		}

		answer, err := scanLine(scanner)
		if err != nil {
			return -1, err
		}
		if answer == "" {
			return defaultIndex, nil
		}

		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		if _, err := fmt.Fprintf(output, "Please enter a number between 1 and %d\n", len(options)); err != nil {
			return -1, err
		}
	}
}

// ShowCommitMessage displays a generated commit message and the scope it was
// generated for. An empty scope is not shown.
func ShowCommitMessage(message, scope string, output io.Writer) error {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	dim := color.New(color.FgHiBlack)
	rule := strings.Repeat("─", 40)

	if _, err := bold.Fprintln(output, "\n📝 Generated Commit Message:"); err != nil {
		return err
	}
	if scope != "" {
		if _, err := dim.Fprintf(output, "   scope: %s\n", scope); err != nil {
			return err
		}
	}
	if _, err := cyan.Fprintln(output, rule); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(output, message); err != nil {
		return err
	}
	_, err := cyan.Fprintln(output, rule)
	return err
}

func scanLine(scanner *bufio.Scanner) (string, error) {
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(scanner.Text()), nil
}
