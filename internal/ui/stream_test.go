package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huimingz/commitflow/internal/commitmsg"
)

func TestStreamPrinter_PrintToken(t *testing.T) {
	var buf bytes.Buffer
	printer := NewStreamPrinter(&buf)

	require.NoError(t, printer.PrintToken("feat: "))
	require.NoError(t, printer.PrintToken("add login"))
	assert.Equal(t, "feat: add login", buf.String())
}

func TestStreamPrinter_PrintState(t *testing.T) {
	tests := []struct {
		state   commitmsg.State
		verbose bool
		want    string
	}{
		{state: commitmsg.BuildingPrompt, want: "Analyzing staged changes"},
		{state: commitmsg.AwaitingProvider, want: "Generating commit message"},
		{state: commitmsg.FallbackApplied, want: `"chore: update"`},
		{state: commitmsg.Failed, want: "Generation failed"},
		{state: commitmsg.Validated, want: ""},
		{state: commitmsg.Idle, want: ""},
		{state: commitmsg.Validated, verbose: true, want: "validated"},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			var buf bytes.Buffer
			printer := NewStreamPrinter(&buf, WithColor(false), WithVerbose(tt.verbose))

			require.NoError(t, printer.PrintState(tt.state))
			if tt.want == "" {
				assert.Empty(t, buf.String())
				return
			}
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestStreamPrinter_Messages(t *testing.T) {
	var buf bytes.Buffer
	printer := NewStreamPrinter(&buf, WithColor(false))

	require.NoError(t, printer.PrintInfo("No staged changes found"))
	require.NoError(t, printer.PrintSuccess("Committed"))
	require.NoError(t, printer.PrintWarning("careful"))
	require.NoError(t, printer.PrintError("something went wrong"))

	out := buf.String()
	assert.Contains(t, out, "No staged changes found\n")
	assert.Contains(t, out, "Committed\n")
	assert.Contains(t, out, "careful\n")
	assert.Contains(t, out, "Error: something went wrong\n")
}

func TestExecutionStats(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	stats := &ExecutionStats{
		StartTime:   start,
		EndTime:     start.Add(2 * time.Second),
		TotalTokens: 150,
	}

	assert.Equal(t, 2*time.Second, stats.Duration())
}

func TestStreamPrinter_PrintStats(t *testing.T) {
	var buf bytes.Buffer
	printer := NewStreamPrinter(&buf, WithColor(false))
	start := time.Now()

	require.NoError(t, printer.PrintStats(&ExecutionStats{
		StartTime:        start,
		EndTime:          start.Add(1500 * time.Millisecond),
		PromptTokens:     100,
		CompletionTokens: 50,
		TotalTokens:      150,
	}))

	assert.Contains(t, buf.String(), "150 tokens (prompt: 100, completion: 50)")
	assert.Contains(t, buf.String(), "1.50s")

	buf.Reset()
	require.NoError(t, printer.PrintStats(nil))
	assert.Empty(t, buf.String())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "250ms", formatDuration(250*time.Millisecond))
	assert.Equal(t, "3.00s", formatDuration(3*time.Second))
}

func TestStreamPrinterOptions(t *testing.T) {
	var buf bytes.Buffer

	assert.True(t, NewStreamPrinter(&buf).colorEnabled)
	assert.False(t, NewStreamPrinter(&buf, WithColor(false)).colorEnabled)
	assert.True(t, NewStreamPrinter(&buf, WithVerbose(true)).verbose)
}

func TestStreamPrinter_Newline(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewStreamPrinter(&buf).Newline())
	assert.Equal(t, "\n", buf.String())
}
