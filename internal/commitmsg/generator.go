package commitmsg

import (
	"context"
	"strings"

	"github.com/huimingz/commitflow/internal/config"
	"github.com/huimingz/commitflow/internal/llm"
	"github.com/huimingz/commitflow/internal/log"
	"github.com/huimingz/commitflow/pkg/conventional"
)

// FallbackMessage is returned when the provider answers without usable content.
const FallbackMessage = "chore: update"

// Completer sends one completion request to a chat model.
type Completer interface {
	Complete(ctx context.Context, req llm.CompletionRequest) (*llm.ChatResult, error)
}

// Options are the per-request model settings.
type Options struct {
	Model       string  // overrides the provider's configured model when set
	Temperature float64 // 0 to 2; out of range values fall back to the default
	MaxTokens   int     // clamped to 300..500; 0 selects the default
}

// DefaultOptions returns temperature 0.3 and 500 max tokens.
func DefaultOptions() Options {
	return Options{
		Temperature: config.DefaultTemperature,
		MaxTokens:   config.DefaultMaxTokens,
	}
}

// normalized applies defaults and clamps.
func (o Options) normalized() Options {
	if o.Temperature < 0 || o.Temperature > config.MaxTemperature {
		o.Temperature = config.DefaultTemperature
	}
	switch {
	case o.MaxTokens == 0:
		o.MaxTokens = config.DefaultMaxTokens
	case o.MaxTokens < config.MinMaxTokens:
		o.MaxTokens = config.MinMaxTokens
	case o.MaxTokens > config.MaxMaxTokens:
		o.MaxTokens = config.MaxMaxTokens
	}
	return o
}

// Completion is the outcome of one provider call.
type Completion struct {
	Message string
	Usage   llm.Usage
	State   State // Validated or FallbackApplied
}

// Generator turns a rendered prompt into a commit message with exactly one
// provider call. It never retries.
type Generator struct {
	completer Completer
	onState   StateFunc
}

// NewGenerator creates a Generator. onState may be nil.
func NewGenerator(c Completer, onState StateFunc) *Generator {
	return &Generator{completer: c, onState: onState}
}

// Generate returns the commit message for prompt.
func (g *Generator) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	c, err := g.Run(ctx, prompt, opts)
	if err != nil {
		return "", err
	}
	return c.Message, nil
}

// Run performs the provider call and reports usage alongside the message.
// A transport failure or an error payload becomes a *ProviderError. An
// answer without usable content yields FallbackMessage.
func (g *Generator) Run(ctx context.Context, prompt string, opts Options) (*Completion, error) {
	if g.completer == nil {
		return nil, &ConfigurationError{Field: "model", Reason: "has no completion provider"}
	}
	opts = opts.normalized()

	g.onState.emit(AwaitingProvider)
	res, err := g.completer.Complete(ctx, llm.CompletionRequest{
		Prompt:      prompt,
		Model:       opts.Model,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		g.finish(Failed)
		return nil, &ProviderError{Message: err.Error(), Err: err}
	}
	if res != nil && res.ErrorMessage != "" {
		g.finish(Failed)
		return nil, &ProviderError{Message: res.ErrorMessage, Err: res.Cause}
	}

	c := &Completion{Message: FallbackMessage, State: FallbackApplied}
	if res != nil {
		c.Usage = res.Usage
		if msg := Normalize(res.Content); msg != "" {
			c.Message = msg
			c.State = Validated
		}
	}
	if c.State == FallbackApplied {
		log.Debug("Provider returned no usable content, using %q", FallbackMessage)
	} else if _, ok := conventional.Parse(c.Message); !ok {
		log.Debug("Message does not follow the conventional format: %q", c.Message)
	}

	g.finish(c.State)
	return c, nil
}

func (g *Generator) finish(s State) {
	g.onState.emit(s)
	g.onState.emit(Idle)
}

// Normalize reduces a raw model answer to a single commit line. A code fence
// around the whole answer is removed, the first non-empty line is kept and a
// pair of backticks or quotes enclosing that line is dropped. It returns ""
// when nothing is left.
func Normalize(content string) string {
	content = unfence(strings.TrimSpace(content))
	for _, line := range strings.Split(content, "\n") {
		if line = unquote(strings.TrimSpace(line)); line != "" {
			return line
		}
	}
	return ""
}

// unfence strips a ``` fence wrapping text. The opening fence may sit on its
// own line with an optional info string, or share the line with the content.
func unfence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimSuffix(strings.TrimPrefix(text, "```"), "```")

	info, rest, multiline := strings.Cut(text, "\n")
	if multiline && !strings.ContainsAny(strings.TrimSpace(info), " :") {
		return rest
	}
	return text
}

func unquote(line string) string {
	for len(line) >= 2 {
		first, last := line[0], line[len(line)-1]
		if first != last || !strings.ContainsRune("`\"'", rune(first)) {
			break
		}
		line = strings.TrimSpace(line[1 : len(line)-1])
	}
	return line
}
