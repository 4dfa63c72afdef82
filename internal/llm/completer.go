package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/huimingz/commitflow/internal/log"
)

// CompletionRequest is a single-turn chat completion.
type CompletionRequest struct {
	System      string // optional system instruction
	Prompt      string // user message
	Model       string // overrides the provider's model when set
	Temperature float64
	MaxTokens   int
}

// Usage is the token accounting reported by the provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ChatResult is what the provider returned: either content or an error
// payload it reported in place of content.
type ChatResult struct {
	Content      string
	ErrorMessage string
	Cause        error // the client error ErrorMessage was taken from, if any
	Usage        Usage
}

// finishReasonFiltered is reported when the provider refuses to answer.
const finishReasonFiltered = "content_filter"

// ChatCompleter sends completion requests through an Eino chat model.
type ChatCompleter struct {
	provider  Provider
	chatModel model.ChatModel
	timeout   time.Duration
}

// NewChatCompleter creates the provider's chat model. No request is made.
func NewChatCompleter(ctx context.Context, p Provider) (*ChatCompleter, error) {
	if p == nil {
		return nil, fmt.Errorf("LLM provider is not configured")
	}
	chatModel, err := p.CreateChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is nil (provider: %s)", p.Name())
	}
	return NewChatCompleterWithModel(p, chatModel), nil
}

// NewChatCompleterWithModel wraps an existing chat model.
func NewChatCompleterWithModel(p Provider, chatModel model.ChatModel) *ChatCompleter {
	c := &ChatCompleter{provider: p, chatModel: chatModel}
	if p != nil {
		c.timeout = time.Duration(p.GetConfig().Timeout) * time.Second
	}
	return c
}

// Complete performs exactly one Generate call. An error payload from the
// provider is returned in ChatResult.ErrorMessage; other failures are
// returned as errors.
func (c *ChatCompleter) Complete(ctx context.Context, req CompletionRequest) (*ChatResult, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var messages []*schema.Message
	if req.System != "" {
		messages = append(messages, &schema.Message{Role: schema.System, Content: req.System})
	}
	messages = append(messages, &schema.Message{Role: schema.User, Content: req.Prompt})

	var opts []model.Option
	if req.Model != "" {
		opts = append(opts, model.WithModel(req.Model))
	}
	opts = append(opts, model.WithTemperature(float32(req.Temperature)))
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}

	providerName, modelName := c.describe(req)
	log.DebugRequest(providerName, modelName, req)

	start := time.Now()
	msg, err := c.chatModel.Generate(ctx, messages, opts...)
	log.DebugDuration("Completion", time.Since(start))
	if err != nil {
		log.DebugResponse("", err)
		if message, ok := providerMessage(err); ok {
			return &ChatResult{ErrorMessage: message, Cause: err}, nil
		}
		if strings.Contains(err.Error(), errEmptyChoices) {
			return &ChatResult{}, nil
		}
		return nil, err
	}

	result := &ChatResult{}
	if msg == nil {
		return result, nil
	}
	result.Content = msg.Content

	if msg.ResponseMeta != nil {
		if u := msg.ResponseMeta.Usage; u != nil {
			result.Usage = Usage{
				PromptTokens:     u.PromptTokens,
				CompletionTokens: u.CompletionTokens,
				TotalTokens:      u.TotalTokens,
			}
			log.DebugTokenUsage(u.PromptTokens, u.CompletionTokens, u.TotalTokens)
		}
		if msg.ResponseMeta.FinishReason == finishReasonFiltered && result.Content == "" {
			result.ErrorMessage = "response blocked by the provider's content filter"
		}
	}

	log.DebugResponse(result.Content, nil)
	return result, nil
}

func (c *ChatCompleter) describe(req CompletionRequest) (string, string) {
	if c.provider == nil {
		return "unknown", req.Model
	}
	m := req.Model
	if m == "" {
		m = c.provider.GetConfig().Model
	}
	return c.provider.Name(), m
}
