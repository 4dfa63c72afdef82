package llm

import (
	"context"
	"net/http"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/huimingz/commitflow/internal/config"
)

// Default endpoints of the OpenAI-compatible providers.
const (
	DeepseekDefaultBaseURL   = "https://api.deepseek.com/v1"
	OllamaDefaultBaseURL     = "http://localhost:11434/v1"
	GrokDefaultBaseURL       = "https://api.x.ai/v1"
	OpenRouterDefaultBaseURL = "https://openrouter.ai/api/v1"

	// OpenRouterDefaultModel is used when an openrouter entry names no model.
	OpenRouterDefaultModel = "google/gemini-2.0-flash-exp:free"
)

// compatibleDefaults fills in what a provider entry may leave out.
type compatibleDefaults struct {
	baseURL string
	model   string
	apiKey  string
}

var compatibleProviders = map[string]compatibleDefaults{
	"openai":     {},
	"deepseek":   {baseURL: DeepseekDefaultBaseURL},
	"ollama":     {baseURL: OllamaDefaultBaseURL, apiKey: "ollama"}, // no key needed, the client wants one
	"grok":       {baseURL: GrokDefaultBaseURL},
	"openrouter": {baseURL: OpenRouterDefaultBaseURL, model: OpenRouterDefaultModel},
}

// CompatibleProvider talks to any endpoint implementing the OpenAI chat
// completions API.
type CompatibleProvider struct {
	name string
	cfg  config.ModelConfig
}

// NewCompatibleProvider creates a provider for name, applying its defaults to
// the fields cfg leaves empty.
func NewCompatibleProvider(name string, cfg config.ModelConfig) *CompatibleProvider {
	d := compatibleProviders[name]
	if cfg.BaseURL == "" {
		cfg.BaseURL = d.baseURL
	}
	if cfg.Model == "" {
		cfg.Model = d.model
	}
	if cfg.APIKey == "" {
		cfg.APIKey = d.apiKey
	}
	return &CompatibleProvider{name: name, cfg: cfg}
}

// Name returns the provider name
func (p *CompatibleProvider) Name() string {
	return p.name
}

// GetConfig returns the model configuration
func (p *CompatibleProvider) GetConfig() config.ModelConfig {
	return p.cfg
}

// CreateChatModel creates an Eino ChatModel backed by the OpenAI client
func (p *CompatibleProvider) CreateChatModel(ctx context.Context) (model.ChatModel, error) {
	cfg := &openai.ChatModelConfig{
		APIKey:     p.cfg.APIKey,
		Model:      p.cfg.Model,
		BaseURL:    p.cfg.BaseURL,
		HTTPClient: &http.Client{Transport: newErrorBodyTransport(nil)},
	}

	return openai.NewChatModel(ctx, cfg)
}
