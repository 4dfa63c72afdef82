package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  ModelConfig
		wantErr bool
		field   string
	}{
		{
			name: "valid openai config",
			config: ModelConfig{
				Provider: "openai",
				APIKey:   "sk-xxx",
				Model:    "gpt-4o",
			},
		},
		{
			name: "valid openrouter config",
			config: ModelConfig{
				Provider: "openrouter",
				APIKey:   "sk-or-xxx",
				Model:    "google/gemini-2.0-flash-exp:free",
			},
		},
		{
			name: "valid ollama config without api key",
			config: ModelConfig{
				Provider: "ollama",
				Model:    "qwen2.5:14b",
				BaseURL:  "http://localhost:11434/v1",
			},
		},
		{
			name:    "missing provider",
			config:  ModelConfig{APIKey: "sk-xxx", Model: "gpt-4o"},
			wantErr: true,
			field:   "provider",
		},
		{
			name:    "invalid provider",
			config:  ModelConfig{Provider: "invalid", APIKey: "sk-xxx", Model: "gpt-4o"},
			wantErr: true,
			field:   "provider",
		},
		{
			name:    "missing model",
			config:  ModelConfig{Provider: "openai", APIKey: "sk-xxx"},
			wantErr: true,
			field:   "model",
		},
		{
			name:    "missing api key for openai",
			config:  ModelConfig{Provider: "openai", Model: "gpt-4o"},
			wantErr: true,
			field:   "api_key",
		},
		{
			name:    "negative timeout",
			config:  ModelConfig{Provider: "openai", APIKey: "sk", Model: "gpt-4o", Timeout: -1},
			wantErr: true,
			field:   "timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestGenerationConfig_Validate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   GenerationConfig
		field string
	}{
		{name: "defaults", cfg: *DefaultGenerationConfig()},
		{name: "unset max tokens", cfg: GenerationConfig{Temperature: 1}},
		{name: "temperature too high", cfg: GenerationConfig{Temperature: 2.5}, field: "temperature"},
		{name: "negative temperature", cfg: GenerationConfig{Temperature: -0.1}, field: "temperature"},
		{name: "max tokens too low", cfg: GenerationConfig{MaxTokens: 100}, field: "max_tokens"},
		{name: "max tokens too high", cfg: GenerationConfig{MaxTokens: 4096}, field: "max_tokens"},
		{name: "negative diff limit", cfg: GenerationConfig{DiffLimit: -1}, field: "diff_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var fe *FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
		})
	}
}

func TestConfig_GetModel(t *testing.T) {
	cfg := &Config{
		DefaultModel: "deepseek",
		Models: map[string]ModelConfig{
			"deepseek": {Provider: "deepseek", APIKey: "sk-deepseek", Model: "deepseek-chat"},
			"gpt4":     {Provider: "openai", APIKey: "sk-openai", Model: "gpt-4o"},
			"nokey":    {Provider: "openrouter", Model: "google/gemini-2.0-flash-exp:free"},
		},
	}

	t.Run("get existing model", func(t *testing.T) {
		model, err := cfg.GetModel("gpt4")
		require.NoError(t, err)
		assert.Equal(t, "openai", model.Provider)
		assert.Equal(t, "gpt-4o", model.Model)
	})

	t.Run("get default model when empty name", func(t *testing.T) {
		model, err := cfg.GetModel("")
		require.NoError(t, err)
		assert.Equal(t, "deepseek-chat", model.Model)
	})

	t.Run("get non-existing model", func(t *testing.T) {
		_, err := cfg.GetModel("nonexistent")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("env variable overrides default", func(t *testing.T) {
		t.Setenv(EnvModel, "gpt4")
		model, err := cfg.GetModel("")
		require.NoError(t, err)
		assert.Equal(t, "openai", model.Provider)
	})

	t.Run("explicit name overrides env", func(t *testing.T) {
		t.Setenv(EnvModel, "gpt4")
		model, err := cfg.GetModel("deepseek")
		require.NoError(t, err)
		assert.Equal(t, "deepseek", model.Provider)
	})

	t.Run("api key from environment", func(t *testing.T) {
		t.Setenv(EnvAPIKey, "sk-from-env")
		model, err := cfg.GetModel("nokey")
		require.NoError(t, err)
		assert.Equal(t, "sk-from-env", model.APIKey)
	})

	t.Run("no model anywhere", func(t *testing.T) {
		empty := &Config{}
		_, err := empty.GetModel("")
		var fe *FieldError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "default_model", fe.Field)
	})
}

func TestConfig_ExpandEnvInAPIKey(t *testing.T) {
	t.Setenv("TEST_API_KEY", "my-secret-key")

	cfg := &Config{
		Models: map[string]ModelConfig{
			"test": {Provider: "openai", APIKey: "${TEST_API_KEY}", Model: "gpt-4o"},
			"bare": {Provider: "openai", APIKey: "$TEST_API_KEY", Model: "gpt-4o"},
		},
	}

	for _, name := range []string{"test", "bare"} {
		model, err := cfg.GetModel(name)
		require.NoError(t, err)
		assert.Equal(t, "my-secret-key", model.APIKey)
	}
}

func TestConfig_GetLanguage(t *testing.T) {
	t.Run("returns configured language", func(t *testing.T) {
		cfg := &Config{Language: "zh"}
		assert.Equal(t, "zh", cfg.GetLanguage(""))
	})

	t.Run("override with parameter", func(t *testing.T) {
		cfg := &Config{Language: "zh"}
		assert.Equal(t, "ja", cfg.GetLanguage("ja"))
	})

	t.Run("env variable override", func(t *testing.T) {
		t.Setenv(EnvLang, "ko")
		cfg := &Config{Language: "zh"}
		assert.Equal(t, "ko", cfg.GetLanguage(""))
	})

	t.Run("default to en when empty", func(t *testing.T) {
		cfg := &Config{}
		assert.Equal(t, "en", cfg.GetLanguage(""))
	})
}

func TestConfig_SectionDefaults(t *testing.T) {
	cfg := &Config{}

	gen := cfg.GetGenerationConfig()
	assert.Equal(t, DefaultTemperature, gen.Temperature)
	assert.Equal(t, DefaultMaxTokens, gen.MaxTokens)
	assert.Equal(t, 3000, gen.DiffLimit)
	assert.Equal(t, 15, gen.FileLimit)

	assert.Equal(t, filepath.Join(".commitflow", "scope.toml"), cfg.GetScopeConfig().RulesFile)
	assert.True(t, cfg.GetRetryConfig().Enabled())
	assert.Equal(t, 3, cfg.GetRetryConfig().MaxOffers)
	assert.True(t, cfg.GetUIConfig().EditEnabled())
	assert.False(t, cfg.GetUIConfig().TUI)
}

func TestConfig_Redacted(t *testing.T) {
	cfg := &Config{
		Models: map[string]ModelConfig{
			"openai": {Provider: "openai", APIKey: "sk-1234567890abcdef", Model: "gpt-4o"},
			"env":    {Provider: "openai", APIKey: "${OPENAI_API_KEY}", Model: "gpt-4o"},
		},
	}

	out, ok := cfg.Redacted().(Config)
	require.True(t, ok)
	assert.Equal(t, "sk-1***cdef", out.Models["openai"].APIKey)
	assert.Equal(t, "${OPENAI_API_KEY}", out.Models["env"].APIKey)
	assert.Equal(t, "sk-1234567890abcdef", cfg.Models["openai"].APIKey)
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	configContent := `
default_model: deepseek
models:
  deepseek:
    provider: deepseek
    api_key: sk-test
    model: deepseek-chat
    timeout: 30
  gpt4:
    provider: openai
    api_key: sk-openai
    model: gpt-4o
language: zh
generation:
  temperature: 0.7
  max_tokens: 400
scope:
  features_root: modules
  max_categories: 1
retry:
  offer: false
ui:
  edit: false
  tui: true
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	cfg, err := LoadFromFile(configPath)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, configPath, cfg.Path())
	assert.Equal(t, "deepseek", cfg.DefaultModel)
	assert.Equal(t, "zh", cfg.Language)
	assert.Len(t, cfg.Models, 2)
	assert.Equal(t, 30, cfg.Models["deepseek"].Timeout)

	gen := cfg.GetGenerationConfig()
	assert.Equal(t, 0.7, gen.Temperature)
	assert.Equal(t, 400, gen.MaxTokens)
	assert.Equal(t, 3000, gen.DiffLimit)

	assert.Equal(t, "modules", cfg.GetScopeConfig().FeaturesRoot)
	assert.Equal(t, 1, cfg.GetScopeConfig().MaxCategories)
	assert.False(t, cfg.GetRetryConfig().Enabled())
	assert.False(t, cfg.GetUIConfig().EditEnabled())
	assert.True(t, cfg.GetUIConfig().TUI)
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/.commitflow.yaml")
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := map[string]ModelConfig{
		"deepseek": {Provider: "deepseek", APIKey: "sk-test", Model: "deepseek-chat"},
	}

	t.Run("valid config", func(t *testing.T) {
		cfg := &Config{DefaultModel: "deepseek", Models: valid}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("no models configured", func(t *testing.T) {
		cfg := &Config{DefaultModel: "deepseek", Models: map[string]ModelConfig{}}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "no models configured")
	})

	t.Run("default model not found", func(t *testing.T) {
		cfg := &Config{DefaultModel: "nonexistent", Models: valid}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "default model")
	})

	t.Run("invalid generation section", func(t *testing.T) {
		cfg := &Config{Models: valid, Generation: &GenerationConfig{Temperature: 3}}
		err := cfg.Validate()
		var fe *FieldError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "temperature", fe.Field)
	})
}

func TestSupportedProviders(t *testing.T) {
	assert.Equal(t, []string{"deepseek", "gemini", "grok", "ollama", "openai", "openrouter"}, SupportedProviders())
}
