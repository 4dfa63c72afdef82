package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// FileName is the configuration file looked up in the working directory and
// then in the home directory.
const FileName = ".commitflow.yaml"

// Environment variables that override file values.
const (
	EnvModel  = "COMMITFLOW_MODEL"
	EnvLang   = "COMMITFLOW_LANG"
	EnvAPIKey = "COMMITFLOW_API_KEY"
)

// Generation limits.
const (
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 500
	MinMaxTokens       = 300
	MaxMaxTokens       = 500
	MaxTemperature     = 2.0
)

// Supported providers
var supportedProviders = map[string]bool{
	"openai":     true,
	"deepseek":   true,
	"ollama":     true,
	"gemini":     true,
	"grok":       true,
	"openrouter": true,
}

// SupportedProviders returns the supported provider names in sorted order.
func SupportedProviders() []string {
	providers := make([]string, 0, len(supportedProviders))
	for p := range supportedProviders {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}

// Config represents the application configuration
type Config struct {
	DefaultModel string                 `yaml:"default_model" mapstructure:"default_model"`
	Models       map[string]ModelConfig `yaml:"models" mapstructure:"models"`
	Language     string                 `yaml:"language" mapstructure:"language"`
	Generation   *GenerationConfig      `yaml:"generation" mapstructure:"generation"`
	Scope        *ScopeConfig           `yaml:"scope" mapstructure:"scope"`
	Retry        *RetryConfig           `yaml:"retry" mapstructure:"retry"`
	UI           *UIConfig              `yaml:"ui" mapstructure:"ui"`

	// path is the file the configuration was read from.
	path string
}

// Path returns the file the configuration was loaded from, if any.
func (c *Config) Path() string {
	return c.path
}

// FieldError reports an invalid or missing configuration value.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// ModelConfig represents a single model configuration
type ModelConfig struct {
	Provider string `yaml:"provider" mapstructure:"provider"`
	APIKey   string `yaml:"api_key" mapstructure:"api_key"`
	Model    string `yaml:"model" mapstructure:"model"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Timeout  int    `yaml:"timeout" mapstructure:"timeout"` // in seconds, 0 means none
}

// Validate validates the model configuration
func (m *ModelConfig) Validate() error {
	if m.Provider == "" {
		return &FieldError{Field: "provider", Reason: "is required"}
	}
	if !supportedProviders[m.Provider] {
		return &FieldError{Field: "provider", Reason: fmt.Sprintf("is unsupported: %s", m.Provider)}
	}
	if m.Model == "" {
		return &FieldError{Field: "model", Reason: "is required"}
	}
	// API key is required for all providers except ollama
	if m.Provider != "ollama" && m.APIKey == "" {
		return &FieldError{Field: "api_key", Reason: fmt.Sprintf("is required for provider %s", m.Provider)}
	}
	if m.Timeout < 0 {
		return &FieldError{Field: "timeout", Reason: "must be non-negative"}
	}
	return nil
}

// Redacted returns a copy with the API key masked.
func (m ModelConfig) Redacted() ModelConfig {
	if m.APIKey != "" {
		m.APIKey = maskKey(m.APIKey)
	}
	return m
}

// GenerationConfig controls the completion request and the prompt size.
type GenerationConfig struct {
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	DiffLimit   int     `yaml:"diff_limit" mapstructure:"diff_limit"` // characters of diff in the prompt
	FileLimit   int     `yaml:"file_limit" mapstructure:"file_limit"` // paths listed in the prompt
}

// DefaultGenerationConfig returns the default generation configuration
func DefaultGenerationConfig() *GenerationConfig {
	return &GenerationConfig{
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		DiffLimit:   3000,
		FileLimit:   15,
	}
}

// Validate validates the generation configuration
func (g *GenerationConfig) Validate() error {
	if g.Temperature < 0 || g.Temperature > MaxTemperature {
		return &FieldError{Field: "temperature", Reason: fmt.Sprintf("must be between 0 and %.1f", MaxTemperature)}
	}
	if g.MaxTokens != 0 && (g.MaxTokens < MinMaxTokens || g.MaxTokens > MaxMaxTokens) {
		return &FieldError{Field: "max_tokens", Reason: fmt.Sprintf("must be between %d and %d", MinMaxTokens, MaxMaxTokens)}
	}
	if g.DiffLimit < 0 {
		return &FieldError{Field: "diff_limit", Reason: "must be non-negative"}
	}
	if g.FileLimit < 0 {
		return &FieldError{Field: "file_limit", Reason: "must be non-negative"}
	}
	return nil
}

// ScopeConfig points at the scope rules and overrides single values of them.
type ScopeConfig struct {
	FeaturesRoot  string `yaml:"features_root" mapstructure:"features_root"`
	RulesFile     string `yaml:"rules_file" mapstructure:"rules_file"`
	MaxCategories int    `yaml:"max_categories" mapstructure:"max_categories"`
}

// DefaultScopeConfig returns the default scope configuration
func DefaultScopeConfig() *ScopeConfig {
	return &ScopeConfig{
		RulesFile: filepath.Join(".commitflow", "scope.toml"),
	}
}

// RetryConfig controls whether the user is offered another attempt after a
// transient provider failure. Nothing is retried without asking.
type RetryConfig struct {
	Offer     *bool `yaml:"offer" mapstructure:"offer"`
	MaxOffers int   `yaml:"max_offers" mapstructure:"max_offers"`
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() *RetryConfig {
	offer := true
	return &RetryConfig{
		Offer:     &offer,
		MaxOffers: 3,
	}
}

// Enabled reports whether a retry should be offered at all.
func (r *RetryConfig) Enabled() bool {
	return r.Offer == nil || *r.Offer
}

// Validate validates the retry configuration
func (r *RetryConfig) Validate() error {
	if r.MaxOffers < 0 {
		return &FieldError{Field: "max_offers", Reason: "must be non-negative"}
	}
	return nil
}

// UIConfig controls the review step before committing.
type UIConfig struct {
	Edit *bool `yaml:"edit" mapstructure:"edit"` // offer to edit the message, default true
	TUI  bool  `yaml:"tui" mapstructure:"tui"`   // use the full-screen editor
}

// DefaultUIConfig returns the default UI configuration
func DefaultUIConfig() *UIConfig {
	edit := true
	return &UIConfig{Edit: &edit}
}

// EditEnabled reports whether the message editor is shown.
func (u *UIConfig) EditEnabled() bool {
	return u.Edit == nil || *u.Edit
}

// Validate validates the entire configuration
func (c *Config) Validate() error {
	if len(c.Models) == 0 {
		return fmt.Errorf("no models configured")
	}

	// Validate default model exists
	if c.DefaultModel != "" {
		if _, ok := c.Models[c.DefaultModel]; !ok {
			return fmt.Errorf("default model '%s' not found in models configuration", c.DefaultModel)
		}
	}

	// Validate each model
	for name, model := range c.Models {
		if err := model.Validate(); err != nil {
			return fmt.Errorf("invalid model '%s': %w", name, err)
		}
	}

	if c.Generation != nil {
		if err := c.Generation.Validate(); err != nil {
			return fmt.Errorf("invalid generation configuration: %w", err)
		}
	}

	if c.Retry != nil {
		if err := c.Retry.Validate(); err != nil {
			return fmt.Errorf("invalid retry configuration: %w", err)
		}
	}

	return nil
}

// ResolveModelName returns the model key to use.
// Priority: parameter > env variable (COMMITFLOW_MODEL) > default_model
func (c *Config) ResolveModelName(modelName string) string {
	if modelName == "" {
		modelName = os.Getenv(EnvModel)
	}
	if modelName == "" {
		modelName = c.DefaultModel
	}
	return modelName
}

// GetModel returns the model configuration by name with environment
// references in the API key expanded. An empty key falls back to
// COMMITFLOW_API_KEY.
func (c *Config) GetModel(modelName string) (*ModelConfig, error) {
	modelName = c.ResolveModelName(modelName)

	// If still empty, return error
	if modelName == "" {
		return nil, &FieldError{Field: "default_model", Reason: "is not set and no model was specified"}
	}

	model, ok := c.Models[modelName]
	if !ok {
		return nil, fmt.Errorf("model '%s' not found in configuration", modelName)
	}

	model.APIKey = expandEnv(model.APIKey)
	if model.APIKey == "" {
		model.APIKey = os.Getenv(EnvAPIKey)
	}

	return &model, nil
}

// GetLanguage returns the language to use
// Priority: parameter > env variable (COMMITFLOW_LANG) > config file > default (en)
func (c *Config) GetLanguage(langParam string) string {
	// Parameter has highest priority
	if langParam != "" {
		return langParam
	}

	// Check env variable
	if envLang := os.Getenv(EnvLang); envLang != "" {
		return envLang
	}

	// Use config file value
	if c.Language != "" {
		return c.Language
	}

	// Default to English
	return "en"
}

// GetGenerationConfig returns the generation configuration with defaults applied
func (c *Config) GetGenerationConfig() *GenerationConfig {
	if c.Generation == nil {
		return DefaultGenerationConfig()
	}
	defaults := DefaultGenerationConfig()
	if c.Generation.MaxTokens <= 0 {
		c.Generation.MaxTokens = defaults.MaxTokens
	}
	if c.Generation.DiffLimit <= 0 {
		c.Generation.DiffLimit = defaults.DiffLimit
	}
	if c.Generation.FileLimit <= 0 {
		c.Generation.FileLimit = defaults.FileLimit
	}
	return c.Generation
}

// GetScopeConfig returns the scope configuration with defaults applied
func (c *Config) GetScopeConfig() *ScopeConfig {
	if c.Scope == nil {
		return DefaultScopeConfig()
	}
	if c.Scope.RulesFile == "" {
		c.Scope.RulesFile = DefaultScopeConfig().RulesFile
	}
	return c.Scope
}

// GetRetryConfig returns the retry configuration with defaults applied
func (c *Config) GetRetryConfig() *RetryConfig {
	if c.Retry == nil {
		return DefaultRetryConfig()
	}
	if c.Retry.MaxOffers <= 0 {
		c.Retry.MaxOffers = DefaultRetryConfig().MaxOffers
	}
	return c.Retry
}

// GetUIConfig returns the UI configuration with defaults applied
func (c *Config) GetUIConfig() *UIConfig {
	if c.UI == nil {
		return DefaultUIConfig()
	}
	return c.UI
}

// Redacted returns a copy of the configuration that is safe to print.
func (c *Config) Redacted() interface{} {
	out := *c
	out.Models = make(map[string]ModelConfig, len(c.Models))
	for name, m := range c.Models {
		out.Models[name] = m.Redacted()
	}
	return out
}

func maskKey(key string) string {
	if strings.HasPrefix(key, "$") {
		return key
	}
	if len(key) <= 8 {
		return "***"
	}
	return key[:4] + "***" + key[len(key)-4:]
}

// expandEnv expands environment variables in the format ${VAR} or $VAR
func expandEnv(s string) string {
	// Handle ${VAR} format
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		envName := s[2 : len(s)-1]
		return os.Getenv(envName)
	}
	// Handle $VAR format
	if strings.HasPrefix(s, "$") {
		envName := s[1:]
		return os.Getenv(envName)
	}
	return s
}

// LoadFromFile loads configuration from a file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.path = path

	return &cfg, nil
}

// DefaultPath returns the home directory configuration path.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, FileName), nil
}

// Load loads configuration with the following priority:
// 1. Custom path if provided
// 2. Current directory .commitflow.yaml
// 3. Home directory ~/.commitflow.yaml
func Load(customPath string) (*Config, error) {
	// If custom path is provided, use it exclusively
	if customPath != "" {
		return LoadFromFile(customPath)
	}

	// Try current directory first
	if cfg, err := LoadFromFile(FileName); err == nil {
		return cfg, nil
	}

	homeCfgPath, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	if cfg, err := LoadFromFile(homeCfgPath); err == nil {
		return cfg, nil
	}

	return nil, fmt.Errorf("no configuration file found. Run 'commitflow init' to create one")
}
