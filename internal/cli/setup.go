package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/huimingz/commitflow/internal/commitmsg"
	"github.com/huimingz/commitflow/internal/config"
	"github.com/huimingz/commitflow/internal/git"
	"github.com/huimingz/commitflow/internal/llm"
	"github.com/huimingz/commitflow/internal/log"
	"github.com/huimingz/commitflow/internal/scope"
)

// loadConfig loads the configuration file. When optional is set and no file
// was named with --config, a missing file yields an empty configuration.
func loadConfig(optional bool) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		if optional && configFile == "" {
			log.Debug("No configuration loaded, using defaults: %v", err)
			return &config.Config{}, nil
		}
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log.DebugConfig("Configuration", cfg)
	return cfg, nil
}

// newCompleter resolves the model to use and creates its completion client.
// Configuration problems are reported before any provider is created.
func newCompleter(ctx context.Context, cfg *config.Config) (*llm.ChatCompleter, *config.ModelConfig, error) {
	modelCfg, err := cfg.GetModel(modelName)
	if err != nil {
		return nil, nil, commitmsg.AsConfigurationError(err)
	}
	if err := commitmsg.CheckModel(modelCfg); err != nil {
		return nil, nil, err
	}

	log.Debug("Using model: %s (provider: %s)", modelCfg.Model, modelCfg.Provider)

	provider, err := llm.NewProviderFactory().Create(*modelCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	completer, err := llm.NewChatCompleter(ctx, provider)
	if err != nil {
		return nil, nil, err
	}
	return completer, modelCfg, nil
}

// newExecutor returns a git executor for the current directory.
func newExecutor() (git.Executor, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	return git.NewExecutor(cwd), nil
}

// loadRules reads the scope rules file, relative paths being taken from the
// repository root, and applies the overrides of the scope section.
func loadRules(ctx context.Context, cfg *config.Config, executor git.Executor) (*scope.Rules, error) {
	sc := cfg.GetScopeConfig()

	path := sc.RulesFile
	if path != "" && !filepath.IsAbs(path) {
		root, err := executor.Root(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to locate repository root: %w", err)
		}
		path = filepath.Join(root, path)
	}

	rules, err := scope.LoadRules(path)
	if err != nil {
		return nil, err
	}
	if sc.FeaturesRoot != "" {
		rules.FeaturesRoot = sc.FeaturesRoot
	}
	if sc.MaxCategories > 0 {
		rules.MaxCategories = sc.MaxCategories
	}

	log.Debug("Scope rules: %s (features_root=%s, max_categories=%d)", path, rules.FeaturesRoot, rules.MaxCategories)
	return rules, nil
}

// serviceOptions assembles the service settings shared by the commands that
// read the repository.
func serviceOptions(cfg *config.Config, source commitmsg.SourceControl, rules *scope.Rules) commitmsg.ServiceOptions {
	gen := cfg.GetGenerationConfig()
	return commitmsg.ServiceOptions{
		Source:   source,
		Resolver: scope.NewResolver(rules),
		Options: commitmsg.Options{
			Temperature: gen.Temperature,
			MaxTokens:   gen.MaxTokens,
		},
		DiffLimit: gen.DiffLimit,
		FileLimit: gen.FileLimit,
	}
}

// configPath returns the file configuration writes go to: the --config
// flag, the file that was loaded, or the home directory file.
func configPath() (string, error) {
	if configFile != "" {
		return configFile, nil
	}
	if cfg, err := config.Load(""); err == nil && cfg.Path() != "" {
		return cfg.Path(), nil
	}
	return config.DefaultPath()
}
