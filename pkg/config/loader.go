package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// ObservatoryYAMLConfig represents the complete observatory.yaml file structure.
type ObservatoryYAMLConfig struct {
	Queue     *QueueConfig     `yaml:"queue"`
	Feeds     *FeedsYAMLConfig `yaml:"feeds"`
	Scheduler *SchedulerConfig `yaml:"scheduler"`
	Retention *RetentionConfig `yaml:"retention"`
	TrustTier *TrustTierConfig `yaml:"trust_tiers"`
	Briefing  *BriefingConfig  `yaml:"briefing"`
	Broadcast *BroadcastConfig `yaml:"broadcast"`
	Watchlist *WatchlistConfig `yaml:"watchlist"`
}

// FeedsYAMLConfig is the user-editable shape of the feeds section.
type FeedsYAMLConfig struct {
	Sources map[string]*FeedConfig `yaml:"sources"`
}

// LLMYAMLConfig represents the llm-providers.yaml file structure.
type LLMYAMLConfig struct {
	Primary   string                         `yaml:"primary,omitempty"`
	Fallback  string                         `yaml:"fallback,omitempty"`
	Providers map[string]*LLMProviderConfig  `yaml:"providers"`
}

// Initialize loads, validates, and returns ready-to-use configuration.
// This is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Load YAML files from configDir
//  2. Expand environment variables
//  3. Parse YAML into structs
//  4. Merge built-in + user-defined configurations
//  5. Build in-memory registries
//  6. Validate all configuration
//  7. Return Config ready for use
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("Initializing configuration")

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	stats := cfg.Stats()
	log.Info("Configuration initialized successfully",
		"feeds", stats.Feeds,
		"llm_providers", stats.LLMProviders)

	return cfg, nil
}

// load is the internal loader (not exported).
func load(_ context.Context, configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	observatoryConfig, err := loader.loadObservatoryYAML()
	if err != nil {
		return nil, NewLoadError("observatory.yaml", err)
	}

	llmYAML, err := loader.loadLLMProvidersYAML()
	if err != nil {
		return nil, NewLoadError("llm-providers.yaml", err)
	}

	// Queue: start from defaults, merge user config on top.
	queueCfg := DefaultQueueConfig()
	if observatoryConfig.Queue != nil {
		if err := mergo.Merge(queueCfg, observatoryConfig.Queue, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge queue config: %w", err)
		}
	}

	// Feeds: merge per-source, built-in entries survive omission.
	builtinFeeds := DefaultFeedsConfig()
	userSources := map[string]*FeedConfig{}
	if observatoryConfig.Feeds != nil {
		userSources = observatoryConfig.Feeds.Sources
	}
	feedsCfg := &FeedsConfig{Sources: mergeFeeds(builtinFeeds.Sources, userSources)}

	// Scheduler, retention, briefing, broadcast: start from defaults, merge user overrides.
	schedulerCfg := DefaultSchedulerConfig()
	if observatoryConfig.Scheduler != nil {
		if err := mergo.Merge(schedulerCfg, observatoryConfig.Scheduler, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge scheduler config: %w", err)
		}
	}

	retentionCfg := DefaultRetentionConfig()
	if observatoryConfig.Retention != nil {
		if err := mergo.Merge(retentionCfg, observatoryConfig.Retention, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge retention config: %w", err)
		}
	}

	trustTierCfg := DefaultTrustTierConfig()
	if observatoryConfig.TrustTier != nil {
		if err := mergo.Merge(trustTierCfg, observatoryConfig.TrustTier, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge trust tier config: %w", err)
		}
	}

	briefingCfg := DefaultBriefingConfig()
	if observatoryConfig.Briefing != nil {
		if err := mergo.Merge(briefingCfg, observatoryConfig.Briefing, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge briefing config: %w", err)
		}
	}

	broadcastCfg := DefaultBroadcastConfig()
	if observatoryConfig.Broadcast != nil {
		if err := mergo.Merge(broadcastCfg, observatoryConfig.Broadcast, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge broadcast config: %w", err)
		}
	}

	watchlistCfg := DefaultWatchlistConfig()
	if observatoryConfig.Watchlist != nil {
		if err := mergo.Merge(watchlistCfg, observatoryConfig.Watchlist, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("failed to merge watchlist config: %w", err)
		}
	}

	// LLM: merge built-in providers with user providers, user primary/fallback override.
	builtinLLM := DefaultLLMConfig()
	llmCfg := &LLMConfig{
		Primary:   builtinLLM.Primary,
		Fallback:  builtinLLM.Fallback,
		Providers: mergeLLMProviders(builtinLLM.Providers, llmYAML.Providers),
	}
	if llmYAML.Primary != "" {
		llmCfg.Primary = llmYAML.Primary
	}
	if llmYAML.Fallback != "" {
		llmCfg.Fallback = llmYAML.Fallback
	}
	llmProviderRegistry := NewLLMProviderRegistry(llmCfg.Providers)

	return &Config{
		configDir:           configDir,
		Queue:               queueCfg,
		LLM:                 llmCfg,
		Feeds:               feedsCfg,
		Scheduler:           schedulerCfg,
		Retention:           retentionCfg,
		TrustTier:           trustTierCfg,
		Briefing:            briefingCfg,
		Broadcast:           broadcastCfg,
		Watchlist:           watchlistCfg,
		LLMProviderRegistry: llmProviderRegistry,
	}, nil
}

// validate performs comprehensive validation on loaded configuration.
func validate(cfg *Config) error {
	v := NewValidator(cfg)
	return v.ValidateAll()
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	// Note: ExpandEnv cannot fail; unset variables expand to empty strings and
	// the YAML parser sees the result.
	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}

func (l *configLoader) loadObservatoryYAML() (*ObservatoryYAMLConfig, error) {
	var config ObservatoryYAMLConfig
	config.Feeds = &FeedsYAMLConfig{Sources: make(map[string]*FeedConfig)}

	if err := l.loadYAML("observatory.yaml", &config); err != nil {
		return nil, err
	}
	if config.Feeds == nil {
		config.Feeds = &FeedsYAMLConfig{Sources: make(map[string]*FeedConfig)}
	}

	return &config, nil
}

func (l *configLoader) loadLLMProvidersYAML() (*LLMYAMLConfig, error) {
	config := &LLMYAMLConfig{Providers: make(map[string]*LLMProviderConfig)}

	if err := l.loadYAML("llm-providers.yaml", config); err != nil {
		return nil, err
	}

	return config, nil
}
