package main

import (
	"fmt"

	"github.com/flanksource/commons/logger"

	"github.com/flanksource/changelog/cache"
	"github.com/flanksource/changelog/changelog"
	"github.com/flanksource/changelog/config"
	"github.com/flanksource/changelog/narrative"
	"github.com/flanksource/changelog/provider"
)

func loadService() (*config.Config, *changelog.Service, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	caches, err := cache.NewCaches(cfg.CacheConfig())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create caches: %w", err)
	}

	opts := []changelog.Option{changelog.WithFactory(cfg.Factory())}
	if cfg.AI.APIKey != "" {
		completer, err := narrative.NewOpenAI(cfg.OpenAIConfig())
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, changelog.WithNarrator(narrative.New(completer)))
	} else {
		logger.Debugf("no AI key configured, narrative changelogs are unavailable")
	}
	return cfg, changelog.NewService(caches, opts...), nil
}

func connection(kind string) (changelog.Connection, error) {
	k, err := provider.ParseKind(kind)
	if err != nil {
		return changelog.Connection{}, err
	}
	return changelog.Connection{Provider: k}, nil
}
