package cli

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/bannerlord/bannerlord/pkg/cache"
	"github.com/bannerlord/bannerlord/pkg/config"
	"github.com/bannerlord/bannerlord/pkg/design"
	"github.com/bannerlord/bannerlord/pkg/generate"
	"github.com/bannerlord/bannerlord/pkg/pipeline"
)

// buildRunner wires a pipeline runner from the loaded configuration.
//
// Every collaborator degrades independently: no API key means default
// guidance, no diffusion endpoint means gradient backgrounds, and a cache
// that cannot be opened is replaced by the null cache. The CLI stays
// usable offline with zero configuration.
func buildRunner(ctx context.Context, cfg config.Config, logger *log.Logger) (*pipeline.Runner, error) {
	var advisor design.Advisor
	if cfg.Advisor.APIKey != "" {
		a, err := design.NewOpenAIAdvisor(cfg.Advisor.APIKey,
			design.WithBaseURL(cfg.Advisor.BaseURL),
			design.WithModel(cfg.Advisor.Model),
		)
		if err != nil {
			return nil, err
		}
		advisor = a
	} else {
		logger.Debug("no advisor API key configured, using default guidance")
	}

	var generator generate.Generator
	if cfg.Generator.Endpoint != "" {
		opts := []generate.DiffusionOption{}
		if cfg.Generator.Steps > 0 {
			opts = append(opts, generate.WithSteps(cfg.Generator.Steps))
		}
		g, err := generate.NewDiffusionClient(cfg.Generator.Endpoint, opts...)
		if err != nil {
			return nil, err
		}
		generator = g
	}

	store := openCache(ctx, cfg.Cache, logger)

	return pipeline.NewRunner(advisor, generator, store, logger), nil
}

// openCache picks the cache backend from configuration. Failures are
// logged and downgrade to the null cache rather than aborting the command.
func openCache(ctx context.Context, cfg config.CacheConfig, logger *log.Logger) cache.Cache {
	if cfg.Disabled {
		return cache.NewNullCache()
	}
	if cfg.RedisAddr != "" {
		store, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Warn("redis cache unavailable, caching disabled", "addr", cfg.RedisAddr, "err", err)
			return cache.NewNullCache()
		}
		return store
	}
	store, err := cache.NewFileCache(cfg.Dir)
	if err != nil {
		logger.Warn("file cache unavailable, caching disabled", "dir", cfg.Dir, "err", err)
		return cache.NewNullCache()
	}
	return store
}
