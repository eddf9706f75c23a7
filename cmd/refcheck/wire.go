// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/pdiddy/refcheck/internal/cache"
	"github.com/pdiddy/refcheck/internal/document"
	"github.com/pdiddy/refcheck/internal/doi"
	"github.com/pdiddy/refcheck/internal/httputil"
	"github.com/pdiddy/refcheck/internal/logging"
	"github.com/pdiddy/refcheck/internal/oracle"
	"github.com/pdiddy/refcheck/internal/pipeline"
	"github.com/pdiddy/refcheck/internal/search"
	"github.com/pdiddy/refcheck/internal/secrets"
	"github.com/pdiddy/refcheck/pkg/types"
)

// loadConfig unmarshals viper's settings, applies defaults, and fills API
// keys the config file left empty from the loaded secrets.
func loadConfig() (types.Config, error) {
	var cfg types.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	cfg = cfg.WithDefaults()
	secrets.Apply(&cfg, loadedSecrets)
	return cfg, nil
}

// app holds the long-lived components shared by every run.
type app struct {
	cfg     types.Config
	logger  *log.Logger
	cache   cache.Cache
	oracles *oracle.Registry
	service *pipeline.Service
}

// newApp builds the lookup side once: cache, DOI resolver, search
// backends, and document extractor. Close releases the cache.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(os.Stderr, cfg.Log)
	if err != nil {
		return nil, err
	}

	c, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("opening %s cache: %w", cfg.Cache.Backend, err)
	}

	extractor, err := document.New(ctx, cfg.Document)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("document extractor: %w", err)
	}

	backends := search.NewBackends(cfg.Lookup)
	for i, b := range backends {
		backends[i] = search.Cached(b, c, cfg.Cache.TTL)
	}

	oracles := oracle.NewRegistry(cfg.Oracle.Models)
	svc := &pipeline.Service{
		Oracles:   oracles,
		Oracle:    cfg.Oracle,
		Resolver:  doi.NewResolver(httputil.NewClientFromConfig(cfg.Lookup), c, cfg.Cache.TTL),
		Backends:  backends,
		Extractor: extractor,
		Pacing:    cfg.Pacing,
		Threshold: float64(cfg.Lookup.MatchThreshold),
		Logger:    logger,
	}

	logger.Debug("components ready",
		"cache", cfg.Cache.Backend,
		"document", cfg.Document.Backend,
		"default_model", cfg.Oracle.DefaultModel)

	return &app{cfg: cfg, logger: logger, cache: c, oracles: oracles, service: svc}, nil
}

func (a *app) Close() error {
	return a.cache.Close()
}
