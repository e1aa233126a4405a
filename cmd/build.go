package cmd

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/job-advisor/internal/catalog"
	"github.com/spigell/job-advisor/internal/dialogue"
	"github.com/spigell/job-advisor/internal/embedding"
	"github.com/spigell/job-advisor/internal/embedding/gemini"
	"github.com/spigell/job-advisor/internal/filtering"
	"github.com/spigell/job-advisor/internal/intent"
	"github.com/spigell/job-advisor/internal/logger"
	"github.com/spigell/job-advisor/internal/matching"
	"github.com/spigell/job-advisor/internal/profile"
	"github.com/spigell/job-advisor/internal/secrets"
)

const (
	providerLocal  = "local"
	providerGemini = "gemini"
)

// components are the wired pieces shared by every command.
type components struct {
	config     *Config
	logger     *zap.Logger
	provider   embedding.Provider
	catalog    *catalog.Catalog
	normalizer *profile.Normalizer
	ranker     *matching.Ranker
	closers    []func() error
}

func (c *components) Close() {
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil {
			c.logger.Warn("closing component", zap.Error(err))
		}
	}
}

// build resolves configuration and wires the provider, catalog and ranker.
func build(ctx context.Context, config *Config, log *zap.Logger) (*components, error) {
	if config == nil {
		config = &Config{}
	}
	if config.Embedding == nil {
		config.Embedding = &EmbeddingConfig{}
	}
	if config.Matching == nil {
		config.Matching = &MatchingConfig{}
	}

	c := &components{config: config, logger: log}

	provider, err := newProvider(ctx, config.Embedding, c)
	if err != nil {
		return nil, err
	}
	c.provider = provider

	c.catalog, err = loadCatalog(ctx, config.Catalog, c)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.normalizer = profile.NewNormalizer(config.Synonyms)
	c.ranker = matching.NewRanker(
		matching.NewScorer(c.provider, config.Matching.AxisThreshold),
		[]filtering.Filter{filtering.NewMinSalary()},
		c.logger,
	)

	return c, nil
}

func newProvider(ctx context.Context, cfg *EmbeddingConfig, c *components) (embedding.Provider, error) {
	name := strings.TrimSpace(strings.ToLower(cfg.Provider))

	var (
		provider embedding.Provider
		model    string
	)

	switch name {
	case "", providerLocal:
		name = providerLocal
		hashing := embedding.NewHashing(cfg.Dimensions)
		model = fmt.Sprintf("hashing-%d", hashing.Dimensions())
		provider = hashing
	case providerGemini:
		embedder, err := newGeminiEmbedder(ctx, cfg.Gemini, c.logger)
		if err != nil {
			return nil, err
		}
		model = embedder.Model()
		provider = embedder
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}

	c.logger = logger.WithCommonFields(c.logger, name, model)

	if cfg.Cache != nil && cfg.Cache.Enabled {
		cache := embedding.NewCache(ctx, provider, embedding.CacheConfig{
			Namespace:  name + ":" + model,
			MaxEntries: cfg.Cache.MaxEntries,
			TTL:        cfg.Cache.TTL,
			RedisURL:   cfg.Cache.RedisURL,
		}, c.logger)
		c.closers = append(c.closers, cache.Close)
		provider = cache
	}

	c.logger.Debug("embedding provider ready")
	return provider, nil
}

func newGeminiEmbedder(ctx context.Context, cfg *GeminiConfig, log *zap.Logger) (*gemini.Embedder, error) {
	if cfg == nil {
		cfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set embedding.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	return gemini.NewEmbedder(ctx, gemini.Config{
		APIKey:            apiKey,
		Model:             cfg.Model,
		MaxRetries:        cfg.MaxRetries,
		BatchSize:         cfg.BatchSize,
		Concurrency:       cfg.Concurrency,
		RequestsPerSecond: cfg.RequestsPerSecond,
		MaxLogLength:      cfg.MaxLogLength,
	}, log.With(zap.String("provider", providerGemini)))
}

func loadCatalog(ctx context.Context, cfg *CatalogConfig, c *components) (*catalog.Catalog, error) {
	if cfg == nil {
		cfg = &CatalogConfig{}
	}

	var src catalog.Source
	if strings.TrimSpace(cfg.Driver) != "" {
		db, err := catalog.OpenDB(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening catalog database: %w", err)
		}
		c.closers = append(c.closers, db.Close)
		src = catalog.NewSQLSource(db, cfg.Query)
	} else {
		src = catalog.NewFileSource(cfg.File)
	}

	cat, err := catalog.Load(ctx, src, c.logger)
	if err != nil {
		return nil, fmt.Errorf("loading job catalog: %w", err)
	}
	return cat, nil
}

func (c *components) newClassifier(ctx context.Context) (*intent.Classifier, error) {
	examples := c.config.Intents
	if len(examples) == 0 {
		examples = intent.DefaultExamples()
	}

	classifier, err := intent.NewClassifier(ctx, c.provider, examples, c.config.Matching.IntentThreshold, c.logger)
	if err != nil {
		return nil, fmt.Errorf("preparing intent classifier: %w", err)
	}
	return classifier, nil
}

func (c *components) newEngine(ctx context.Context) (*dialogue.Engine, error) {
	classifier, err := c.newClassifier(ctx)
	if err != nil {
		return nil, err
	}

	return dialogue.NewEngine(dialogue.Deps{
		Classifier: classifier,
		Ranker:     c.ranker,
		Catalog:    c.catalog,
		Normalizer: c.normalizer,
		Show:       c.config.Matching.Show,
		Logger:     c.logger,
	})
}
