package cli

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/a3tai/copa-listings/internal/aiparse"
	"github.com/a3tai/copa-listings/internal/blob"
	"github.com/a3tai/copa-listings/internal/config"
	"github.com/a3tai/copa-listings/internal/geo"
	"github.com/a3tai/copa-listings/internal/intelligence"
	"github.com/a3tai/copa-listings/internal/pdf"
	"github.com/a3tai/copa-listings/internal/pipeline"
	"github.com/a3tai/copa-listings/internal/store"
)

// NewClassifier builds the form classifier with any configured custom rules.
func NewClassifier(cfg *config.Config, logger *zap.Logger) (*intelligence.FormClassifier, error) {
	classifier := intelligence.NewFormClassifier(logger)
	if cfg.RulesPath != "" {
		if err := classifier.LoadCustomRules(cfg.RulesPath); err != nil {
			return nil, err
		}
	}
	return classifier, nil
}

// NewLocator builds the Nominatim geocoder. A Redis cache is attached when
// configured and reachable; the returned func closes it.
func NewLocator(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*geo.Geocoder, func()) {
	var cache geo.Cache
	closeFn := func() {}

	if cfg.Redis.Addr != "" {
		client, err := geo.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("geocode cache disabled", zap.Error(err))
		} else {
			cache = geo.NewRedisCache(client)
			closeFn = func() { _ = client.Close() }
		}
	}

	g := geo.NewNominatimGeocoder(cfg.Geocoder.URL, cfg.Geocoder.UserAgent, cfg.Geocoder.Timeout, cache, cfg.Geocoder.CacheTTL, logger)
	return g, closeFn
}

// NewBoundaryLoader returns the configured neighborhood boundary source.
func NewBoundaryLoader(cfg *config.Config, logger *zap.Logger) geo.BoundaryLoader {
	if cfg.Neighborhoods.Source == config.NeighborhoodsShapefile {
		return geo.NewShapefileLoader(cfg.Neighborhoods.Shapefile, cfg.Neighborhoods.NameField, logger)
	}
	return geo.NewSocrataLoader(cfg.Neighborhoods.URL, cfg.Neighborhoods.Limit, cfg.Geocoder.Timeout, logger)
}

func (a *App) classifier() (*intelligence.FormClassifier, error) {
	return NewClassifier(a.Config, a.Logger)
}

func (a *App) locator(ctx context.Context) *geo.Geocoder {
	g, closeFn := NewLocator(ctx, a.Config, a.Logger)
	a.onClose(closeFn)
	return g
}

func (a *App) openStore(ctx context.Context) (*store.Store, error) {
	if !a.Config.HasDatabase() {
		return nil, errors.New("no database configured: set COPA_DB_URL or DATABASE_URL")
	}
	st, err := store.Open(ctx, a.Config.Database, a.Logger)
	if err != nil {
		return nil, err
	}
	a.onClose(st.Close)
	return st, nil
}

func (a *App) blobs(ctx context.Context) (blob.Storage, error) {
	s, err := blob.NewStorage(ctx, a.Config.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open attachment storage: %w", err)
	}
	return s, nil
}

// fallback returns nil when no Gemini key is configured.
func (a *App) fallback(ctx context.Context) (pipeline.FallbackParser, error) {
	if !a.Config.HasAI() {
		a.Logger.Info("no Gemini API key configured, AI fallback disabled")
		return nil, nil
	}
	gen, err := aiparse.NewGeminiGenerator(ctx, a.Config.AI.APIKey, a.Config.AI.Model)
	if err != nil {
		return nil, err
	}
	a.onClose(func() { _ = gen.Close() })

	parser, err := aiparse.NewParser(gen, a.Config.AI.IncludeAttachments, a.Logger)
	if err != nil {
		return nil, err
	}
	return parser, nil
}

// processor wires the full email pipeline.
func (a *App) processor(ctx context.Context, metrics *pipeline.Metrics) (*pipeline.Processor, error) {
	st, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	blobs, err := a.blobs(ctx)
	if err != nil {
		return nil, err
	}
	classifier, err := a.classifier()
	if err != nil {
		return nil, err
	}
	fallback, err := a.fallback(ctx)
	if err != nil {
		return nil, err
	}

	return pipeline.NewProcessor(pipeline.Options{
		Store:    st,
		Blobs:    blobs,
		Reader:   pdf.NewReader(a.Config.MaxFileSize, a.Logger),
		Forms:    pipeline.NewFormParser(classifier, a.Logger),
		Fallback: fallback,
		Locator:  a.locator(ctx),
		Loader:   NewBoundaryLoader(a.Config, a.Logger),
		Metrics:  metrics,
		Logger:   a.Logger,
	})
}
