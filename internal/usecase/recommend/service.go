// Package recommend ranks wines of a menu against a user's taste.
package recommend

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/giuliontini/SoDiVino/internal/domain"
	"github.com/giuliontini/SoDiVino/internal/domain/cellar"
	"github.com/giuliontini/SoDiVino/internal/domain/preference"
	"github.com/giuliontini/SoDiVino/internal/domain/scoring"
	"github.com/giuliontini/SoDiVino/internal/domain/wine"
	"github.com/giuliontini/SoDiVino/internal/metrics"
)

// Config holds ranking settings.
type Config struct {
	TopN                   int
	BatchSize              int
	BatchConcurrency       int
	DefaultAdventurousness int
}

// Deps are the collaborators of the service. Extractor and Rater can be nil
// when no language model is configured.
type Deps struct {
	Catalogue     preference.Catalogue
	Extractor     domain.MenuExtractor
	Rater         domain.WineRater
	Personas      PersonaReader
	Preferences   PreferencesReader
	TasteProfiles TasteProfileReader
	Lists         ListReader
	Logger        *zap.Logger
}

// Service produces recommendations.
type Service struct {
	cfg       Config
	catalogue preference.Catalogue
	extractor domain.MenuExtractor
	rater     domain.WineRater
	personas  PersonaReader
	prefs     PreferencesReader
	tastes    TasteProfileReader
	lists     ListReader
	logger    *zap.Logger
}

// New creates a recommendation service.
func New(cfg Config, deps Deps) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 10
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 1
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cfg:       cfg,
		catalogue: deps.Catalogue,
		extractor: deps.Extractor,
		rater:     deps.Rater,
		personas:  deps.Personas,
		prefs:     deps.Preferences,
		tastes:    deps.TasteProfiles,
		lists:     deps.Lists,
		logger:    logger,
	}
}

// Profiles returns the built-in preference profiles.
func (s *Service) Profiles() []preference.Profile {
	return s.catalogue.List()
}

// Request asks for persona-based recommendations over a stored list or inline wines.
type Request struct {
	PersonaIDs     []string
	TasteProfileID string
	ListID         string
	Wines          []map[string]any
}

// Recommend rates every wine for the requested personas, best first.
func (s *Service) Recommend(ctx context.Context, userID string, req Request) ([]scoring.Recommendation, error) {
	if len(req.PersonaIDs) == 0 && req.TasteProfileID == "" {
		return nil, domain.NewInvalidInput("Provide either personaIds or a tasteProfileId")
	}
	if req.ListID == "" && len(req.Wines) == 0 {
		return nil, domain.NewInvalidInput("Provide wines when parsedListId is not set")
	}

	personas, prefs, err := s.resolveTaste(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	wines, err := s.resolveWines(ctx, userID, req)
	if err != nil {
		return nil, err
	}

	batches := chunk(wines, s.cfg.BatchSize)
	results := make([][]scoring.Recommendation, len(batches))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.BatchConcurrency)
	for i, batch := range batches {
		g.Go(func() error {
			results[i] = s.rateBatch(gctx, personas, prefs, batch)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("rate wines: %w", err)
	}

	known := make(map[string]struct{}, len(wines))
	for _, w := range wines {
		known[w.ID] = struct{}{}
	}
	var all []scoring.Recommendation
	for _, r := range results {
		all = append(all, r...)
	}
	return scoring.Merge(all, known), nil
}

func (s *Service) resolveTaste(
	ctx context.Context, userID string, req Request,
) ([]cellar.Persona, *cellar.Preferences, error) {
	if len(req.PersonaIDs) > 0 {
		personas, err := s.personas.GetMany(ctx, userID, req.PersonaIDs)
		if err != nil {
			return nil, nil, fmt.Errorf("get personas: %w", err)
		}
		if len(personas) == 0 {
			return nil, nil, domain.ErrPersonaNotFound
		}

		p, err := s.prefs.Get(ctx, userID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return personas, nil, nil
		case err != nil:
			return nil, nil, fmt.Errorf("get preferences: %w", err)
		}
		return personas, &p, nil
	}

	tp, err := s.tastes.Get(ctx, userID, req.TasteProfileID)
	if err != nil {
		return nil, nil, fmt.Errorf("get taste profile: %w", err)
	}
	prefs := tp.ToPreferences()
	return []cellar.Persona{tp.ToPersona()}, &prefs, nil
}

func (s *Service) resolveWines(ctx context.Context, userID string, req Request) ([]wine.Item, error) {
	if req.ListID != "" {
		l, err := s.lists.Get(ctx, userID, req.ListID)
		if err != nil {
			return nil, fmt.Errorf("get parsed list: %w", err)
		}
		if len(l.Wines()) == 0 {
			return nil, domain.ErrListNotFound
		}
		return l.Wines(), nil
	}

	wines := make([]wine.Item, 0, len(req.Wines))
	for _, rec := range req.Wines {
		item, ok := wine.NormalizeRecord(rec)
		if !ok {
			continue
		}
		item.Position = len(wines)
		wines = append(wines, item)
	}
	if len(wines) == 0 {
		return nil, domain.NewInvalidInput("Provide at least one wine")
	}
	return wines, nil
}

// rateBatch asks the model and falls back to the heuristic when it is absent,
// fails or returns nothing usable for this batch.
func (s *Service) rateBatch(
	ctx context.Context, personas []cellar.Persona, prefs *cellar.Preferences, batch []wine.Item,
) []scoring.Recommendation {
	if s.rater == nil {
		return fallback("no_rater", personas, prefs, batch)
	}

	res, err := s.rater.RateWines(ctx, domain.RatingRequest{
		Personas:    personas,
		Preferences: prefs,
		Wines:       batch,
	})
	if err != nil {
		s.logger.Warn("Wine rating failed, using heuristic",
			zap.Int("batch_size", len(batch)),
			zap.Error(err),
		)
		return fallback(fallbackReason(err), personas, prefs, batch)
	}

	known := make(map[string]struct{}, len(batch))
	for _, w := range batch {
		known[w.ID] = struct{}{}
	}
	recs := scoring.Merge(res.Recommendations, known)
	if len(recs) == 0 {
		return fallback("empty", personas, prefs, batch)
	}
	return recs
}

func fallback(reason string, personas []cellar.Persona, prefs *cellar.Preferences, batch []wine.Item) []scoring.Recommendation {
	metrics.RecommendFallbacksTotal.WithLabelValues(reason).Inc()
	return scoring.HeuristicRate(personas, prefs, batch)
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrLLMUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrLLMQuotaExceeded):
		return "quota"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	default:
		return "error"
	}
}

func chunk(wines []wine.Item, size int) [][]wine.Item {
	batches := make([][]wine.Item, 0, (len(wines)+size-1)/size)
	for start := 0; start < len(wines); start += size {
		end := min(start+size, len(wines))
		batches = append(batches, wines[start:end])
	}
	return batches
}
