// Package menu turns uploaded wine lists into stored, structured parsed lists.
package menu

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/giuliontini/SoDiVino/internal/domain"
	dommenu "github.com/giuliontini/SoDiVino/internal/domain/menu"
	"github.com/giuliontini/SoDiVino/internal/domain/session"
	"github.com/giuliontini/SoDiVino/internal/domain/wine"
	"github.com/giuliontini/SoDiVino/internal/metrics"
)

// Service handles menu extraction and parsed list storage.
type Service struct {
	extractor domain.MenuExtractor
	lists     ListRepository
	logger    *zap.Logger
	newID     func() string
	now       func() time.Time
}

// New creates a menu service. extractor can be nil (no vision model configured).
func New(extractor domain.MenuExtractor, lists ListRepository, logger *zap.Logger) *Service {
	return &Service{
		extractor: extractor,
		lists:     lists,
		logger:    logger,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Extract reads the wine list off an image without storing anything.
func (s *Service) Extract(ctx context.Context, img domain.MenuImage) (domain.MenuExtraction, error) {
	if s.extractor == nil {
		return domain.MenuExtraction{}, fmt.Errorf("extract menu: %w", domain.ErrLLMUnavailable)
	}
	ext, err := s.extractor.ExtractMenu(ctx, img)
	if err != nil {
		return domain.MenuExtraction{}, fmt.Errorf("extract menu: %w", err)
	}
	return ext, nil
}

// ParseImage extracts wines from a menu photo and stores them as a parsed list.
// Structured records from the model win; otherwise the transcription goes through
// the text parser.
func (s *Service) ParseImage(
	ctx context.Context, userID string, img domain.MenuImage, restaurantName *string,
) (session.ParsedList, error) {
	ext, err := s.Extract(ctx, img)
	if err != nil {
		return session.ParsedList{}, err
	}

	wines := s.itemsFromRecords(ext.Wines)
	if len(wines) == 0 && ext.Text != "" {
		wines = s.itemsFromText(ext.Text)
	}

	s.logger.Debug("Menu image parsed",
		zap.Int("records", len(ext.Wines)),
		zap.Int("wines", len(wines)),
	)
	return s.store(ctx, userID, restaurantName, session.SourceImage, wines)
}

// ParseText runs the text parser over a pasted wine list and stores the result.
func (s *Service) ParseText(
	ctx context.Context, userID, text string, restaurantName *string,
) (session.ParsedList, error) {
	return s.store(ctx, userID, restaurantName, session.SourceText, s.itemsFromText(text))
}

// Wines returns the items of a stored list in position order.
func (s *Service) Wines(ctx context.Context, userID, listID string) ([]wine.Item, error) {
	l, err := s.lists.Get(ctx, userID, listID)
	if err != nil {
		return nil, fmt.Errorf("get parsed list: %w", err)
	}
	return l.Wines(), nil
}

func (s *Service) store(
	ctx context.Context, userID string, restaurantName *string, source string, wines []wine.Item,
) (session.ParsedList, error) {
	metrics.ParsedWines.Observe(float64(len(wines)))

	l := session.NewParsedList(s.newID(), userID, restaurantName, source, wines, s.now())
	if err := s.lists.Create(ctx, l); err != nil {
		return session.ParsedList{}, fmt.Errorf("create parsed list: %w", err)
	}
	return l, nil
}

// itemsFromRecords normalizes model records. Every item gets a fresh id;
// ids echoed by the model are not trusted to be unique.
func (s *Service) itemsFromRecords(records []map[string]any) []wine.Item {
	items := make([]wine.Item, 0, len(records))
	for _, rec := range records {
		withID := make(map[string]any, len(rec)+1)
		for k, v := range rec {
			withID[k] = v
		}
		withID["id"] = s.newID()

		item, ok := wine.NormalizeRecord(withID)
		if !ok {
			continue
		}
		item.Position = len(items)
		items = append(items, item)
	}
	return items
}

func (s *Service) itemsFromText(text string) []wine.Item {
	lines := dommenu.ParseText(text)
	items := make([]wine.Item, 0, len(lines))
	for i, li := range lines {
		items = append(items, wine.FromLineItem(li, s.newID(), i))
	}
	return items
}
