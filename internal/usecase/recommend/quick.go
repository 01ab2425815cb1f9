package recommend

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/giuliontini/SoDiVino/internal/domain"
	dommenu "github.com/giuliontini/SoDiVino/internal/domain/menu"
	"github.com/giuliontini/SoDiVino/internal/domain/preference"
	"github.com/giuliontini/SoDiVino/internal/domain/scoring"
	"github.com/giuliontini/SoDiVino/internal/domain/wine"
)

const textPreviewLen = 400

// QuickRequest asks for the best matches of a menu photo against a built-in profile.
type QuickRequest struct {
	Image     domain.MenuImage
	ProfileID string
	Overrides preference.Overrides
}

// QuickResult holds the top matches. When nothing could be parsed, Top is empty
// and TextPreview shows the start of what the model read.
type QuickResult struct {
	Profile     preference.Profile
	ParsedCount int
	Top         []scoring.ScoredWine
	TextPreview string
}

// FromImage reads a menu photo, parses its lines and ranks them against a catalogue profile.
func (s *Service) FromImage(ctx context.Context, req QuickRequest) (QuickResult, error) {
	profile, ok := s.catalogue.ByID(req.ProfileID)
	if !ok {
		return QuickResult{}, domain.NewInvalidInput("Unknown profileId")
	}
	if s.extractor == nil {
		return QuickResult{}, fmt.Errorf("extract menu: %w", domain.ErrLLMUnavailable)
	}

	ext, err := s.extractor.ExtractMenu(ctx, req.Image)
	if err != nil {
		return QuickResult{}, fmt.Errorf("extract menu: %w", err)
	}

	text := menuText(ext)
	items := dommenu.ParseText(text)

	s.logger.Debug("Quick recommendation",
		zap.String("profile", profile.ID),
		zap.Int("parsed", len(items)),
	)

	if len(items) == 0 {
		return QuickResult{Profile: profile, TextPreview: preview(text)}, nil
	}

	o := req.Overrides
	if o.Adventurousness == nil {
		adv := s.cfg.DefaultAdventurousness
		o.Adventurousness = &adv
	}

	return QuickResult{
		Profile:     profile,
		ParsedCount: len(items),
		Top:         scoring.Rank(items, profile, o, s.cfg.TopN),
	}, nil
}

// menuText prefers the model's transcription. Without one, lines are rebuilt
// from structured records so the text parser still sees "name price".
func menuText(ext domain.MenuExtraction) string {
	if strings.TrimSpace(ext.Text) != "" {
		return ext.Text
	}

	lines := make([]string, 0, len(ext.Wines))
	for i, rec := range ext.Wines {
		item, ok := wine.NormalizeRecord(withFallbackID(rec, i))
		if !ok {
			continue
		}
		if _, priced := dommenu.ParseLine(item.RawText); priced {
			lines = append(lines, item.RawText)
			continue
		}
		if item.Price != nil {
			lines = append(lines, item.Name+" "+strconv.FormatFloat(*item.Price, 'f', -1, 64))
		}
	}
	return strings.Join(lines, "\n")
}

func withFallbackID(rec map[string]any, i int) map[string]any {
	out := make(map[string]any, len(rec)+1)
	for k, v := range rec {
		out[k] = v
	}
	out["id"] = strconv.Itoa(i)
	return out
}

func preview(text string) string {
	r := []rune(text)
	if len(r) <= textPreviewLen {
		return text
	}
	return string(r[:textPreviewLen])
}
