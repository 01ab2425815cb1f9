package domain

import (
	"context"

	"github.com/giuliontini/SoDiVino/internal/domain/cellar"
	"github.com/giuliontini/SoDiVino/internal/domain/scoring"
	"github.com/giuliontini/SoDiVino/internal/domain/wine"
)

// MenuExtractor reads a photographed wine list with a vision model.
type MenuExtractor interface {
	ExtractMenu(ctx context.Context, img MenuImage) (MenuExtraction, error)
}

// WineRater scores a batch of wines against personas with a language model.
type WineRater interface {
	RateWines(ctx context.Context, req RatingRequest) (RatingResult, error)
}

// HealthChecker verifies language model provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// MenuImage is an uploaded wine list photo.
type MenuImage struct {
	Data     []byte
	MIMEType string
}

// MenuExtraction carries the model output and token usage through the decorator chain.
// Wines holds loosely shaped records when the model returned structured JSON;
// Text holds the plain transcription otherwise. Either may be empty.
type MenuExtraction struct {
	Text         string
	Wines        []map[string]any
	PromptTokens int
	TotalTokens  int
}

// RatingRequest is one batch for the rater. Preferences may be nil.
type RatingRequest struct {
	Personas    []cellar.Persona
	Preferences *cellar.Preferences
	Wines       []wine.Item
}

// RatingResult carries recommendations and token usage.
type RatingResult struct {
	Recommendations []scoring.Recommendation
	PromptTokens    int
	TotalTokens     int
}
