package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/giuliontini/SoDiVino/internal/domain"
	"github.com/giuliontini/SoDiVino/internal/domain/cellar"
	"github.com/giuliontini/SoDiVino/internal/domain/scoring"
	"github.com/giuliontini/SoDiVino/internal/domain/wine"
)

const rateSystemPrompt = `You are a master sommelier helping a host recommend wines to a guest.
For each batch of wines you must rate how well every wine fits the provided personas and global preferences.
Always return JSON with the shape { "recommendations": WineRecommendation[] } where each recommendation matches: { "wineId": string, "score": number (0-100), "reason": string, "tags": string[] }.
Reasons should be short (<240 chars) and tags must highlight key attributes such as "safe", "bold", "good value", "food pairing", etc.
Score each wine relative to this group; do not omit wines unless information is missing.`

const recommendationSchema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "recommendations": {
      "type": "array",
      "items": {
        "type": "object",
        "additionalProperties": false,
        "required": ["wineId", "score", "reason", "tags"],
        "properties": {
          "wineId": {"type": "string"},
          "score": {"type": "number"},
          "reason": {"type": "string"},
          "tags": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  },
  "required": ["recommendations"]
}`

// Rater scores wine batches against personas with a chat model constrained to a JSON schema.
type Rater struct {
	chat *chatClient
}

// NewRater creates a language model wine rater.
func NewRater(cfg *Config) *Rater {
	return &Rater{chat: newChatClient(cfg)}
}

// RateWines implements domain.WineRater. Malformed entries of the reply are dropped;
// a reply that is not a JSON object is a provider error.
func (r *Rater) RateWines(ctx context.Context, req domain.RatingRequest) (domain.RatingResult, error) {
	if len(req.Wines) == 0 {
		return domain.RatingResult{}, nil
	}

	prompt, err := buildRatingPrompt(req)
	if err != nil {
		return domain.RatingResult{}, fmt.Errorf("build prompt: %w", err)
	}

	chatReq := openai.ChatCompletionRequest{
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: rateSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "wine_recommendations",
				Schema: json.RawMessage(recommendationSchema),
				Strict: true,
			},
		},
	}

	content, usage, err := r.chat.complete(ctx, "rate", chatReq)
	if err != nil {
		return domain.RatingResult{}, err
	}

	recs, err := parseRecommendations(content)
	if err != nil {
		return domain.RatingResult{}, fmt.Errorf("decode recommendations: %v: %w", err, domain.ErrLLMProviderError)
	}

	r.chat.logger.Debug("Wines rated",
		zap.String("model", r.chat.model),
		zap.Int("wines", len(req.Wines)),
		zap.Int("recommendations", len(recs)),
	)

	return domain.RatingResult{
		Recommendations: recs,
		PromptTokens:    usage.PromptTokens,
		TotalTokens:     usage.TotalTokens,
	}, nil
}

// HealthCheck implements domain.HealthChecker.
func (r *Rater) HealthCheck(ctx context.Context) error {
	return r.chat.HealthCheck(ctx)
}

// promptWine is the wine shape echoed to the model; the id must come back as wineId.
type promptWine struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Producer        string   `json:"producer,omitempty"`
	Region          string   `json:"region,omitempty"`
	Country         string   `json:"country,omitempty"`
	Grape           string   `json:"grape,omitempty"`
	Vintage         string   `json:"vintage,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	Currency        string   `json:"currency,omitempty"`
	ByGlassOrBottle string   `json:"byGlassOrBottle,omitempty"`
	Section         string   `json:"section,omitempty"`
	RawText         string   `json:"rawText"`
}

func toPromptWines(items []wine.Item) []promptWine {
	out := make([]promptWine, 0, len(items))
	for _, w := range items {
		out = append(out, promptWine{
			ID:              w.ID,
			Name:            w.Name,
			Producer:        w.Producer,
			Region:          w.Region,
			Country:         w.Country,
			Grape:           w.Grape,
			Vintage:         w.Vintage,
			Price:           w.Price,
			Currency:        w.Currency,
			ByGlassOrBottle: string(w.ByGlassOrBottle),
			Section:         w.Section,
			RawText:         w.RawText,
		})
	}
	return out
}

func buildRatingPrompt(req domain.RatingRequest) (string, error) {
	winesJSON, err := json.MarshalIndent(toPromptWines(req.Wines), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal wines: %w", err)
	}

	personaSummary := "No personas supplied."
	if len(req.Personas) > 0 {
		lines := make([]string, 0, len(req.Personas))
		for _, p := range req.Personas {
			lines = append(lines, summarizePersona(p))
		}
		personaSummary = strings.Join(lines, "\n")
	}

	return strings.Join([]string{
		"Consider the following tasting personas and user preferences.",
		"",
		"Personas:",
		personaSummary,
		"",
		"Global Preferences:",
		summarizePreferences(req.Preferences),
		"",
		"Wines to evaluate (each wine has an id you must echo in the response):",
		string(winesJSON),
		"",
		`Return a JSON object { "recommendations": Recommendation[] } sorted by score (highest first). ` +
			"Each recommendation must include wineId, score (0-100),",
		"a concise reason, and 1-4 descriptive tags. Ensure every wine in the batch appears once.",
	}, "\n"), nil
}

func summarizePersona(p cellar.Persona) string {
	parts := []string{fmt.Sprintf("- %s: prefers %s wines (%s body, %s tannin, %s acidity, %s sweetness).",
		p.Name(), p.Color(), p.Body(), p.Tannin(), p.Acidity(), p.Sweetness())}

	if len(p.Grapes()) > 0 {
		parts = append(parts, "Grapes: "+strings.Join(p.Grapes(), ", ")+".")
	} else {
		parts = append(parts, "Grapes: flexible.")
	}
	if len(p.FoodPairingTags()) > 0 {
		parts = append(parts, "Food tags: "+strings.Join(p.FoodPairingTags(), ", ")+".")
	}
	parts = append(parts, priceRange("Price target", p.MinPrice(), p.MaxPrice()))
	if n := p.Notes(); n != nil && *n != "" {
		parts = append(parts, "Notes: "+*n)
	}
	return strings.Join(parts, " ")
}

func summarizePreferences(prefs *cellar.Preferences) string {
	if prefs == nil {
		return "No stored user preferences. Default to balanced recommendations."
	}

	grapes := "Favorites: open."
	if len(prefs.FavoriteGrapes()) > 0 {
		grapes = "Favorites: " + strings.Join(prefs.FavoriteGrapes(), ", ") + "."
	}
	return fmt.Sprintf("%s Quality tier: %s. Risk tolerance: %s. %s",
		grapes, prefs.QualityTier(), prefs.RiskTolerance(),
		priceRange("Usual budget", prefs.UsualBudgetMin(), prefs.UsualBudgetMax()))
}

// priceRange renders "label: min - max." with "?" for an open bound. Zero counts as unset.
func priceRange(label string, minP, maxP *float64) string {
	if !positive(minP) && !positive(maxP) {
		return label + ": flexible."
	}
	return fmt.Sprintf("%s: %s - %s.", label, formatBound(minP), formatBound(maxP))
}

func positive(v *float64) bool { return v != nil && *v != 0 }

func formatBound(v *float64) string {
	if v == nil {
		return "?"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// parseRecommendations decodes the model reply. Entries without a wine id,
// a reason or a finite score are skipped.
func parseRecommendations(content string) ([]scoring.Recommendation, error) {
	var payload struct {
		Recommendations []json.RawMessage `json:"recommendations"`
	}
	if err := json.Unmarshal([]byte(cleanJSON(content)), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	recs := make([]scoring.Recommendation, 0, len(payload.Recommendations))
	for _, raw := range payload.Recommendations {
		var entry map[string]any
		if json.Unmarshal(raw, &entry) != nil || entry == nil {
			continue
		}

		wineID, _ := entry["wineId"].(string)
		reason, _ := entry["reason"].(string)
		score, isNumber := entry["score"].(float64)
		wineID = strings.TrimSpace(wineID)
		reason = strings.TrimSpace(reason)
		if wineID == "" || reason == "" || !isNumber || math.IsNaN(score) || math.IsInf(score, 0) {
			continue
		}

		recs = append(recs, scoring.Recommendation{
			WineID: wineID,
			Score:  scoring.ClampScore(score),
			Reason: reason,
			Tags:   stringTags(entry["tags"]),
		})
	}
	return recs, nil
}

// stringTags returns de-duplicated tags, or none when any element is not a string.
func stringTags(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return []string{}
	}
	tags := make([]string, 0, len(list))
	for _, t := range list {
		s, isString := t.(string)
		if !isString {
			return []string{}
		}
		tags = append(tags, s)
	}
	return scoring.UniqueTags(tags)
}
