package chi

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/giuliontini/SoDiVino/internal/domain/cellar"
	"github.com/giuliontini/SoDiVino/internal/domain/preference"
	"github.com/giuliontini/SoDiVino/internal/domain/scoring"
	"github.com/giuliontini/SoDiVino/internal/domain/session"
	domusage "github.com/giuliontini/SoDiVino/internal/domain/usage"
	"github.com/giuliontini/SoDiVino/internal/domain/wine"
)

// ErrorCode is the machine-readable error code of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	CodeBadRequest       ErrorCode = "bad_request"
	CodeValidationFailed ErrorCode = "validation_failed"
	CodeUnauthenticated  ErrorCode = "unauthenticated"
	CodeNotFound         ErrorCode = "not_found"
	CodePayloadTooLarge  ErrorCode = "payload_too_large"
	CodeRateLimited      ErrorCode = "rate_limited"
	CodeQuotaExceeded    ErrorCode = "llm_quota_exceeded"
	CodeLLMUnavailable   ErrorCode = "llm_unavailable"
	CodeLLMProviderError ErrorCode = "llm_provider_error"
	CodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// --- responses ---

type profileResponse struct {
	ID          string  `json:"id"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	Color       string  `json:"color"`
	Body        string  `json:"body"`
	Sweetness   string  `json:"sweetness"`
	Acidity     string  `json:"acidity"`
	Budget      float64 `json:"budget"`
}

func profileToResponse(p preference.Profile) profileResponse {
	return profileResponse{
		ID:          p.ID,
		Label:       p.Label,
		Description: p.Description,
		Color:       string(p.Color),
		Body:        string(p.Body),
		Sweetness:   string(p.Sweetness),
		Acidity:     string(p.Acidity),
		Budget:      p.Budget,
	}
}

type lineItemResponse struct {
	Name      string   `json:"name"`
	Color     string   `json:"color"`
	Body      string   `json:"body"`
	Sweetness string   `json:"sweetness"`
	Acidity   string   `json:"acidity"`
	Price     *float64 `json:"price"`
	Notes     string   `json:"notes"`
}

type scoredWineResponse struct {
	Wine    lineItemResponse `json:"wine"`
	Score   float64          `json:"score"`
	Reasons []string         `json:"reasons"`
}

func scoredToResponse(sw scoring.ScoredWine) scoredWineResponse {
	reasons := sw.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return scoredWineResponse{
		Wine: lineItemResponse{
			Name:      sw.Wine.Name,
			Color:     string(sw.Wine.Color),
			Body:      string(sw.Wine.Body),
			Sweetness: string(sw.Wine.Sweetness),
			Acidity:   string(sw.Wine.Acidity),
			Price:     sw.Wine.Price,
			Notes:     sw.Wine.Notes,
		},
		Score:   sw.Score,
		Reasons: reasons,
	}
}

type wineItemResponse struct {
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

func wineToResponse(w wine.Item) wineItemResponse {
	return wineItemResponse{
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
	}
}

type recommendationResponse struct {
	WineID string   `json:"wineId"`
	Score  float64  `json:"score"`
	Reason string   `json:"reason"`
	Tags   []string `json:"tags"`
}

func recommendationToResponse(r scoring.Recommendation) recommendationResponse {
	tags := r.Tags
	if tags == nil {
		tags = []string{}
	}
	return recommendationResponse{WineID: r.WineID, Score: r.Score, Reason: r.Reason, Tags: tags}
}

type personaResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Name            string    `json:"name"`
	Color           string    `json:"color"`
	Grapes          []string  `json:"grapes"`
	Body            string    `json:"body"`
	Tannin          string    `json:"tannin"`
	Acidity         string    `json:"acidity"`
	Sweetness       string    `json:"sweetness"`
	FoodPairingTags []string  `json:"food_pairing_tags"`
	MinPrice        *float64  `json:"min_price"`
	MaxPrice        *float64  `json:"max_price"`
	Notes           *string   `json:"notes"`
	IsDefault       bool      `json:"is_default"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func personaToResponse(p cellar.Persona) personaResponse {
	return personaResponse{
		ID:              p.ID(),
		UserID:          p.UserID(),
		Name:            p.Name(),
		Color:           string(p.Color()),
		Grapes:          nonNil(p.Grapes()),
		Body:            string(p.Body()),
		Tannin:          string(p.Tannin()),
		Acidity:         string(p.Acidity()),
		Sweetness:       string(p.Sweetness()),
		FoodPairingTags: nonNil(p.FoodPairingTags()),
		MinPrice:        p.MinPrice(),
		MaxPrice:        p.MaxPrice(),
		Notes:           p.Notes(),
		IsDefault:       p.IsDefault(),
		CreatedAt:       millis(p.CreatedAt()),
		UpdatedAt:       millis(p.UpdatedAt()),
	}
}

type preferencesResponse struct {
	UserID         string    `json:"user_id"`
	FavoriteGrapes []string  `json:"favorite_grapes"`
	QualityTier    string    `json:"quality_tier"`
	UsualBudgetMin *float64  `json:"usual_budget_min"`
	UsualBudgetMax *float64  `json:"usual_budget_max"`
	RiskTolerance  string    `json:"risk_tolerance"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func preferencesToResponse(p cellar.Preferences) preferencesResponse {
	return preferencesResponse{
		UserID:         p.UserID(),
		FavoriteGrapes: nonNil(p.FavoriteGrapes()),
		QualityTier:    string(p.QualityTier()),
		UsualBudgetMin: p.UsualBudgetMin(),
		UsualBudgetMax: p.UsualBudgetMax(),
		RiskTolerance:  string(p.RiskTolerance()),
		CreatedAt:      millis(p.CreatedAt()),
		UpdatedAt:      millis(p.UpdatedAt()),
	}
}

type tasteProfileResponse struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	ProfileName         string    `json:"profile_name"`
	PreferredStyles     []string  `json:"preferred_styles"`
	SweetnessPreference string    `json:"sweetness_preference"`
	Adventurousness     string    `json:"adventurousness"`
	BudgetFocus         string    `json:"budget_focus"`
	OccasionTags        []string  `json:"occasion_tags"`
	FavoriteRegions     []string  `json:"favorite_regions"`
	Notes               *string   `json:"notes"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func tasteProfileToResponse(t *cellar.TasteProfile) *tasteProfileResponse {
	if t == nil {
		return nil
	}
	return &tasteProfileResponse{
		ID:                  t.ID(),
		UserID:              t.UserID(),
		ProfileName:         t.ProfileName(),
		PreferredStyles:     nonNil(t.PreferredStyles()),
		SweetnessPreference: string(t.SweetnessPreference()),
		Adventurousness:     string(t.Adventurousness()),
		BudgetFocus:         string(t.BudgetFocus()),
		OccasionTags:        nonNil(t.OccasionTags()),
		FavoriteRegions:     nonNil(t.FavoriteRegions()),
		Notes:               t.Notes(),
		CreatedAt:           millis(t.CreatedAt()),
		UpdatedAt:           millis(t.UpdatedAt()),
	}
}

type sessionResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	RestaurantName  *string   `json:"restaurant_name"`
	ParsedListID    *string   `json:"parsed_list_id"`
	UploadReference *string   `json:"upload_reference"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func sessionToResponse(s *session.MenuSession) *sessionResponse {
	if s == nil {
		return nil
	}
	return &sessionResponse{
		ID:              s.ID(),
		UserID:          s.UserID(),
		RestaurantName:  s.RestaurantName(),
		ParsedListID:    s.ParsedListID(),
		UploadReference: s.UploadReference(),
		Status:          s.Status(),
		CreatedAt:       millis(s.CreatedAt()),
		UpdatedAt:       millis(s.UpdatedAt()),
	}
}

type usageResponse struct {
	Provider      string      `json:"provider"`
	Period        string      `json:"period"`
	PeriodStartAt *time.Time  `json:"period_start_at,omitempty"`
	PeriodEndAt   *time.Time  `json:"period_end_at,omitempty"`
	Usage         usageTokens `json:"usage"`
	Budget        usageBudget `json:"budget"`
}

type usageTokens struct {
	Tokens           int64  `json:"tokens"`
	CostMillidollars *int64 `json:"cost_millidollars,omitempty"`
}

type usageBudget struct {
	TokensLimit     int64      `json:"tokens_limit"`
	TokensRemaining int64      `json:"tokens_remaining"`
	IsExhausted     bool       `json:"is_exhausted"`
	ResetsAt        *time.Time `json:"resets_at,omitempty"`
}

func usageToResponse(report domusage.Report) usageResponse {
	resp := usageResponse{
		Provider: report.Provider(),
		Period:   string(report.Period()),
		Usage:    usageTokens{Tokens: report.Metrics().Tokens()},
		Budget: usageBudget{
			TokensLimit:     report.Budget().TokensLimit(),
			TokensRemaining: report.Budget().TokensRemaining(),
			IsExhausted:     report.Budget().IsExhausted(),
		},
	}

	if cost := report.Metrics().CostMillidollars(); cost > 0 {
		resp.Usage.CostMillidollars = &cost
	}
	if report.PeriodStart() > 0 {
		start, end := millis(report.PeriodStart()), millis(report.PeriodEnd())
		resp.PeriodStartAt = &start
		resp.PeriodEndAt = &end
	}
	if report.Budget().ResetsAt() > 0 {
		resetsAt := millis(report.Budget().ResetsAt())
		resp.Budget.ResetsAt = &resetsAt
	}
	return resp
}

// --- loosely typed request bodies ---

func millis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func stringField(body map[string]any, key string) string {
	s, _ := body[key].(string)
	return s
}

// optionalString keeps strings, everything else is nil.
func optionalString(body map[string]any, key string) *string {
	s, ok := body[key].(string)
	if !ok {
		return nil
	}
	return &s
}

// stringList accepts a JSON array of strings or a comma-separated string.
// Non-string array members are skipped.
func stringList(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return strings.Split(t, ",")
	default:
		return nil
	}
}

// nullableNumber accepts numbers and numeric strings. Empty, null and
// non-finite values are nil.
func nullableNumber(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// adventurousness reads a 0-10 level. Fractions truncate toward zero; zero,
// blank and non-numeric input leave the default in place.
func adventurousness(raw string) *int {
	f := nullableNumber(raw)
	if f == nil || *f == 0 {
		return nil
	}
	n := int(max(0, min(10, *f)))
	return &n
}

func personaInputFromBody(body map[string]any) cellar.PersonaInput {
	isDefault := body["is_default"] == true || body["is_default"] == "true"
	var notes *string
	if s := optionalString(body, "notes"); s != nil {
		trimmed := strings.TrimSpace(*s)
		notes = &trimmed
	}
	return cellar.PersonaInput{
		Name:            stringField(body, "name"),
		Color:           stringField(body, "color"),
		Grapes:          stringList(body["grapes"]),
		Body:            stringField(body, "body"),
		Tannin:          stringField(body, "tannin"),
		Acidity:         stringField(body, "acidity"),
		Sweetness:       stringField(body, "sweetness"),
		FoodPairingTags: stringList(body["food_pairing_tags"]),
		MinPrice:        nullableNumber(body["min_price"]),
		MaxPrice:        nullableNumber(body["max_price"]),
		Notes:           notes,
		IsDefault:       isDefault,
	}
}

func preferencesInputFromBody(body map[string]any) cellar.PreferencesInput {
	return cellar.PreferencesInput{
		FavoriteGrapes: stringList(body["favorite_grapes"]),
		QualityTier:    stringField(body, "quality_tier"),
		UsualBudgetMin: nullableNumber(body["usual_budget_min"]),
		UsualBudgetMax: nullableNumber(body["usual_budget_max"]),
		RiskTolerance:  stringField(body, "risk_tolerance"),
	}
}

// tasteProfileInputFromBody only takes list fields given as arrays.
func tasteProfileInputFromBody(body map[string]any) cellar.TasteProfileInput {
	list := func(key string) []string {
		if _, ok := body[key].([]any); !ok {
			return nil
		}
		return stringList(body[key])
	}
	return cellar.TasteProfileInput{
		ProfileName:         stringField(body, "profile_name"),
		PreferredStyles:     list("preferred_styles"),
		SweetnessPreference: stringField(body, "sweetness_preference"),
		Adventurousness:     stringField(body, "adventurousness"),
		BudgetFocus:         stringField(body, "budget_focus"),
		OccasionTags:        list("occasion_tags"),
		FavoriteRegions:     list("favorite_regions"),
		Notes:               optionalString(body, "notes"),
	}
}

func sessionInputFromBody(body map[string]any) session.Input {
	return session.Input{
		RestaurantName:  optionalString(body, "restaurant_name"),
		ParsedListID:    optionalString(body, "parsed_list_id"),
		UploadReference: optionalString(body, "upload_reference"),
		Status:          optionalString(body, "status"),
	}
}
