package cellar

import (
	"strings"
	"time"
)

// DefaultTasteProfileName is used when the client sends no name.
const DefaultTasteProfileName = "Primary profile"

// SweetnessPreference is the onboarding sweetness answer.
type SweetnessPreference string

// SweetnessPreference constants.
const (
	PrefDry      SweetnessPreference = "dry"
	PrefOffDry   SweetnessPreference = "off_dry"
	PrefSweet    SweetnessPreference = "sweet"
	PrefFlexible SweetnessPreference = "flexible"
)

// Adventurousness is the onboarding adventurousness answer.
type Adventurousness string

// Adventurousness constants.
const (
	AdventureClassic  Adventurousness = "classic"
	AdventureBalanced Adventurousness = "balanced"
	AdventureBold     Adventurousness = "bold"
)

// BudgetFocus is the onboarding budget answer.
type BudgetFocus string

// BudgetFocus constants.
const (
	BudgetValue    BudgetFocus = "value"
	BudgetBalanced BudgetFocus = "balanced"
	BudgetPremium  BudgetFocus = "premium"
)

// TasteProfileInput is the onboarding questionnaire payload.
type TasteProfileInput struct {
	ProfileName         string
	PreferredStyles     []string
	SweetnessPreference string
	Adventurousness     string
	BudgetFocus         string
	OccasionTags        []string
	FavoriteRegions     []string
	Notes               *string
}

// TasteProfile is the questionnaire result a user fills in during onboarding.
type TasteProfile struct {
	id                  string
	userID              string
	profileName         string
	preferredStyles     []string
	sweetnessPreference SweetnessPreference
	adventurousness     Adventurousness
	budgetFocus         BudgetFocus
	occasionTags        []string
	favoriteRegions     []string
	notes               *string
	createdAt           int64
	updatedAt           int64
}

// NewTasteProfile normalizes questionnaire input.
func NewTasteProfile(id, userID string, in TasteProfileInput, now time.Time) TasteProfile {
	name := strings.TrimSpace(in.ProfileName)
	if name == "" {
		name = DefaultTasteProfileName
	}
	ts := now.UnixMilli()
	return TasteProfile{
		id:                  id,
		userID:              userID,
		profileName:         name,
		preferredStyles:     DedupeStrings(in.PreferredStyles),
		sweetnessPreference: parseSweetnessPreference(in.SweetnessPreference),
		adventurousness:     parseAdventurousness(in.Adventurousness),
		budgetFocus:         parseBudgetFocus(in.BudgetFocus),
		occasionTags:        DedupeStrings(in.OccasionTags),
		favoriteRegions:     DedupeStrings(in.FavoriteRegions),
		notes:               in.Notes,
		createdAt:           ts,
		updatedAt:           ts,
	}
}

// ReconstructTasteProfile restores a profile from storage.
func ReconstructTasteProfile(
	id, userID, name string, styles []string, sweetness SweetnessPreference,
	adventurousness Adventurousness, budget BudgetFocus, occasions, regions []string,
	notes *string, createdAt, updatedAt int64,
) TasteProfile {
	return TasteProfile{
		id: id, userID: userID, profileName: name, preferredStyles: styles,
		sweetnessPreference: sweetness, adventurousness: adventurousness, budgetFocus: budget,
		occasionTags: occasions, favoriteRegions: regions, notes: notes,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

func parseSweetnessPreference(s string) SweetnessPreference {
	switch v := SweetnessPreference(s); v {
	case PrefOffDry, PrefSweet, PrefFlexible:
		return v
	}
	return PrefDry
}

func parseAdventurousness(s string) Adventurousness {
	switch v := Adventurousness(s); v {
	case AdventureClassic, AdventureBold:
		return v
	}
	return AdventureBalanced
}

func parseBudgetFocus(s string) BudgetFocus {
	switch v := BudgetFocus(s); v {
	case BudgetValue, BudgetPremium:
		return v
	}
	return BudgetBalanced
}

// ID returns the profile id.
func (t TasteProfile) ID() string { return t.id }

// UserID returns the owner id.
func (t TasteProfile) UserID() string { return t.userID }

// ProfileName returns the display name.
func (t TasteProfile) ProfileName() string { return t.profileName }

// PreferredStyles returns the chosen styles, most important first.
func (t TasteProfile) PreferredStyles() []string { return t.preferredStyles }

// SweetnessPreference returns the sweetness answer.
func (t TasteProfile) SweetnessPreference() SweetnessPreference { return t.sweetnessPreference }

// Adventurousness returns the adventurousness answer.
func (t TasteProfile) Adventurousness() Adventurousness { return t.adventurousness }

// BudgetFocus returns the budget answer.
func (t TasteProfile) BudgetFocus() BudgetFocus { return t.budgetFocus }

// OccasionTags returns occasion tags.
func (t TasteProfile) OccasionTags() []string { return t.occasionTags }

// FavoriteRegions returns favorite regions.
func (t TasteProfile) FavoriteRegions() []string { return t.favoriteRegions }

// Notes returns free-form notes.
func (t TasteProfile) Notes() *string { return t.notes }

// CreatedAt returns the creation timestamp (unix millis).
func (t TasteProfile) CreatedAt() int64 { return t.createdAt }

// UpdatedAt returns the last update timestamp (unix millis).
func (t TasteProfile) UpdatedAt() int64 { return t.updatedAt }

// ToPersona derives the single persona a taste profile stands for.
func (t TasteProfile) ToPersona() Persona {
	style := ColorAny
	var lead string
	if len(t.preferredStyles) > 0 {
		lead = strings.ToLower(t.preferredStyles[0])
		style = styleColor(lead)
	}

	var minPrice *float64
	if t.budgetFocus == BudgetValue {
		zero := 0.0
		minPrice = &zero
	}

	return Persona{
		id:              "taste-profile-" + t.id,
		userID:          t.userID,
		name:            t.profileName,
		color:           style,
		grapes:          []string{},
		body:            styleBody(lead),
		tannin:          IntensityUnknown,
		acidity:         IntensityUnknown,
		sweetness:       preferenceSweetness(t.sweetnessPreference),
		foodPairingTags: t.occasionTags,
		minPrice:        minPrice,
		notes:           t.notes,
		isDefault:       true,
		createdAt:       t.createdAt,
		updatedAt:       t.updatedAt,
	}
}

// ToPreferences derives global preferences from a taste profile.
func (t TasteProfile) ToPreferences() Preferences {
	tier := QualityEveryday
	switch t.budgetFocus {
	case BudgetPremium:
		tier = QualitySpecial
	case BudgetValue:
		tier = QualityValue
	}

	var budgetMin *float64
	if t.budgetFocus == BudgetValue {
		zero := 0.0
		budgetMin = &zero
	}

	risk := RiskAdventurous
	switch t.adventurousness {
	case AdventureBold:
		risk = RiskAnythingGoes
	case AdventureClassic:
		risk = RiskSafe
	}

	return Preferences{
		userID:         t.userID,
		favoriteGrapes: []string{},
		qualityTier:    tier,
		usualBudgetMin: budgetMin,
		riskTolerance:  risk,
		createdAt:      t.createdAt,
		updatedAt:      t.updatedAt,
	}
}

func styleColor(style string) Color {
	switch {
	case strings.Contains(style, "red"):
		return ColorRed
	case strings.Contains(style, "white"):
		return ColorWhite
	case strings.Contains(style, "sparkling"), strings.Contains(style, "bubbles"):
		return ColorSparkling
	case strings.Contains(style, "rose"):
		return ColorRose
	}
	return ColorAny
}

func styleBody(style string) Body {
	switch {
	case strings.Contains(style, "sparkling"), strings.Contains(style, "white"):
		return BodyLight
	case strings.Contains(style, "red"):
		return BodyMedium
	}
	return BodyUnknown
}

func preferenceSweetness(p SweetnessPreference) Sweetness {
	switch p {
	case PrefOffDry:
		return SweetnessOffDry
	case PrefSweet:
		return SweetnessSweet
	case PrefFlexible:
		return SweetnessUnknown
	}
	return SweetnessDry
}
