package cellar

import "time"

// PreferencesInput is the client-supplied preferences shape.
type PreferencesInput struct {
	FavoriteGrapes []string
	QualityTier    string
	UsualBudgetMin *float64
	UsualBudgetMax *float64
	RiskTolerance  string
}

// Preferences are a user's global wine habits, shared across personas.
type Preferences struct {
	userID         string
	favoriteGrapes []string
	qualityTier    QualityTier
	usualBudgetMin *float64
	usualBudgetMax *float64
	riskTolerance  RiskTolerance
	createdAt      int64
	updatedAt      int64
}

// NewPreferences normalizes input; invalid enum values fall back to defaults.
func NewPreferences(userID string, in PreferencesInput, now time.Time) Preferences {
	ts := now.UnixMilli()
	return Preferences{
		userID:         userID,
		favoriteGrapes: CleanStrings(in.FavoriteGrapes),
		qualityTier:    ParseQualityTier(in.QualityTier),
		usualBudgetMin: in.UsualBudgetMin,
		usualBudgetMax: in.UsualBudgetMax,
		riskTolerance:  ParseRiskTolerance(in.RiskTolerance),
		createdAt:      ts,
		updatedAt:      ts,
	}
}

// DefaultPreferences returns the preferences created on first read.
func DefaultPreferences(userID string, now time.Time) Preferences {
	return NewPreferences(userID, PreferencesInput{}, now)
}

// ReconstructPreferences restores preferences from storage.
func ReconstructPreferences(
	userID string, favoriteGrapes []string, tier QualityTier,
	budgetMin, budgetMax *float64, risk RiskTolerance, createdAt, updatedAt int64,
) Preferences {
	return Preferences{
		userID: userID, favoriteGrapes: favoriteGrapes, qualityTier: tier,
		usualBudgetMin: budgetMin, usualBudgetMax: budgetMax, riskTolerance: risk,
		createdAt: createdAt, updatedAt: updatedAt,
	}
}

// UserID returns the owner id.
func (p Preferences) UserID() string { return p.userID }

// FavoriteGrapes returns favorite grape varieties.
func (p Preferences) FavoriteGrapes() []string { return p.favoriteGrapes }

// QualityTier returns the usual spend tier.
func (p Preferences) QualityTier() QualityTier { return p.qualityTier }

// UsualBudgetMin returns the lower usual budget, nil when open.
func (p Preferences) UsualBudgetMin() *float64 { return p.usualBudgetMin }

// UsualBudgetMax returns the upper usual budget, nil when open.
func (p Preferences) UsualBudgetMax() *float64 { return p.usualBudgetMax }

// RiskTolerance returns the risk tolerance.
func (p Preferences) RiskTolerance() RiskTolerance { return p.riskTolerance }

// CreatedAt returns the creation timestamp (unix millis).
func (p Preferences) CreatedAt() int64 { return p.createdAt }

// UpdatedAt returns the last update timestamp (unix millis).
func (p Preferences) UpdatedAt() int64 { return p.updatedAt }

// WithinBudget reports whether price falls inside the usual budget. Open bounds always pass.
func (p Preferences) WithinBudget(price float64) bool {
	if p.usualBudgetMin != nil && price < *p.usualBudgetMin {
		return false
	}
	if p.usualBudgetMax != nil && price > *p.usualBudgetMax {
		return false
	}
	return true
}

// Replace returns next with this record's creation time.
func (p Preferences) Replace(next Preferences) Preferences {
	next.createdAt = p.createdAt
	return next
}
