package cellar

import (
	"errors"
	"strings"
	"time"
)

// Validation errors returned by NewPersona.
var (
	ErrNameRequired = errors.New("name is required")
	ErrInvalidColor = errors.New("invalid color")
)

// PersonaInput is the client-supplied persona shape before validation.
type PersonaInput struct {
	Name            string
	Color           string
	Grapes          []string
	Body            string
	Tannin          string
	Acidity         string
	Sweetness       string
	FoodPairingTags []string
	MinPrice        *float64
	MaxPrice        *float64
	Notes           *string
	IsDefault       bool
}

// Persona is a named tasting style a user drinks for (e.g. "Friday steak night").
type Persona struct {
	id              string
	userID          string
	name            string
	color           Color
	grapes          []string
	body            Body
	tannin          Intensity
	acidity         Intensity
	sweetness       Sweetness
	foodPairingTags []string
	minPrice        *float64
	maxPrice        *float64
	notes           *string
	isDefault       bool
	createdAt       int64
	updatedAt       int64
}

// NewPersona validates input. Name and color are mandatory; the other enums fall
// back to unknown. List fields are trimmed and empty entries dropped.
func NewPersona(id, userID string, in PersonaInput, now time.Time) (Persona, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Persona{}, ErrNameRequired
	}
	color := Color(in.Color)
	if !color.IsValid() {
		return Persona{}, ErrInvalidColor
	}

	var notes *string
	if in.Notes != nil {
		n := strings.TrimSpace(*in.Notes)
		notes = &n
	}

	ts := now.UnixMilli()
	return Persona{
		id:              id,
		userID:          userID,
		name:            name,
		color:           color,
		grapes:          CleanStrings(in.Grapes),
		body:            ParseBody(in.Body),
		tannin:          ParseIntensity(in.Tannin),
		acidity:         ParseIntensity(in.Acidity),
		sweetness:       ParseSweetness(in.Sweetness),
		foodPairingTags: CleanStrings(in.FoodPairingTags),
		minPrice:        in.MinPrice,
		maxPrice:        in.MaxPrice,
		notes:           notes,
		isDefault:       in.IsDefault,
		createdAt:       ts,
		updatedAt:       ts,
	}, nil
}

// ReconstructPersona restores a persona from storage without validation.
func ReconstructPersona(
	id, userID, name string, color Color, grapes []string,
	body Body, tannin, acidity Intensity, sweetness Sweetness,
	foodPairingTags []string, minPrice, maxPrice *float64, notes *string,
	isDefault bool, createdAt, updatedAt int64,
) Persona {
	return Persona{
		id: id, userID: userID, name: name, color: color, grapes: grapes,
		body: body, tannin: tannin, acidity: acidity, sweetness: sweetness,
		foodPairingTags: foodPairingTags, minPrice: minPrice, maxPrice: maxPrice,
		notes: notes, isDefault: isDefault, createdAt: createdAt, updatedAt: updatedAt,
	}
}

// ID returns the persona id.
func (p Persona) ID() string { return p.id }

// UserID returns the owner id.
func (p Persona) UserID() string { return p.userID }

// Name returns the display name.
func (p Persona) Name() string { return p.name }

// Color returns the preferred color.
func (p Persona) Color() Color { return p.color }

// Grapes returns preferred grape varieties.
func (p Persona) Grapes() []string { return p.grapes }

// Body returns the preferred body.
func (p Persona) Body() Body { return p.body }

// Tannin returns the preferred tannin level.
func (p Persona) Tannin() Intensity { return p.tannin }

// Acidity returns the preferred acidity level.
func (p Persona) Acidity() Intensity { return p.acidity }

// Sweetness returns the preferred sweetness.
func (p Persona) Sweetness() Sweetness { return p.sweetness }

// FoodPairingTags returns food tags.
func (p Persona) FoodPairingTags() []string { return p.foodPairingTags }

// MinPrice returns the lower price target, nil when open.
func (p Persona) MinPrice() *float64 { return p.minPrice }

// MaxPrice returns the upper price target, nil when open.
func (p Persona) MaxPrice() *float64 { return p.maxPrice }

// Notes returns free-form notes.
func (p Persona) Notes() *string { return p.notes }

// IsDefault reports whether this is the user's default persona.
func (p Persona) IsDefault() bool { return p.isDefault }

// CreatedAt returns the creation timestamp (unix millis).
func (p Persona) CreatedAt() int64 { return p.createdAt }

// UpdatedAt returns the last update timestamp (unix millis).
func (p Persona) UpdatedAt() int64 { return p.updatedAt }

// WithDefault returns a copy with the default flag changed.
func (p Persona) WithDefault(isDefault bool, now time.Time) Persona {
	p.isDefault = isDefault
	p.updatedAt = now.UnixMilli()
	return p
}

// Replace returns a copy carrying the fields of next while keeping identity and creation time.
func (p Persona) Replace(next Persona) Persona {
	next.id = p.id
	next.userID = p.userID
	next.createdAt = p.createdAt
	return next
}

// CleanStrings trims entries and drops empty ones. Always returns a non-nil slice.
func CleanStrings(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// DedupeStrings is CleanStrings plus removal of duplicates, keeping first occurrence order.
func DedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range CleanStrings(values) {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
