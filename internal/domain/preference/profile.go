// Package preference describes what a drinker wants: the stylistic profile a wine
// is scored against and the per-request overrides layered on top of it.
package preference

import (
	"fmt"
	"strings"

	"github.com/giuliontini/SoDiVino/internal/domain/wine"
)

// Any is the wildcard accepted by every stylistic field of a Profile.
const Any = "any"

// Wildcard values for the typed profile fields.
const (
	AnyColor     wine.Color     = Any
	AnyBody      wine.Body      = Any
	AnySweetness wine.Sweetness = Any
	AnyAcidity   wine.Acidity   = Any
)

// DefaultAdventurousness applies when neither the profile nor the request sets one.
const DefaultAdventurousness = 3

// Profile is the preference set a wine is scored against.
// Stylistic fields hold either a concrete value or the Any wildcard.
type Profile struct {
	ID              string
	Label           string
	Description     string
	Color           wine.Color
	Body            wine.Body
	Sweetness       wine.Sweetness
	Acidity         wine.Acidity
	Budget          float64
	DislikedTerms   []string
	Adventurousness int
}

// Validate checks the profile invariants.
func (p Profile) Validate() error {
	if p.Color != AnyColor && (!p.Color.IsValid() || p.Color == wine.ColorUnknown) {
		return fmt.Errorf("invalid profile color %q", p.Color)
	}
	if p.Body != AnyBody && !p.Body.IsValid() {
		return fmt.Errorf("invalid profile body %q", p.Body)
	}
	if p.Sweetness != AnySweetness && !p.Sweetness.IsValid() {
		return fmt.Errorf("invalid profile sweetness %q", p.Sweetness)
	}
	if p.Acidity != AnyAcidity && !p.Acidity.IsValid() {
		return fmt.Errorf("invalid profile acidity %q", p.Acidity)
	}
	if p.Budget < 0 {
		return fmt.Errorf("profile budget must not be negative, got %v", p.Budget)
	}
	if p.Adventurousness < 0 || p.Adventurousness > 10 {
		return fmt.Errorf("profile adventurousness must be between 0 and 10, got %d", p.Adventurousness)
	}
	return nil
}

// ProfileSpec is the raw, string-typed form of a profile as it arrives from
// configuration or a client.
type ProfileSpec struct {
	ID              string
	Label           string
	Description     string
	Color           string
	Body            string
	Sweetness       string
	Acidity         string
	Budget          float64
	DislikedTerms   []string
	Adventurousness *int
}

// NewProfile parses and validates a ProfileSpec. Empty stylistic fields mean Any.
func NewProfile(s ProfileSpec) (Profile, error) {
	p := Profile{
		ID:              s.ID,
		Label:           s.Label,
		Description:     s.Description,
		Budget:          s.Budget,
		DislikedTerms:   NormalizeTerms(s.DislikedTerms),
		Adventurousness: DefaultAdventurousness,
	}
	if s.Adventurousness != nil {
		p.Adventurousness = *s.Adventurousness
	}

	var err error
	if p.Color, err = parseOrAny(s.Color, AnyColor, wine.ParseColor); err != nil {
		return Profile{}, err
	}
	if p.Body, err = parseOrAny(s.Body, AnyBody, wine.ParseBody); err != nil {
		return Profile{}, err
	}
	if p.Sweetness, err = parseOrAny(s.Sweetness, AnySweetness, wine.ParseSweetness); err != nil {
		return Profile{}, err
	}
	if p.Acidity, err = parseOrAny(s.Acidity, AnyAcidity, wine.ParseAcidity); err != nil {
		return Profile{}, err
	}

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func parseOrAny[T ~string](raw string, anyValue T, parse func(string) (T, error)) (T, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" || v == Any {
		return anyValue, nil
	}
	return parse(v)
}

// NormalizeTerms lower-cases and trims terms, dropping empties.
func NormalizeTerms(terms []string) []string {
	if terms == nil {
		return nil
	}
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// SplitTerms parses a comma-separated list of disliked terms.
func SplitTerms(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return []string{}
	}
	return NormalizeTerms(strings.Split(csv, ","))
}

// Overrides are per-request values that take precedence over the profile.
// A nil field (or nil slice) means "use the profile value".
type Overrides struct {
	Budget          *float64
	DislikedTerms   []string
	Adventurousness *int
}

// Effective is the resolved view the scorer works with.
type Effective struct {
	Budget          float64
	DislikedTerms   []string
	Adventurousness int
}

// Resolve merges overrides over the profile and clamps adventurousness to 0..10.
func Resolve(p Profile, o Overrides) Effective {
	e := Effective{
		Budget:          p.Budget,
		DislikedTerms:   p.DislikedTerms,
		Adventurousness: p.Adventurousness,
	}
	if o.Budget != nil {
		e.Budget = *o.Budget
	}
	if o.DislikedTerms != nil {
		e.DislikedTerms = o.DislikedTerms
	}
	if o.Adventurousness != nil {
		e.Adventurousness = *o.Adventurousness
	}
	e.Adventurousness = max(0, min(10, e.Adventurousness))
	return e
}
