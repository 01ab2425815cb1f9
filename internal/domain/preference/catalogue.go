package preference

import (
	"errors"
	"fmt"
	"strings"
)

// Catalogue is the fixed set of built-in profiles offered to anonymous users.
// It is a plain value built on demand, so callers can't mutate shared state.
type Catalogue struct {
	profiles []Profile
}

// NewCatalogue parses every spec through NewProfile. IDs must be present and unique.
func NewCatalogue(specs []ProfileSpec) (Catalogue, error) {
	if len(specs) == 0 {
		return Catalogue{}, errors.New("catalogue has no profiles")
	}
	seen := make(map[string]struct{}, len(specs))
	profiles := make([]Profile, 0, len(specs))
	for i, spec := range specs {
		spec.ID = strings.TrimSpace(spec.ID)
		if spec.ID == "" {
			return Catalogue{}, fmt.Errorf("profile %d: id is required", i)
		}
		if _, dup := seen[spec.ID]; dup {
			return Catalogue{}, fmt.Errorf("profile %s: duplicate id", spec.ID)
		}
		seen[spec.ID] = struct{}{}

		p, err := NewProfile(spec)
		if err != nil {
			return Catalogue{}, fmt.Errorf("profile %s: %w", spec.ID, err)
		}
		profiles = append(profiles, p)
	}
	return Catalogue{profiles: profiles}, nil
}

// DefaultCatalogue returns the built-in profiles.
func DefaultCatalogue() Catalogue {
	c, err := NewCatalogue(DefaultProfiles())
	if err != nil {
		panic("built-in catalogue: " + err.Error())
	}
	return c
}

// DefaultProfiles returns the specs of the built-in profiles.
func DefaultProfiles() []ProfileSpec {
	return []ProfileSpec{
		{
			ID:          "crisp_whites",
			Label:       "Crisp Whites",
			Description: "Light, dry whites with high acidity.",
			Color:       "white", Body: "light", Sweetness: "dry", Acidity: "high",
			Budget: 60,
		},
		{
			ID:          "bold_reds",
			Label:       "Bold Reds",
			Description: "Full-bodied, structured reds.",
			Color:       "red", Body: "full", Sweetness: "off-dry", Acidity: "medium",
			Budget: 90,
		},
		{
			ID:          "easy_reds",
			Label:       "Easy Drinking Reds",
			Description: "Medium-bodied, smooth reds with moderate tannins.",
			Color:       "red", Body: "medium", Sweetness: "dry", Acidity: "medium",
			Budget: 70,
		},
		{
			ID:          "bubbles",
			Label:       "Bubbles",
			Description: "Dry sparkling wines for aperitivo or celebrations.",
			Color:       "sparkling", Body: "light", Sweetness: "dry", Acidity: "medium",
			Budget: 70,
		},
		{
			ID:          "sweet_aromatic",
			Label:       "Sweet & Aromatic",
			Description: "Off-dry to sweet aromatic whites (e.g., Riesling, Moscato).",
			Color:       "white", Body: "light", Sweetness: "off-dry", Acidity: "high",
			Budget: 65,
		},
		{
			ID:          "value_under_40",
			Label:       "Best under 40",
			Description: "Any style, focus on value under 40.",
			Color:       Any, Body: Any, Sweetness: Any, Acidity: Any,
			Budget: 40,
		},
	}
}

// List returns a copy of all profiles in catalogue order.
func (c Catalogue) List() []Profile {
	out := make([]Profile, len(c.profiles))
	copy(out, c.profiles)
	return out
}

// ByID looks up a profile.
func (c Catalogue) ByID(id string) (Profile, bool) {
	for _, p := range c.profiles {
		if p.ID == id {
			return p, true
		}
	}
	return Profile{}, false
}
