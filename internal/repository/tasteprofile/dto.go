package tasteprofile

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/giuliontini/SoDiVino/internal/domain/cellar"
)

// profileRow is the JSON shape of list fields stored in one hash field.
type profileRow struct {
	PreferredStyles []string `json:"preferred_styles"`
	OccasionTags    []string `json:"occasion_tags"`
	FavoriteRegions []string `json:"favorite_regions"`
}

func profileToHash(p cellar.TasteProfile) (map[string]string, error) {
	lists, err := json.Marshal(profileRow{
		PreferredStyles: p.PreferredStyles(),
		OccasionTags:    p.OccasionTags(),
		FavoriteRegions: p.FavoriteRegions(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal lists: %w", err)
	}
	notes, hasNotes := "", "0"
	if p.Notes() != nil {
		notes, hasNotes = *p.Notes(), "1"
	}
	return map[string]string{
		"id":                   p.ID(),
		"user_id":              p.UserID(),
		"profile_name":         p.ProfileName(),
		"lists_json":           string(lists),
		"sweetness_preference": string(p.SweetnessPreference()),
		"adventurousness":      string(p.Adventurousness()),
		"budget_focus":         string(p.BudgetFocus()),
		"notes":                notes,
		"has_notes":            hasNotes,
		"created_at":           strconv.FormatInt(p.CreatedAt(), 10),
		"updated_at":           strconv.FormatInt(p.UpdatedAt(), 10),
	}, nil
}

func profileFromHash(m map[string]string) (cellar.TasteProfile, error) {
	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return cellar.TasteProfile{}, fmt.Errorf("invalid created_at: %w", err)
	}
	updatedAt, err := strconv.ParseInt(m["updated_at"], 10, 64)
	if err != nil {
		updatedAt = createdAt
	}

	var row profileRow
	if raw := m["lists_json"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &row); err != nil {
			return cellar.TasteProfile{}, fmt.Errorf("unmarshal lists: %w", err)
		}
	}

	var notes *string
	if m["has_notes"] == "1" {
		n := m["notes"]
		notes = &n
	}

	return cellar.ReconstructTasteProfile(
		m["id"], m["user_id"], m["profile_name"], nonNil(row.PreferredStyles),
		cellar.SweetnessPreference(m["sweetness_preference"]),
		cellar.Adventurousness(m["adventurousness"]),
		cellar.BudgetFocus(m["budget_focus"]),
		nonNil(row.OccasionTags), nonNil(row.FavoriteRegions),
		notes, createdAt, updatedAt,
	), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
