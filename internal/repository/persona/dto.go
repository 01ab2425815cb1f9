package persona

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/giuliontini/SoDiVino/internal/domain/cellar"
)

// personaToHash converts a domain Persona to a map for HSET.
// Every field is always written so an overwrite clears stale values.
func personaToHash(p cellar.Persona) (map[string]string, error) {
	grapes, err := json.Marshal(p.Grapes())
	if err != nil {
		return nil, fmt.Errorf("marshal grapes: %w", err)
	}
	foodTags, err := json.Marshal(p.FoodPairingTags())
	if err != nil {
		return nil, fmt.Errorf("marshal food tags: %w", err)
	}
	notes := ""
	if p.Notes() != nil {
		notes = *p.Notes()
	}
	return map[string]string{
		"id":             p.ID(),
		"user_id":        p.UserID(),
		"name":           p.Name(),
		"color":          string(p.Color()),
		"grapes_json":    string(grapes),
		"body":           string(p.Body()),
		"tannin":         string(p.Tannin()),
		"acidity":        string(p.Acidity()),
		"sweetness":      string(p.Sweetness()),
		"food_tags_json": string(foodTags),
		"min_price":      formatPrice(p.MinPrice()),
		"max_price":      formatPrice(p.MaxPrice()),
		"notes":          notes,
		"is_default":     strconv.FormatBool(p.IsDefault()),
		"created_at":     strconv.FormatInt(p.CreatedAt(), 10),
		"updated_at":     strconv.FormatInt(p.UpdatedAt(), 10),
	}, nil
}

// personaFromHash hydrates a domain Persona from an HGETALL result map.
func personaFromHash(m map[string]string) (cellar.Persona, error) {
	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return cellar.Persona{}, fmt.Errorf("invalid created_at: %w", err)
	}
	updatedAt, err := strconv.ParseInt(m["updated_at"], 10, 64)
	if err != nil {
		updatedAt = createdAt
	}

	grapes, err := decodeList(m["grapes_json"])
	if err != nil {
		return cellar.Persona{}, fmt.Errorf("unmarshal grapes: %w", err)
	}
	foodTags, err := decodeList(m["food_tags_json"])
	if err != nil {
		return cellar.Persona{}, fmt.Errorf("unmarshal food tags: %w", err)
	}

	var notes *string
	if n := m["notes"]; n != "" {
		notes = &n
	}

	return cellar.ReconstructPersona(
		m["id"], m["user_id"], m["name"], cellar.Color(m["color"]), grapes,
		cellar.Body(m["body"]), cellar.Intensity(m["tannin"]), cellar.Intensity(m["acidity"]),
		cellar.Sweetness(m["sweetness"]), foodTags,
		parsePrice(m["min_price"]), parsePrice(m["max_price"]), notes,
		m["is_default"] == "true", createdAt, updatedAt,
	), nil
}

func decodeList(raw string) ([]string, error) {
	out := []string{}
	if raw == "" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func formatPrice(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func parsePrice(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
