package parsedlist

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/giuliontini/SoDiVino/internal/domain/session"
	"github.com/giuliontini/SoDiVino/internal/domain/wine"
)

// itemRow is the stored shape of one list entry. Field names follow the loose
// record aliases wine.NormalizeRecord understands.
type itemRow struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Producer        string   `json:"producer,omitempty"`
	Region          string   `json:"region,omitempty"`
	Country         string   `json:"country,omitempty"`
	Grape           string   `json:"grape,omitempty"`
	Vintage         string   `json:"vintage,omitempty"`
	Price           *float64 `json:"price,omitempty"`
	Currency        string   `json:"currency,omitempty"`
	ByGlassOrBottle string   `json:"by_glass_or_bottle,omitempty"`
	Section         string   `json:"section,omitempty"`
	RawText         string   `json:"raw_text"`
}

func listToHash(l session.ParsedList) (map[string]string, error) {
	rows := make([]itemRow, len(l.Wines()))
	for i, w := range l.Wines() {
		rows[i] = itemRow{
			ID: w.ID, Name: w.Name, Producer: w.Producer, Region: w.Region,
			Country: w.Country, Grape: w.Grape, Vintage: w.Vintage, Price: w.Price,
			Currency: w.Currency, ByGlassOrBottle: string(w.ByGlassOrBottle),
			Section: w.Section, RawText: w.RawText,
		}
	}
	winesJSON, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("marshal wines: %w", err)
	}
	h := map[string]string{
		"id":          l.ID(),
		"user_id":     l.UserID(),
		"source_type": l.SourceType(),
		"wines_json":  string(winesJSON),
		"created_at":  strconv.FormatInt(l.CreatedAt(), 10),
	}
	if l.RestaurantName() != nil {
		h["restaurant_name"] = *l.RestaurantName()
	}
	return h, nil
}

// listFromHash rebuilds a list. Stored rows go through wine.NormalizeRecord so
// malformed entries are dropped and positions follow storage order.
func listFromHash(m map[string]string) (session.ParsedList, error) {
	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return session.ParsedList{}, fmt.Errorf("invalid created_at: %w", err)
	}

	var records []map[string]any
	if raw := m["wines_json"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &records); err != nil {
			return session.ParsedList{}, fmt.Errorf("unmarshal wines: %w", err)
		}
	}
	wines := make([]wine.Item, 0, len(records))
	for _, rec := range records {
		item, ok := wine.NormalizeRecord(rec)
		if !ok {
			continue
		}
		item.Position = len(wines)
		wines = append(wines, item)
	}

	var restaurant *string
	if v, ok := m["restaurant_name"]; ok {
		restaurant = &v
	}
	return session.ReconstructParsedList(m["id"], m["user_id"], restaurant, m["source_type"], wines, createdAt), nil
}
