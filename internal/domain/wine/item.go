package wine

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Serving tells whether a list entry is poured by the glass, sold by the bottle, or both.
type Serving string

// Serving constants.
const (
	ServingGlass   Serving = "glass"
	ServingBottle  Serving = "bottle"
	ServingBoth    Serving = "both"
	ServingUnknown Serving = "unknown"
)

// ParseServing coerces free text such as "by the glass" to a Serving; anything
// unrecognised is unknown.
func ParseServing(s string) Serving {
	lower := strings.ToLower(strings.TrimSpace(s))
	glass := strings.Contains(lower, "glass")
	bottle := strings.Contains(lower, "bottle")
	switch {
	case glass && bottle, lower == string(ServingBoth):
		return ServingBoth
	case glass:
		return ServingGlass
	case bottle:
		return ServingBottle
	}
	return ServingUnknown
}

// Item is a wine entry of a stored parsed list. Only ID, Name and RawText are mandatory.
type Item struct {
	ID              string
	Name            string
	Producer        string
	Region          string
	Country         string
	Grape           string
	Vintage         string
	Price           *float64
	Currency        string
	ByGlassOrBottle Serving
	Section         string
	RawText         string
	Position        int
}

// FromLineItem lifts a parsed menu line into a list entry.
func FromLineItem(li LineItem, id string, position int) Item {
	var price *float64
	if li.Price != nil {
		p := *li.Price
		price = &p
	}
	return Item{
		ID:              id,
		Name:            li.Name,
		Price:           price,
		ByGlassOrBottle: ServingUnknown,
		RawText:         li.Name,
		Position:        position,
	}
}

var nonNumeric = regexp.MustCompile(`[^0-9.\-]`)

// NormalizeRecord converts a loosely-shaped JSON object (as produced by a model or a
// client) into an Item. Records lacking an id or a name are rejected.
func NormalizeRecord(raw map[string]any) (Item, bool) {
	id := firstString(raw, "id", "wineId", "wine_id")
	name := firstString(raw, "name", "wine_name")
	if id == "" || name == "" {
		return Item{}, false
	}

	rawText := firstString(raw, "rawText", "raw_text", "raw")
	if rawText == "" {
		rawText = name
	}

	return Item{
		ID:              id,
		Name:            name,
		Producer:        firstString(raw, "producer", "producer_name"),
		Region:          firstString(raw, "region"),
		Country:         firstString(raw, "country"),
		Grape:           firstString(raw, "grape", "varietal"),
		Vintage:         firstString(raw, "vintage", "year"),
		Price:           firstPrice(raw, "price", "price_value", "price_number"),
		Currency:        firstString(raw, "currency"),
		ByGlassOrBottle: ParseServing(firstString(raw, "byGlassOrBottle", "by_glass_or_bottle", "serving_type")),
		Section:         firstString(raw, "section", "list_section"),
		RawText:         rawText,
	}, true
}

func firstString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		s, ok := raw[k].(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func firstPrice(raw map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		var f float64
		switch t := v.(type) {
		case float64:
			f = t
		case int:
			f = float64(t)
		case string:
			// Nothing numeric left reads as 0.
			cleaned := nonNumeric.ReplaceAllString(t, "")
			if cleaned == "" {
				f = 0
				break
			}
			parsed, err := strconv.ParseFloat(cleaned, 64)
			if err != nil {
				continue
			}
			f = parsed
		default:
			continue
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			continue
		}
		return &f
	}
	return nil
}
