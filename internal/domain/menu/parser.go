// Package menu turns free text read off a wine list into classified line items.
package menu

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/giuliontini/SoDiVino/internal/domain/wine"
)

// priceToken matches a trailing price such as "16", "28.5" or "120.00".
// There is no left boundary: a trailing "2019" reads as price 19.
var priceToken = regexp.MustCompile(`(\d{2,3}(?:\.\d{1,2})?)\s*$`)

type keywordRule[T any] struct {
	value    T
	keywords []string
}

// Order matters: the first rule with a matching keyword wins.
var (
	colorRules = []keywordRule[wine.Color]{
		{wine.ColorRose, []string{"rosé", "rose"}},
		{wine.ColorSparkling, []string{"sparkling", "prosecco", "champagne", "cava"}},
		{wine.ColorWhite, []string{"white", "bianco", "blanc"}},
		{wine.ColorRed, []string{"red", "rosso", "rouge"}},
	}
	bodyRules = []keywordRule[wine.Body]{
		{wine.BodyFull, []string{"full"}},
		{wine.BodyLight, []string{"light"}},
	}
	sweetnessRules = []keywordRule[wine.Sweetness]{
		{wine.SweetnessSweet, []string{"sweet", "dolce"}},
		{wine.SweetnessOffDry, []string{"off-dry", "demi-sec"}},
	}
	acidityRules = []keywordRule[wine.Acidity]{
		{wine.AcidityHigh, []string{"crisp", "fresh", "high acidity"}},
	}
)

// ParseText extracts priced wine lines from text. Lines without a trailing price
// (headers, separators, prose) are dropped. Input order is preserved.
func ParseText(text string) []wine.LineItem {
	var items []wine.LineItem
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if item, ok := ParseLine(line); ok {
			items = append(items, item)
		}
	}
	return items
}

// ParseLine classifies a single trimmed menu line. ok is false when the line carries no price.
func ParseLine(line string) (wine.LineItem, bool) {
	m := priceToken.FindStringSubmatchIndex(line)
	if m == nil {
		return wine.LineItem{}, false
	}

	price, err := strconv.ParseFloat(line[m[2]:m[3]], 64)
	if err != nil {
		return wine.LineItem{}, false
	}

	name := strings.TrimSpace(line[:m[0]])
	lower := strings.ToLower(name)

	return wine.LineItem{
		Name:      name,
		Color:     classify(lower, colorRules, wine.ColorUnknown),
		Body:      classify(lower, bodyRules, wine.BodyMedium),
		Sweetness: classify(lower, sweetnessRules, wine.SweetnessDry),
		Acidity:   classify(lower, acidityRules, wine.AcidityMedium),
		Price:     &price,
	}, true
}

func classify[T any](lower string, rules []keywordRule[T], fallback T) T {
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return r.value
			}
		}
	}
	return fallback
}
