package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/giuliontini/SoDiVino/internal/domain/cellar"
	"github.com/giuliontini/SoDiVino/internal/domain/wine"
)

const fallbackReason = "Balanced pick based on limited data."

// HeuristicRate rates a batch without a language model. Scores start at 40 plus
// the wine's batch index so the input order survives ties. prefs may be nil.
func HeuristicRate(personas []cellar.Persona, prefs *cellar.Preferences, wines []wine.Item) []Recommendation {
	out := make([]Recommendation, len(wines))
	for i, w := range wines {
		score := 40.0 + float64(i)
		var tags, reasons []string
		addTag := func(t string) {
			for _, existing := range tags {
				if existing == t {
					return
				}
			}
			tags = append(tags, t)
		}

		if w.Price != nil {
			price := *w.Price
			if delta, reason, ok := bestPriceMatch(price, personas); ok && delta > 0 {
				score += delta
				addTag("price match")
				reasons = append(reasons, reason)
			}
			if prefs != nil && prefs.WithinBudget(price) {
				score += 5
				addTag("good value")
				reasons = append(reasons, "within typical budget")
			}
		}

		if w.Grape != "" {
			grape := strings.ToLower(w.Grape)
			for _, p := range personas {
				if containsFold(p.Grapes(), grape) {
					score += 8
					addTag("grape match")
					reasons = append(reasons, fmt.Sprintf("aligns with %s's grape preferences", p.Name()))
					break
				}
			}
			if prefs != nil && containsFold(prefs.FavoriteGrapes(), grape) {
				score += 6
				addTag("familiar")
				reasons = append(reasons, "uses a favorite grape")
			}
		}

		if prefs != nil {
			switch prefs.RiskTolerance() {
			case cellar.RiskSafe:
				addTag("safe")
			case cellar.RiskAdventurous:
				addTag("adventurous")
				score += 2
			default:
				addTag("anything goes")
				score += 3
			}
		}

		reason := fallbackReason
		if len(reasons) > 0 {
			reason = strings.Join(reasons, "; ")
		}
		if tags == nil {
			tags = []string{}
		}
		out[i] = Recommendation{WineID: w.ID, Score: ClampScore(score), Reason: reason, Tags: tags}
	}
	return out
}

// bestPriceMatch returns the most favourable price delta across personas.
// Inside a persona's target range the delta is +10; outside it is a penalty of
// distance/5 capped at 6. Personas without any price target are skipped.
func bestPriceMatch(price float64, personas []cellar.Persona) (float64, string, bool) {
	var (
		best       float64
		bestReason string
		found      bool
	)
	for _, p := range personas {
		minP, maxP := p.MinPrice(), p.MaxPrice()
		if minP == nil && maxP == nil {
			continue
		}
		lo, hi := bounds(minP, maxP)

		var delta float64
		var reason string
		switch {
		case price >= lo && price <= hi:
			delta = 10
			reason = fmt.Sprintf("hits %s's target price", p.Name())
		case price < lo:
			delta = -math.Min(6, (lo-price)/5)
			reason = fmt.Sprintf("price is below %s's target", p.Name())
		default:
			delta = -math.Min(6, (price-hi)/5)
			reason = fmt.Sprintf("price is above %s's target", p.Name())
		}
		if !found || delta > best {
			best, bestReason, found = delta, reason, true
		}
	}
	return best, bestReason, found
}

// bounds fills a missing side of a price range with the other side.
func bounds(minP, maxP *float64) (float64, float64) {
	switch {
	case minP != nil && maxP != nil:
		return *minP, *maxP
	case minP != nil:
		return *minP, *minP
	default:
		return *maxP, *maxP
	}
}

func containsFold(values []string, lower string) bool {
	for _, v := range values {
		if strings.ToLower(v) == lower {
			return true
		}
	}
	return false
}
