// Package scoring ranks wines against preferences. Everything here is pure and
// safe for concurrent use.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/giuliontini/SoDiVino/internal/domain/preference"
	"github.com/giuliontini/SoDiVino/internal/domain/wine"
)

// Rule weights.
const (
	colorMatch      = 3.0
	colorMismatch   = -1.0
	bodyMatch       = 2.0
	bodyAdjacent    = 1.0
	bodyMiss        = -0.5
	sweetMatch      = 2.0
	sweetNear       = 0.5
	sweetMiss       = -1.0
	acidityMatch    = 1.5
	acidityMiss     = -0.5
	withinBudget    = 2.0
	overBudgetStep  = 15.0
	dislikedPenalty = -3.0
	adventureBonus  = 2.0

	adventureThreshold = 7
	adventureStretch   = 1.3
)

// ScoredWine is a wine with its preference score and the reasons behind it.
// Score is unbounded and may be negative.
type ScoredWine struct {
	Wine    wine.LineItem
	Score   float64
	Reasons []string
}

// Score applies the preference rules to one wine in a fixed order. Every rule
// contributes additively; reasons follow the order rules fired in.
func Score(w wine.LineItem, p preference.Profile, o preference.Overrides) ScoredWine {
	eff := preference.Resolve(p, o)

	s := ScoredWine{Wine: w, Reasons: []string{}}
	add := func(delta float64, reason string) {
		s.Score += delta
		if reason != "" {
			s.Reasons = append(s.Reasons, reason)
		}
	}

	if p.Color != preference.AnyColor {
		if w.Color == p.Color {
			add(colorMatch, "matches your preferred color")
		} else {
			add(colorMismatch, "different color than your usual choice")
		}
	}

	if p.Body != preference.AnyBody {
		switch {
		case w.Body == p.Body:
			add(bodyMatch, "body matches your preference")
		case bodyAdjacentTo(p.Body, w.Body):
			add(bodyAdjacent, "body is close to your preference")
		default:
			add(bodyMiss, "")
		}
	}

	if p.Sweetness != preference.AnySweetness {
		switch {
		case w.Sweetness == p.Sweetness:
			add(sweetMatch, "sweetness matches your preference")
		case p.Sweetness == wine.SweetnessOffDry &&
			(w.Sweetness == wine.SweetnessDry || w.Sweetness == wine.SweetnessSweet):
			add(sweetNear, "sweetness is near your sweet spot")
		default:
			add(sweetMiss, "")
		}
	}

	if p.Acidity != preference.AnyAcidity {
		if w.Acidity == p.Acidity {
			add(acidityMatch, "acidity is in your comfort zone")
		} else {
			add(acidityMiss, "")
		}
	}

	if w.HasPrice() {
		price := *w.Price
		if price <= eff.Budget {
			add(withinBudget, fmt.Sprintf("within your budget (%s ≤ %s)", formatNumber(price), formatNumber(eff.Budget)))
		} else {
			over := price - eff.Budget
			add(-over/overBudgetStep, fmt.Sprintf("above your budget by ~%d", int64(math.Round(over))))
		}
	}

	haystack := strings.ToLower(w.Name + " " + w.Notes)
	for _, term := range eff.DislikedTerms {
		term = strings.ToLower(term)
		if term != "" && strings.Contains(haystack, term) {
			add(dislikedPenalty, fmt.Sprintf("contains “%s”, which you wanted to avoid", term))
		}
	}

	if eff.Adventurousness >= adventureThreshold &&
		p.Color != preference.AnyColor &&
		w.Color != p.Color &&
		w.PriceValue() != 0 && w.PriceValue() <= eff.Budget*adventureStretch {
		add(adventureBonus, "fun alternative to your usual style (you said you’re adventurous)")
	}

	return s
}

// bodyAdjacentTo: medium is one step from light and full, and vice versa.
func bodyAdjacentTo(pref, got wine.Body) bool {
	if pref == wine.BodyMedium {
		return got == wine.BodyLight || got == wine.BodyFull
	}
	return got == wine.BodyMedium
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Rank scores every wine and returns them best first. Ties keep input order.
// limit <= 0 returns all wines.
func Rank(items []wine.LineItem, p preference.Profile, o preference.Overrides, limit int) []ScoredWine {
	scored := make([]ScoredWine, len(items))
	for i, w := range items {
		scored[i] = Score(w, p, o)
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}
