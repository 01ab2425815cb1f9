package scoring

import (
	"math"
	"sort"
	"strings"
)

// Recommendation is a 0..100 fit score for a wine of a parsed list.
type Recommendation struct {
	WineID string
	Score  float64
	Reason string
	Tags   []string
}

// ClampScore rounds to the nearest integer and bounds to [0, 100]. Non-finite values become 0.
func ClampScore(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Max(0, math.Min(100, math.Round(v)))
}

// UniqueTags trims tags and drops empty and repeated ones.
func UniqueTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// Merge keeps the best recommendation per known wine id, normalizes score,
// reason and tags, and sorts best first. Recommendations for ids outside known are discarded; ties keep
// first-seen order.
func Merge(recs []Recommendation, known map[string]struct{}) []Recommendation {
	index := make(map[string]int, len(recs))
	out := make([]Recommendation, 0, len(recs))
	for _, r := range recs {
		if _, ok := known[r.WineID]; !ok {
			continue
		}
		r.Score = ClampScore(r.Score)
		r.Reason = strings.TrimSpace(r.Reason)
		r.Tags = UniqueTags(r.Tags)
		if i, seen := index[r.WineID]; seen {
			if r.Score > out[i].Score {
				out[i] = r
			}
			continue
		}
		index[r.WineID] = len(out)
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}
