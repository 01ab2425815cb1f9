package preferences

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/giuliontini/SoDiVino/internal/db"
	"github.com/giuliontini/SoDiVino/internal/domain"
	"github.com/giuliontini/SoDiVino/internal/domain/cellar"
)

// store is the consumer interface for user preferences (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Repo implements usecase/preferences.Repository. One hash per user.
type Repo struct {
	store  store
	prefix string
}

// New creates a preferences repository.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Get returns the stored preferences or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, userID string) (cellar.Preferences, error) {
	m, err := r.store.HGetAll(ctx, r.key(userID))
	if err != nil {
		return cellar.Preferences{}, fmt.Errorf("hgetall preferences %s: %w", userID, err)
	}
	if len(m) == 0 {
		return cellar.Preferences{}, domain.ErrNotFound
	}
	return fromHash(m)
}

// Save upserts preferences.
func (r *Repo) Save(ctx context.Context, p cellar.Preferences) error {
	hash, err := toHash(p)
	if err != nil {
		return err
	}
	if err := r.store.HSet(ctx, r.key(p.UserID()), hash); err != nil {
		return fmt.Errorf("hset preferences %s: %w", p.UserID(), err)
	}
	return nil
}

func (r *Repo) key(userID string) string {
	return fmt.Sprintf("%suser:%s:prefs", r.prefix, db.KeyPart(userID))
}

func toHash(p cellar.Preferences) (map[string]string, error) {
	grapes, err := json.Marshal(p.FavoriteGrapes())
	if err != nil {
		return nil, fmt.Errorf("marshal grapes: %w", err)
	}
	return map[string]string{
		"user_id":          p.UserID(),
		"favorite_grapes":  string(grapes),
		"quality_tier":     string(p.QualityTier()),
		"usual_budget_min": formatFloat(p.UsualBudgetMin()),
		"usual_budget_max": formatFloat(p.UsualBudgetMax()),
		"risk_tolerance":   string(p.RiskTolerance()),
		"created_at":       strconv.FormatInt(p.CreatedAt(), 10),
		"updated_at":       strconv.FormatInt(p.UpdatedAt(), 10),
	}, nil
}

func fromHash(m map[string]string) (cellar.Preferences, error) {
	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return cellar.Preferences{}, fmt.Errorf("invalid created_at: %w", err)
	}
	updatedAt, err := strconv.ParseInt(m["updated_at"], 10, 64)
	if err != nil {
		updatedAt = createdAt
	}
	grapes := []string{}
	if raw := m["favorite_grapes"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &grapes); err != nil {
			return cellar.Preferences{}, fmt.Errorf("unmarshal grapes: %w", err)
		}
	}
	return cellar.ReconstructPreferences(
		m["user_id"], grapes,
		cellar.ParseQualityTier(m["quality_tier"]),
		parseFloat(m["usual_budget_min"]), parseFloat(m["usual_budget_max"]),
		cellar.ParseRiskTolerance(m["risk_tolerance"]),
		createdAt, updatedAt,
	), nil
}

func formatFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
