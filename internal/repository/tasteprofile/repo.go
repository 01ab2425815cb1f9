package tasteprofile

import (
	"context"
	"fmt"

	"github.com/giuliontini/SoDiVino/internal/db"
	"github.com/giuliontini/SoDiVino/internal/domain"
	"github.com/giuliontini/SoDiVino/internal/domain/cellar"
)

// store is the consumer interface for taste profiles (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	ZAdd(ctx context.Context, key, member string, score float64) error
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// Repo implements usecase/tasteprofile.Repository.
type Repo struct {
	store  store
	prefix string
}

// New creates a taste profile repository.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Save writes a profile and ranks it by update time.
func (r *Repo) Save(ctx context.Context, p cellar.TasteProfile) error {
	hash, err := profileToHash(p)
	if err != nil {
		return err
	}
	if err := r.store.HSet(ctx, r.profileKey(p.UserID(), p.ID()), hash); err != nil {
		return fmt.Errorf("hset taste profile %s: %w", p.ID(), err)
	}
	if err := r.store.ZAdd(ctx, r.indexKey(p.UserID()), p.ID(), float64(p.UpdatedAt())); err != nil {
		return fmt.Errorf("index taste profile %s: %w", p.ID(), err)
	}
	return nil
}

// Get returns one profile or domain.ErrTasteProfileNotFound.
func (r *Repo) Get(ctx context.Context, userID, id string) (cellar.TasteProfile, error) {
	m, err := r.store.HGetAll(ctx, r.profileKey(userID, id))
	if err != nil {
		return cellar.TasteProfile{}, fmt.Errorf("hgetall taste profile %s: %w", id, err)
	}
	if len(m) == 0 {
		return cellar.TasteProfile{}, domain.ErrTasteProfileNotFound
	}
	return profileFromHash(m)
}

// Latest returns the most recently updated profile or domain.ErrTasteProfileNotFound.
func (r *Repo) Latest(ctx context.Context, userID string) (cellar.TasteProfile, error) {
	ids, err := r.store.ZRevRange(ctx, r.indexKey(userID), 0, 0)
	if err != nil {
		return cellar.TasteProfile{}, fmt.Errorf("latest taste profile: %w", err)
	}
	if len(ids) == 0 {
		return cellar.TasteProfile{}, domain.ErrTasteProfileNotFound
	}
	return r.Get(ctx, userID, ids[0])
}

// Key patterns: {prefix}user:{uid}:taste:{id}, {prefix}user:{uid}:tastes

func (r *Repo) profileKey(userID, id string) string {
	return fmt.Sprintf("%suser:%s:taste:%s", r.prefix, db.KeyPart(userID), db.KeyPart(id))
}

func (r *Repo) indexKey(userID string) string {
	return fmt.Sprintf("%suser:%s:tastes", r.prefix, db.KeyPart(userID))
}
