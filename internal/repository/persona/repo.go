package persona

import (
	"context"
	"fmt"
	"slices"

	"github.com/giuliontini/SoDiVino/internal/db"
	"github.com/giuliontini/SoDiVino/internal/domain"
	"github.com/giuliontini/SoDiVino/internal/domain/cellar"
)

// store is the consumer interface for personas (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	ZAdd(ctx context.Context, key, member string, score float64) error
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	ZRem(ctx context.Context, key string, members ...string) error
}

// Repo implements usecase/persona.Repository.
type Repo struct {
	store  store
	prefix string
}

// New creates a persona repository. prefix namespaces every key.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Save writes a persona and indexes it under its owner by creation time.
func (r *Repo) Save(ctx context.Context, p cellar.Persona) error {
	hash, err := personaToHash(p)
	if err != nil {
		return err
	}
	if err := r.store.HSet(ctx, r.personaKey(p.UserID(), p.ID()), hash); err != nil {
		return fmt.Errorf("hset persona %s: %w", p.ID(), err)
	}
	if err := r.store.ZAdd(ctx, r.indexKey(p.UserID()), p.ID(), float64(p.CreatedAt())); err != nil {
		return fmt.Errorf("index persona %s: %w", p.ID(), err)
	}
	return nil
}

// SaveMany overwrites existing personas in one pipeline. The index is untouched.
func (r *Repo) SaveMany(ctx context.Context, personas []cellar.Persona) error {
	if len(personas) == 0 {
		return nil
	}
	items := make([]db.HashSetItem, len(personas))
	for i, p := range personas {
		hash, err := personaToHash(p)
		if err != nil {
			return err
		}
		items[i] = db.HashSetItem{Key: r.personaKey(p.UserID(), p.ID()), Fields: hash}
	}
	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("hset personas: %w", err)
	}
	return nil
}

// Get returns one persona of a user.
func (r *Repo) Get(ctx context.Context, userID, id string) (cellar.Persona, error) {
	m, err := r.store.HGetAll(ctx, r.personaKey(userID, id))
	if err != nil {
		return cellar.Persona{}, fmt.Errorf("hgetall persona %s: %w", id, err)
	}
	if len(m) == 0 {
		return cellar.Persona{}, domain.ErrPersonaNotFound
	}
	return personaFromHash(m)
}

// List returns a user's personas, oldest first.
func (r *Repo) List(ctx context.Context, userID string) ([]cellar.Persona, error) {
	ids, err := r.store.ZRevRange(ctx, r.indexKey(userID), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("list persona ids: %w", err)
	}
	slices.Reverse(ids)
	return r.GetMany(ctx, userID, ids)
}

// GetMany returns the personas that exist among ids, in ids order. Missing ids are skipped.
func (r *Repo) GetMany(ctx context.Context, userID string, ids []string) ([]cellar.Persona, error) {
	if len(ids) == 0 {
		return []cellar.Persona{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.personaKey(userID, id)
	}

	results, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall multi personas: %w", err)
	}

	personas := make([]cellar.Persona, 0, len(results))
	for i, m := range results {
		if len(m) == 0 {
			continue
		}
		p, err := personaFromHash(m)
		if err != nil {
			return nil, fmt.Errorf("parse persona %s: %w", ids[i], err)
		}
		personas = append(personas, p)
	}
	return personas, nil
}

// Delete removes a persona. Deleting a missing persona is not an error.
func (r *Repo) Delete(ctx context.Context, userID, id string) error {
	if err := r.store.Del(ctx, r.personaKey(userID, id)); err != nil {
		return fmt.Errorf("del persona %s: %w", id, err)
	}
	if err := r.store.ZRem(ctx, r.indexKey(userID), id); err != nil {
		return fmt.Errorf("unindex persona %s: %w", id, err)
	}
	return nil
}

// Key patterns: {prefix}user:{uid}:persona:{id}, {prefix}user:{uid}:personas

func (r *Repo) personaKey(userID, id string) string {
	return fmt.Sprintf("%suser:%s:persona:%s", r.prefix, db.KeyPart(userID), db.KeyPart(id))
}

func (r *Repo) indexKey(userID string) string {
	return fmt.Sprintf("%suser:%s:personas", r.prefix, db.KeyPart(userID))
}
