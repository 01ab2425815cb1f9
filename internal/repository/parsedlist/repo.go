package parsedlist

import (
	"context"
	"fmt"

	"github.com/giuliontini/SoDiVino/internal/db"
	"github.com/giuliontini/SoDiVino/internal/domain"
	"github.com/giuliontini/SoDiVino/internal/domain/session"
)

// store is the consumer interface for parsed lists (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
}

// Repo implements the parsed list repository of usecase/menu and usecase/recommend.
type Repo struct {
	store  store
	prefix string
}

// New creates a parsed list repository.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Create stores a list with all its wines.
func (r *Repo) Create(ctx context.Context, l session.ParsedList) error {
	hash, err := listToHash(l)
	if err != nil {
		return err
	}
	if err := r.store.HSet(ctx, r.listKey(l.UserID(), l.ID()), hash); err != nil {
		return fmt.Errorf("hset parsed list %s: %w", l.ID(), err)
	}
	return nil
}

// Get returns a user's list or domain.ErrListNotFound.
func (r *Repo) Get(ctx context.Context, userID, id string) (session.ParsedList, error) {
	m, err := r.store.HGetAll(ctx, r.listKey(userID, id))
	if err != nil {
		return session.ParsedList{}, fmt.Errorf("hgetall parsed list %s: %w", id, err)
	}
	if len(m) == 0 {
		return session.ParsedList{}, domain.ErrListNotFound
	}
	return listFromHash(m)
}

func (r *Repo) listKey(userID, id string) string {
	return fmt.Sprintf("%suser:%s:list:%s", r.prefix, db.KeyPart(userID), db.KeyPart(id))
}
