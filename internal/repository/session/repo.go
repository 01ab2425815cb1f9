package session

import (
	"context"
	"fmt"
	"strconv"

	"github.com/giuliontini/SoDiVino/internal/db"
	"github.com/giuliontini/SoDiVino/internal/domain"
	domsession "github.com/giuliontini/SoDiVino/internal/domain/session"
)

// store is the consumer interface for menu sessions (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	ZAdd(ctx context.Context, key, member string, score float64) error
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// Repo implements usecase/session.Repository.
type Repo struct {
	store  store
	prefix string
}

// New creates a menu session repository.
func New(s store, prefix string) *Repo {
	return &Repo{store: s, prefix: prefix}
}

// Create stores a session and indexes it by creation time.
func (r *Repo) Create(ctx context.Context, s domsession.MenuSession) error {
	if err := r.store.HSet(ctx, r.sessionKey(s.UserID(), s.ID()), sessionToHash(s)); err != nil {
		return fmt.Errorf("hset session %s: %w", s.ID(), err)
	}
	if err := r.store.ZAdd(ctx, r.indexKey(s.UserID()), s.ID(), float64(s.CreatedAt())); err != nil {
		return fmt.Errorf("index session %s: %w", s.ID(), err)
	}
	return nil
}

// Get returns a session of the user or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, userID, id string) (domsession.MenuSession, error) {
	m, err := r.store.HGetAll(ctx, r.sessionKey(userID, id))
	if err != nil {
		return domsession.MenuSession{}, fmt.Errorf("hgetall session %s: %w", id, err)
	}
	if len(m) == 0 {
		return domsession.MenuSession{}, domain.ErrNotFound
	}
	return sessionFromHash(m)
}

// Latest returns the newest session or domain.ErrNotFound.
func (r *Repo) Latest(ctx context.Context, userID string) (domsession.MenuSession, error) {
	ids, err := r.store.ZRevRange(ctx, r.indexKey(userID), 0, 0)
	if err != nil {
		return domsession.MenuSession{}, fmt.Errorf("latest session: %w", err)
	}
	if len(ids) == 0 {
		return domsession.MenuSession{}, domain.ErrNotFound
	}
	return r.Get(ctx, userID, ids[0])
}

// Key patterns: {prefix}user:{uid}:session:{id}, {prefix}user:{uid}:sessions

func (r *Repo) sessionKey(userID, id string) string {
	return fmt.Sprintf("%suser:%s:session:%s", r.prefix, db.KeyPart(userID), db.KeyPart(id))
}

func (r *Repo) indexKey(userID string) string {
	return fmt.Sprintf("%suser:%s:sessions", r.prefix, db.KeyPart(userID))
}

func sessionToHash(s domsession.MenuSession) map[string]string {
	h := map[string]string{
		"id":         s.ID(),
		"user_id":    s.UserID(),
		"status":     s.Status(),
		"created_at": strconv.FormatInt(s.CreatedAt(), 10),
		"updated_at": strconv.FormatInt(s.UpdatedAt(), 10),
	}
	// nil optionals are simply absent; sessions are never overwritten.
	putOptional(h, "restaurant_name", s.RestaurantName())
	putOptional(h, "parsed_list_id", s.ParsedListID())
	putOptional(h, "upload_reference", s.UploadReference())
	return h
}

func sessionFromHash(m map[string]string) (domsession.MenuSession, error) {
	createdAt, err := strconv.ParseInt(m["created_at"], 10, 64)
	if err != nil {
		return domsession.MenuSession{}, fmt.Errorf("invalid created_at: %w", err)
	}
	updatedAt, err := strconv.ParseInt(m["updated_at"], 10, 64)
	if err != nil {
		updatedAt = createdAt
	}
	return domsession.Reconstruct(
		m["id"], m["user_id"],
		optional(m, "restaurant_name"), optional(m, "parsed_list_id"), optional(m, "upload_reference"),
		m["status"], createdAt, updatedAt,
	), nil
}

func putOptional(h map[string]string, key string, v *string) {
	if v != nil {
		h[key] = *v
	}
}

func optional(m map[string]string, key string) *string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	return &v
}
