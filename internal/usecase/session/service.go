// Package session records restaurant visits.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/giuliontini/SoDiVino/internal/domain"
	domsession "github.com/giuliontini/SoDiVino/internal/domain/session"
)

// Service creates and reads menu sessions.
type Service struct {
	repo  Repository
	newID func() string
	now   func() time.Time
}

// New creates a menu session service.
func New(repo Repository) *Service {
	return &Service{repo: repo, newID: uuid.NewString, now: time.Now}
}

// Create stores a new session.
func (s *Service) Create(ctx context.Context, userID string, in domsession.Input) (domsession.MenuSession, error) {
	ms := domsession.New(s.newID(), userID, in, s.now())
	if err := s.repo.Create(ctx, ms); err != nil {
		return domsession.MenuSession{}, fmt.Errorf("create menu session: %w", err)
	}
	return ms, nil
}

// Get returns a session of the user.
func (s *Service) Get(ctx context.Context, userID, id string) (domsession.MenuSession, error) {
	ms, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return domsession.MenuSession{}, fmt.Errorf("get menu session: %w", err)
	}
	return ms, nil
}

// Latest returns the newest session, or nil when the user has none.
func (s *Service) Latest(ctx context.Context, userID string) (*domsession.MenuSession, error) {
	ms, err := s.repo.Latest(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest menu session: %w", err)
	}
	return &ms, nil
}
