// Package tasteprofile stores onboarding questionnaire results.
package tasteprofile

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/giuliontini/SoDiVino/internal/domain"
	"github.com/giuliontini/SoDiVino/internal/domain/cellar"
)

// Service creates and reads taste profiles.
type Service struct {
	repo  Repository
	newID func() string
	now   func() time.Time
}

// New creates a taste profile service.
func New(repo Repository) *Service {
	return &Service{repo: repo, newID: uuid.NewString, now: time.Now}
}

// Create stores a new profile. Every submission is a new record.
func (s *Service) Create(ctx context.Context, userID string, in cellar.TasteProfileInput) (cellar.TasteProfile, error) {
	p := cellar.NewTasteProfile(s.newID(), userID, in, s.now())
	if err := s.repo.Save(ctx, p); err != nil {
		return cellar.TasteProfile{}, fmt.Errorf("save taste profile: %w", err)
	}
	return p, nil
}

// Get returns a profile of the user.
func (s *Service) Get(ctx context.Context, userID, id string) (cellar.TasteProfile, error) {
	p, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return cellar.TasteProfile{}, fmt.Errorf("get taste profile: %w", err)
	}
	return p, nil
}

// Latest returns the most recently updated profile, or nil when the user has none.
func (s *Service) Latest(ctx context.Context, userID string) (*cellar.TasteProfile, error) {
	p, err := s.repo.Latest(ctx, userID)
	if errors.Is(err, domain.ErrTasteProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest taste profile: %w", err)
	}
	return &p, nil
}
