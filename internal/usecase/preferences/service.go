// Package preferences manages a user's global wine habits.
package preferences

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/giuliontini/SoDiVino/internal/domain"
	"github.com/giuliontini/SoDiVino/internal/domain/cellar"
)

// Service reads and upserts user preferences.
type Service struct {
	repo Repository
	now  func() time.Time
}

// New creates a preferences service.
func New(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Get returns stored preferences, creating the defaults on first read.
func (s *Service) Get(ctx context.Context, userID string) (cellar.Preferences, error) {
	p, err := s.repo.Get(ctx, userID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return cellar.Preferences{}, fmt.Errorf("get preferences: %w", err)
	}

	p = cellar.DefaultPreferences(userID, s.now())
	if err := s.repo.Save(ctx, p); err != nil {
		return cellar.Preferences{}, fmt.Errorf("save default preferences: %w", err)
	}
	return p, nil
}

// Find returns stored preferences without creating defaults. ok is false when none exist.
func (s *Service) Find(ctx context.Context, userID string) (cellar.Preferences, bool, error) {
	p, err := s.repo.Get(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return cellar.Preferences{}, false, nil
	}
	if err != nil {
		return cellar.Preferences{}, false, fmt.Errorf("get preferences: %w", err)
	}
	return p, true, nil
}

// Put upserts preferences. Invalid enum values fall back to defaults.
func (s *Service) Put(ctx context.Context, userID string, in cellar.PreferencesInput) (cellar.Preferences, error) {
	if in.UsualBudgetMin != nil && in.UsualBudgetMax != nil && *in.UsualBudgetMin > *in.UsualBudgetMax {
		return cellar.Preferences{}, domain.NewInvalidInput("usual_budget_min must not exceed usual_budget_max")
	}

	next := cellar.NewPreferences(userID, in, s.now())

	current, found, err := s.Find(ctx, userID)
	if err != nil {
		return cellar.Preferences{}, err
	}
	if found {
		next = current.Replace(next)
	}

	if err := s.repo.Save(ctx, next); err != nil {
		return cellar.Preferences{}, fmt.Errorf("save preferences: %w", err)
	}
	return next, nil
}
