// Package persona manages a user's tasting personas.
package persona

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/giuliontini/SoDiVino/internal/domain"
	"github.com/giuliontini/SoDiVino/internal/domain/cellar"
)

// Service handles persona CRUD. At most one persona per user is the default.
type Service struct {
	repo  Repository
	newID func() string
	now   func() time.Time
}

// New creates a persona service.
func New(repo Repository) *Service {
	return &Service{repo: repo, newID: uuid.NewString, now: time.Now}
}

// List returns the user's personas, oldest first.
func (s *Service) List(ctx context.Context, userID string) ([]cellar.Persona, error) {
	personas, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list personas: %w", err)
	}
	return personas, nil
}

// Create validates and stores a new persona.
func (s *Service) Create(ctx context.Context, userID string, in cellar.PersonaInput) (cellar.Persona, error) {
	now := s.now()
	p, err := cellar.NewPersona(s.newID(), userID, in, now)
	if err != nil {
		return cellar.Persona{}, fmt.Errorf("validate persona: %w", invalidPersona(err))
	}

	if p.IsDefault() {
		if err := s.clearDefault(ctx, userID, p.ID(), now); err != nil {
			return cellar.Persona{}, err
		}
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return cellar.Persona{}, fmt.Errorf("save persona: %w", err)
	}
	return p, nil
}

// Update replaces a persona's fields, keeping its id and creation time.
func (s *Service) Update(ctx context.Context, userID, id string, in cellar.PersonaInput) (cellar.Persona, error) {
	now := s.now()
	next, err := cellar.NewPersona(id, userID, in, now)
	if err != nil {
		return cellar.Persona{}, fmt.Errorf("validate persona: %w", invalidPersona(err))
	}

	current, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		return cellar.Persona{}, fmt.Errorf("get persona: %w", err)
	}
	p := current.Replace(next)

	if p.IsDefault() {
		if err := s.clearDefault(ctx, userID, p.ID(), now); err != nil {
			return cellar.Persona{}, err
		}
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return cellar.Persona{}, fmt.Errorf("save persona: %w", err)
	}
	return p, nil
}

// Delete removes a persona.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return fmt.Errorf("delete persona: %w", err)
	}
	return nil
}

// clearDefault unsets the default flag on every persona except keepID.
func (s *Service) clearDefault(ctx context.Context, userID, keepID string, now time.Time) error {
	personas, err := s.repo.List(ctx, userID)
	if err != nil {
		return fmt.Errorf("list personas: %w", err)
	}

	var changed []cellar.Persona
	for _, p := range personas {
		if p.ID() != keepID && p.IsDefault() {
			changed = append(changed, p.WithDefault(false, now))
		}
	}
	if len(changed) == 0 {
		return nil
	}

	if err := s.repo.SaveMany(ctx, changed); err != nil {
		return fmt.Errorf("clear default persona: %w", err)
	}
	return nil
}

func invalidPersona(err error) error {
	switch {
	case errors.Is(err, cellar.ErrNameRequired):
		return domain.NewInvalidInput("Name is required")
	case errors.Is(err, cellar.ErrInvalidColor):
		return domain.NewInvalidInput("Invalid color")
	}
	return domain.NewInvalidInput("%s", err.Error())
}
