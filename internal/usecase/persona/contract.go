package persona

import (
	"context"

	"github.com/giuliontini/SoDiVino/internal/domain/cellar"
)

// Repository defines the storage contract for personas.
type Repository interface {
	Save(ctx context.Context, p cellar.Persona) error
	SaveMany(ctx context.Context, personas []cellar.Persona) error
	Get(ctx context.Context, userID, id string) (cellar.Persona, error)
	List(ctx context.Context, userID string) ([]cellar.Persona, error)
	Delete(ctx context.Context, userID, id string) error
}
