package tasteprofile

import (
	"context"

	"github.com/giuliontini/SoDiVino/internal/domain/cellar"
)

// Repository defines the storage contract for taste profiles.
type Repository interface {
	Save(ctx context.Context, p cellar.TasteProfile) error
	Get(ctx context.Context, userID, id string) (cellar.TasteProfile, error)
	Latest(ctx context.Context, userID string) (cellar.TasteProfile, error)
}
