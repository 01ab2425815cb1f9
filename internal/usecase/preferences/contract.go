package preferences

import (
	"context"

	"github.com/giuliontini/SoDiVino/internal/domain/cellar"
)

// Repository defines the storage contract for user preferences.
type Repository interface {
	Get(ctx context.Context, userID string) (cellar.Preferences, error)
	Save(ctx context.Context, p cellar.Preferences) error
}
