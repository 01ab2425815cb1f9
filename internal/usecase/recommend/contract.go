package recommend

import (
	"context"

	"github.com/giuliontini/SoDiVino/internal/domain/cellar"
	"github.com/giuliontini/SoDiVino/internal/domain/session"
)

// PersonaReader loads personas by id.
type PersonaReader interface {
	GetMany(ctx context.Context, userID string, ids []string) ([]cellar.Persona, error)
}

// PreferencesReader loads user preferences.
type PreferencesReader interface {
	Get(ctx context.Context, userID string) (cellar.Preferences, error)
}

// TasteProfileReader loads taste profiles.
type TasteProfileReader interface {
	Get(ctx context.Context, userID, id string) (cellar.TasteProfile, error)
}

// ListReader loads parsed wine lists.
type ListReader interface {
	Get(ctx context.Context, userID, id string) (session.ParsedList, error)
}
