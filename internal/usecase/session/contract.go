package session

import (
	"context"

	domsession "github.com/giuliontini/SoDiVino/internal/domain/session"
)

// Repository defines the storage contract for menu sessions.
type Repository interface {
	Create(ctx context.Context, s domsession.MenuSession) error
	Get(ctx context.Context, userID, id string) (domsession.MenuSession, error)
	Latest(ctx context.Context, userID string) (domsession.MenuSession, error)
}
