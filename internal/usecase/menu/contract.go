package menu

import (
	"context"

	"github.com/giuliontini/SoDiVino/internal/domain/session"
)

// ListRepository defines the storage contract for parsed wine lists.
type ListRepository interface {
	Create(ctx context.Context, l session.ParsedList) error
	Get(ctx context.Context, userID, id string) (session.ParsedList, error)
}
