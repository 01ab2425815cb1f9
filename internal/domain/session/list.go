package session

import (
	"time"

	"github.com/giuliontini/SoDiVino/internal/domain/wine"
)

// Source types of a parsed list.
const (
	SourceImage = "image"
	SourceText  = "text"
)

// ParsedList is the set of wines read from one uploaded menu.
type ParsedList struct {
	id             string
	userID         string
	restaurantName *string
	sourceType     string
	wines          []wine.Item
	createdAt      int64
}

// NewParsedList creates a list. Wines keep their positions.
func NewParsedList(id, userID string, restaurantName *string, sourceType string, wines []wine.Item, now time.Time) ParsedList {
	return ParsedList{
		id:             id,
		userID:         userID,
		restaurantName: trimmed(restaurantName),
		sourceType:     sourceType,
		wines:          wines,
		createdAt:      now.UnixMilli(),
	}
}

// ReconstructParsedList restores a list from storage.
func ReconstructParsedList(id, userID string, restaurantName *string, sourceType string, wines []wine.Item, createdAt int64) ParsedList {
	return ParsedList{
		id: id, userID: userID, restaurantName: restaurantName,
		sourceType: sourceType, wines: wines, createdAt: createdAt,
	}
}

// ID returns the list id.
func (l ParsedList) ID() string { return l.id }

// UserID returns the owner id.
func (l ParsedList) UserID() string { return l.userID }

// RestaurantName returns the restaurant, nil when unknown.
func (l ParsedList) RestaurantName() *string { return l.restaurantName }

// SourceType returns how the list was produced.
func (l ParsedList) SourceType() string { return l.sourceType }

// Wines returns the items in position order.
func (l ParsedList) Wines() []wine.Item { return l.wines }

// CreatedAt returns the creation timestamp (unix millis).
func (l ParsedList) CreatedAt() int64 { return l.createdAt }
