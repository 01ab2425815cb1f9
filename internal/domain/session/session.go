// Package session holds menu sessions and the wine lists parsed from uploads.
package session

import (
	"strings"
	"time"
)

// StatusParsed is the default status of a new session.
const StatusParsed = "parsed"

// Input is the client-supplied session shape.
type Input struct {
	RestaurantName  *string
	ParsedListID    *string
	UploadReference *string
	Status          *string
}

// MenuSession is one restaurant visit: an upload and the list parsed from it.
type MenuSession struct {
	id              string
	userID          string
	restaurantName  *string
	parsedListID    *string
	uploadReference *string
	status          string
	createdAt       int64
	updatedAt       int64
}

// New normalizes input: strings are trimmed, blanks become nil and a missing
// status defaults to "parsed".
func New(id, userID string, in Input, now time.Time) MenuSession {
	status := StatusParsed
	if s := trimmed(in.Status); s != nil {
		status = *s
	}
	ts := now.UnixMilli()
	return MenuSession{
		id:              id,
		userID:          userID,
		restaurantName:  trimmed(in.RestaurantName),
		parsedListID:    trimmed(in.ParsedListID),
		uploadReference: trimmed(in.UploadReference),
		status:          status,
		createdAt:       ts,
		updatedAt:       ts,
	}
}

// Reconstruct restores a session from storage.
func Reconstruct(
	id, userID string, restaurantName, parsedListID, uploadReference *string,
	status string, createdAt, updatedAt int64,
) MenuSession {
	return MenuSession{
		id: id, userID: userID, restaurantName: restaurantName,
		parsedListID: parsedListID, uploadReference: uploadReference,
		status: status, createdAt: createdAt, updatedAt: updatedAt,
	}
}

// ID returns the session id.
func (s MenuSession) ID() string { return s.id }

// UserID returns the owner id.
func (s MenuSession) UserID() string { return s.userID }

// RestaurantName returns the restaurant, nil when unknown.
func (s MenuSession) RestaurantName() *string { return s.restaurantName }

// ParsedListID returns the linked parsed list, nil when none.
func (s MenuSession) ParsedListID() *string { return s.parsedListID }

// UploadReference returns the upload reference, nil when none.
func (s MenuSession) UploadReference() *string { return s.uploadReference }

// Status returns the session status.
func (s MenuSession) Status() string { return s.status }

// CreatedAt returns the creation timestamp (unix millis).
func (s MenuSession) CreatedAt() int64 { return s.createdAt }

// UpdatedAt returns the last update timestamp (unix millis).
func (s MenuSession) UpdatedAt() int64 { return s.updatedAt }

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
