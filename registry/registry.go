// Package registry stores tourist contact records and their latest
// reported locations behind an injected store interface, keeping the
// service layer free of process-wide mutable state.
package registry

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no record exists for the given identifier.
var ErrNotFound = errors.New("record not found")

// Tourist holds the contact details extracted from an issued credential.
type Tourist struct {
	DID              string `gorm:"primaryKey"`
	Name             string
	EmergencyContact string
}

// Location is the latest reported position for a tourist.
type Location struct {
	DID string `gorm:"primaryKey"`
	Lat float64
	Lon float64
	At  time.Time
}

// Store persists tourists and locations. Put replaces any existing record
// for the same DID.
type Store interface {
	PutTourist(ctx context.Context, t Tourist) error
	GetTourist(ctx context.Context, did string) (*Tourist, error)
	PutLocation(ctx context.Context, l Location) error
	GetLocation(ctx context.Context, did string) (*Location, error)
}
