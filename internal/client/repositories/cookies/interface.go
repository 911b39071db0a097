package cookies

import (
	"context"
	"time"
)

// Cookie is a single stored value. A zero ExpiresAt never expires.
type Cookie struct {
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Expired reports whether c is expired at now.
func (c Cookie) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Repository stores cookies.
//
// Get returns (nil, nil) for missing or expired cookies. Set and Delete
// are atomic across all of their arguments: either every cookie is written
// (removed) or none is.
type Repository interface {
	Get(ctx context.Context, name string) (*Cookie, error)
	Set(ctx context.Context, cookies ...Cookie) error
	Delete(ctx context.Context, names ...string) error
	List(ctx context.Context) ([]Cookie, error)
	Clear(ctx context.Context) error
	Close() error
}

// Clock returns the current time; replaced in tests.
type Clock func() time.Time
