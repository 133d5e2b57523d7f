package repository

import (
	"context"
	"io"
	"time"
)

// OTPStore keeps password-reset codes and their rate-limit flags in the cache store.
type OTPStore interface {
	// AcquireCooldown sets the rate-limit flag if absent and reports whether it did.
	AcquireCooldown(ctx context.Context, email string, window time.Duration) (bool, error)
	SaveCode(ctx context.Context, email, code string, ttl time.Duration) error
	// ConsumeCode deletes the stored code only if it equals code, atomically,
	// and reports whether it did. A missing or expired code never matches.
	ConsumeCode(ctx context.Context, email, code string) (bool, error)
	// Discard removes both the code and the rate-limit flag.
	Discard(ctx context.Context, email string) error
}

// Session is the server-side record backing a token pair.
type Session struct {
	UserID    string
	SessionID string
	Email     string
	Name      string
	Roles     []string
}

type SessionStore interface {
	Save(ctx context.Context, s Session, ttl time.Duration) error
	// Get returns ErrNotFound when no session exists.
	Get(ctx context.Context, userID string) (*Session, error)
	Delete(ctx context.Context, userID string) error
}

// ObjectStore persists audio and image blobs by key.
type ObjectStore interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	URL(key string) string
}
