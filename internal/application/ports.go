package application

import (
	"context"
	"time"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
)

// Notifier delivers account emails. Implementations enqueue rather than send.
type Notifier interface {
	SendVerification(ctx context.Context, u *entity.User, link string) error
	SendPasswordOTP(ctx context.Context, u *entity.User, code string, ttl time.Duration) error
}

// GoogleIdentity is the verified content of a Google ID token.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

// IdentityVerifier validates external identity tokens.
type IdentityVerifier interface {
	VerifyGoogleToken(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

// SearchIndex is the optional full-text index kept alongside the catalog.
type SearchIndex interface {
	IndexSong(ctx context.Context, s *entity.Song) error
	DeleteSong(ctx context.Context, id string) error
	IndexArtist(ctx context.Context, a *entity.Artist) error
	DeleteArtist(ctx context.Context, id string) error
	SearchSongs(ctx context.Context, prefix string, limit int) ([]entity.Song, error)
	SearchArtists(ctx context.Context, prefix string, limit int) ([]entity.Artist, error)
}
