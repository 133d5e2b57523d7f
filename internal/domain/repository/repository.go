package repository

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// Page is a limit/offset window for list queries.
type Page struct {
	Limit  int
	Offset int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// Repositories groups every repository bound to the same connection or transaction.
type Repositories struct {
	Users     UserRepository
	Roles     RoleRepository
	Songs     SongRepository
	Artists   ArtistRepository
	Genres    GenreRepository
	Playlists PlaylistRepository
	Likes     LikeRepository
	History   HistoryRepository
	Follows   FollowRepository
}

// Store hands out repositories and runs multi-row writes atomically.
// Repositories passed to fn share one transaction; returning an error from fn
// rolls every write back.
type Store interface {
	Repos() Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error
}
