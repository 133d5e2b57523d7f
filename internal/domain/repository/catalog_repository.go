package repository

import (
	"context"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
)

type SongFilter struct {
	GenreID  string
	ArtistID string
	Page     Page
}

type SongRepository interface {
	Create(ctx context.Context, s *entity.Song) error
	GetByID(ctx context.Context, id string) (*entity.Song, error)
	Update(ctx context.Context, s *entity.Song) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f SongFilter) ([]entity.Song, int, error)
	// SearchByPrefix matches titles starting with prefix, case-insensitively.
	SearchByPrefix(ctx context.Context, prefix string, limit int) ([]entity.Song, error)
}

type ArtistRepository interface {
	Create(ctx context.Context, a *entity.Artist) error
	GetByID(ctx context.Context, id string) (*entity.Artist, error)
	Update(ctx context.Context, a *entity.Artist) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page Page) ([]entity.Artist, int, error)
	SearchByPrefix(ctx context.Context, prefix string, limit int) ([]entity.Artist, error)
}

type GenreRepository interface {
	Create(ctx context.Context, g *entity.Genre) error
	GetByID(ctx context.Context, id string) (*entity.Genre, error)
	Update(ctx context.Context, g *entity.Genre) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]entity.Genre, error)
}
