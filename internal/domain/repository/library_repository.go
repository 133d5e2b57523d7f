package repository

import (
	"context"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
)

type PlaylistRepository interface {
	Create(ctx context.Context, p *entity.Playlist) error
	GetByID(ctx context.Context, id string) (*entity.Playlist, error)
	// FindByTitle returns the user's playlist with exactly this title.
	FindByTitle(ctx context.Context, userID, title string) (*entity.Playlist, error)
	ListByUser(ctx context.Context, userID string) ([]entity.Playlist, error)
	Update(ctx context.Context, p *entity.Playlist) error
	Delete(ctx context.Context, id string) error

	AddSong(ctx context.Context, playlistID, songID string) error
	// RemoveSong returns ErrNotFound when the song is not in the playlist.
	RemoveSong(ctx context.Context, playlistID, songID string) error
	HasSong(ctx context.Context, playlistID, songID string) (bool, error)
	CountSongs(ctx context.Context, playlistID string) (int, error)
	ListSongs(ctx context.Context, playlistID string) ([]entity.Song, error)
	// DeleteEmptyLikedPlaylists removes liked-songs playlists left without songs.
	DeleteEmptyLikedPlaylists(ctx context.Context) (int64, error)
}

type LikeRepository interface {
	Find(ctx context.Context, userID, songID string) (*entity.LikeSong, error)
	Create(ctx context.Context, l *entity.LikeSong) error
	Delete(ctx context.Context, userID, songID string) error
	CountByUser(ctx context.Context, userID string) (int, error)
	ListSongsByUser(ctx context.Context, userID string) ([]entity.Song, error)
}

type HistoryRepository interface {
	Create(ctx context.Context, h *entity.History) error
	// RecentByUser returns at most perDay plays per UTC day, newest first.
	RecentByUser(ctx context.Context, userID string, perDay int) ([]entity.History, error)
	DeleteByUser(ctx context.Context, userID string) error
}

type FollowRepository interface {
	Find(ctx context.Context, userID, artistID string) (*entity.FollowArtist, error)
	Create(ctx context.Context, f *entity.FollowArtist) error
	Delete(ctx context.Context, userID, artistID string) error
	ListArtistsByUser(ctx context.Context, userID string) ([]entity.Artist, error)
}
