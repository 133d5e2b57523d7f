package entity

import (
	"strings"
	"time"
)

// LikedSongsTitle distinguishes the per-user playlist that mirrors likes.
const LikedSongsTitle = "liked songs"

type Playlist struct {
	ID        string
	UserID    string
	Title     string
	SongCount int
	Songs     []Song
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Playlist) IsLikedSongs() bool { return p.Title == LikedSongsTitle }

// IsReservedTitle reports whether a user-supplied title collides with the
// liked-songs playlist, ignoring case and surrounding space.
func IsReservedTitle(title string) bool {
	return strings.EqualFold(strings.TrimSpace(title), LikedSongsTitle)
}

type PlaylistSong struct {
	PlaylistID string
	SongID     string
	AddedAt    time.Time
}

type LikeSong struct {
	UserID    string
	SongID    string
	CreatedAt time.Time
}

// History is a single play event.
type History struct {
	ID       string
	UserID   string
	SongID   string
	Song     *Song
	PlayedAt time.Time
}

type FollowArtist struct {
	UserID    string
	ArtistID  string
	CreatedAt time.Time
}
