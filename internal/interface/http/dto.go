package handlers

import (
	"time"

	"github.com/soundclone/soundclone-api/internal/application"
	"github.com/soundclone/soundclone-api/internal/domain/entity"
)

// URLResolver turns an object key into a public URL.
type URLResolver func(key string) string

type songDTO struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	ArtistID   string    `json:"artist_id"`
	ArtistName string    `json:"artist_name,omitempty"`
	GenreID    string    `json:"genre_id"`
	GenreName  string    `json:"genre_name,omitempty"`
	Duration   int       `json:"duration"`
	AudioURL   string    `json:"audio_url,omitempty"`
	ImageURL   string    `json:"image_url,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type artistDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Bio       string    `json:"bio,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	Followers int       `json:"followers"`
	CreatedAt time.Time `json:"created_at"`
}

type artistDetailDTO struct {
	artistDTO
	Songs []songDTO `json:"songs"`
}

type genreDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type playlistDTO struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	SongCount int       `json:"song_count"`
	Songs     []songDTO `json:"songs,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type historyDTO struct {
	ID       string    `json:"id"`
	Song     *songDTO  `json:"song,omitempty"`
	SongID   string    `json:"song_id"`
	PlayedAt time.Time `json:"played_at"`
}

type userDTO struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	IsVerified bool      `json:"is_verified"`
	HasGoogle  bool      `json:"has_google"`
	Roles      []string  `json:"roles"`
	CreatedAt  time.Time `json:"created_at"`
}

type searchDTO struct {
	Songs   []songDTO   `json:"songs"`
	Artists []artistDTO `json:"artists"`
}

func resolve(url URLResolver, key string) string {
	if url == nil || key == "" {
		return ""
	}
	return url(key)
}

func toSong(s *entity.Song, url URLResolver) songDTO {
	return songDTO{
		ID:         s.ID,
		Title:      s.Title,
		ArtistID:   s.ArtistID,
		ArtistName: s.ArtistName,
		GenreID:    s.GenreID,
		GenreName:  s.GenreName,
		Duration:   s.Duration,
		AudioURL:   resolve(url, s.AudioKey),
		ImageURL:   resolve(url, s.ImageKey),
		CreatedAt:  s.CreatedAt,
	}
}

func toSongs(in []entity.Song, url URLResolver) []songDTO {
	out := make([]songDTO, 0, len(in))
	for i := range in {
		out = append(out, toSong(&in[i], url))
	}
	return out
}

func toArtist(a *entity.Artist, url URLResolver) artistDTO {
	return artistDTO{
		ID:        a.ID,
		Name:      a.Name,
		Bio:       a.Bio,
		ImageURL:  resolve(url, a.ImageKey),
		Followers: a.Followers,
		CreatedAt: a.CreatedAt,
	}
}

func toArtists(in []entity.Artist, url URLResolver) []artistDTO {
	out := make([]artistDTO, 0, len(in))
	for i := range in {
		out = append(out, toArtist(&in[i], url))
	}
	return out
}

func toGenres(in []entity.Genre) []genreDTO {
	out := make([]genreDTO, 0, len(in))
	for _, g := range in {
		out = append(out, genreDTO{ID: g.ID, Name: g.Name})
	}
	return out
}

func toPlaylist(p *entity.Playlist, url URLResolver) playlistDTO {
	dto := playlistDTO{ID: p.ID, Title: p.Title, SongCount: p.SongCount, CreatedAt: p.CreatedAt}
	if p.Songs != nil {
		dto.Songs = toSongs(p.Songs, url)
	}
	return dto
}

func toHistory(in []entity.History, url URLResolver) []historyDTO {
	out := make([]historyDTO, 0, len(in))
	for _, h := range in {
		dto := historyDTO{ID: h.ID, SongID: h.SongID, PlayedAt: h.PlayedAt}
		if h.Song != nil {
			s := toSong(h.Song, url)
			dto.Song = &s
		}
		out = append(out, dto)
	}
	return out
}

func toUser(u *entity.User) userDTO {
	return userDTO{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		IsVerified: u.IsVerified,
		HasGoogle:  u.HasGoogleIdentity(),
		Roles:      u.Roles.Strings(),
		CreatedAt:  u.CreatedAt,
	}
}

func toSearch(r *application.SearchResult, url URLResolver) searchDTO {
	return searchDTO{Songs: toSongs(r.Songs, url), Artists: toArtists(r.Artists, url)}
}
