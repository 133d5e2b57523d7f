package postgres

import (
	"context"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
	"github.com/soundclone/soundclone-api/internal/domain/repository"
)

const playlistSelect = `
	SELECT p.id, p.user_id, p.title,
	       (SELECT COUNT(*) FROM playlist_songs ps WHERE ps.playlist_id = p.id),
	       p.created_at, p.updated_at
	FROM playlists p`

func scanPlaylist(row scanner) (entity.Playlist, error) {
	var p entity.Playlist
	err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.SongCount, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

type PlaylistRepository struct {
	db DBTX
}

func NewPlaylistRepository(db DBTX) *PlaylistRepository {
	return &PlaylistRepository{db: db}
}

func (r *PlaylistRepository) Create(ctx context.Context, p *entity.Playlist) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO playlists (user_id, title) VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`, p.UserID, p.Title)
	return mapErr(row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt))
}

func (r *PlaylistRepository) one(ctx context.Context, where string, args ...any) (*entity.Playlist, error) {
	p, err := scanPlaylist(r.db.QueryRow(ctx, playlistSelect+" WHERE "+where, args...))
	if err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *PlaylistRepository) GetByID(ctx context.Context, id string) (*entity.Playlist, error) {
	return r.one(ctx, "p.id = $1", id)
}

func (r *PlaylistRepository) FindByTitle(ctx context.Context, userID, title string) (*entity.Playlist, error) {
	return r.one(ctx, "p.user_id = $1 AND p.title = $2 ORDER BY p.created_at LIMIT 1", userID, title)
}

func (r *PlaylistRepository) ListByUser(ctx context.Context, userID string) ([]entity.Playlist, error) {
	rows, err := r.db.Query(ctx, playlistSelect+` WHERE p.user_id = $1 ORDER BY p.created_at`, userID)
	return collect(rows, err, scanPlaylist)
}

func (r *PlaylistRepository) Update(ctx context.Context, p *entity.Playlist) error {
	row := r.db.QueryRow(ctx, `
		UPDATE playlists SET title = $1, updated_at = now() WHERE id = $2
		RETURNING updated_at
	`, p.Title, p.ID)
	return mapErr(row.Scan(&p.UpdatedAt))
}

func (r *PlaylistRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.db, `DELETE FROM playlists WHERE id = $1`, id)
}

func (r *PlaylistRepository) AddSong(ctx context.Context, playlistID, songID string) error {
	_, err := r.db.Exec(ctx, `INSERT INTO playlist_songs (playlist_id, song_id) VALUES ($1, $2)`, playlistID, songID)
	return mapErr(err)
}

func (r *PlaylistRepository) RemoveSong(ctx context.Context, playlistID, songID string) error {
	return execOne(ctx, r.db, `DELETE FROM playlist_songs WHERE playlist_id = $1 AND song_id = $2`, playlistID, songID)
}

func (r *PlaylistRepository) HasSong(ctx context.Context, playlistID, songID string) (bool, error) {
	n, err := count(ctx, r.db, `SELECT COUNT(*) FROM playlist_songs WHERE playlist_id = $1 AND song_id = $2`, playlistID, songID)
	return n > 0, err
}

func (r *PlaylistRepository) CountSongs(ctx context.Context, playlistID string) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM playlist_songs WHERE playlist_id = $1`, playlistID)
}

func (r *PlaylistRepository) ListSongs(ctx context.Context, playlistID string) ([]entity.Song, error) {
	rows, err := r.db.Query(ctx, songSelect+`
		JOIN playlist_songs ps ON ps.song_id = s.id
		WHERE ps.playlist_id = $1
		ORDER BY ps.added_at, s.id
	`, playlistID)
	return collect(rows, err, scanSong)
}

func (r *PlaylistRepository) DeleteEmptyLikedPlaylists(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM playlists p
		WHERE p.title = $1
		  AND NOT EXISTS (SELECT 1 FROM playlist_songs ps WHERE ps.playlist_id = p.id)
	`, entity.LikedSongsTitle)
	if err != nil {
		return 0, mapErr(err)
	}
	return tag.RowsAffected(), nil
}

var _ repository.PlaylistRepository = (*PlaylistRepository)(nil)

type LikeRepository struct {
	db DBTX
}

func NewLikeRepository(db DBTX) *LikeRepository {
	return &LikeRepository{db: db}
}

func (r *LikeRepository) Find(ctx context.Context, userID, songID string) (*entity.LikeSong, error) {
	l := &entity.LikeSong{}
	err := r.db.QueryRow(ctx, `
		SELECT user_id, song_id, created_at FROM like_songs WHERE user_id = $1 AND song_id = $2
	`, userID, songID).Scan(&l.UserID, &l.SongID, &l.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return l, nil
}

func (r *LikeRepository) Create(ctx context.Context, l *entity.LikeSong) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO like_songs (user_id, song_id) VALUES ($1, $2) RETURNING created_at
	`, l.UserID, l.SongID)
	return mapErr(row.Scan(&l.CreatedAt))
}

func (r *LikeRepository) Delete(ctx context.Context, userID, songID string) error {
	return execOne(ctx, r.db, `DELETE FROM like_songs WHERE user_id = $1 AND song_id = $2`, userID, songID)
}

func (r *LikeRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	return count(ctx, r.db, `SELECT COUNT(*) FROM like_songs WHERE user_id = $1`, userID)
}

func (r *LikeRepository) ListSongsByUser(ctx context.Context, userID string) ([]entity.Song, error) {
	rows, err := r.db.Query(ctx, songSelect+`
		JOIN like_songs l ON l.song_id = s.id
		WHERE l.user_id = $1
		ORDER BY l.created_at DESC, s.id
	`, userID)
	return collect(rows, err, scanSong)
}

var _ repository.LikeRepository = (*LikeRepository)(nil)

type HistoryRepository struct {
	db DBTX
}

func NewHistoryRepository(db DBTX) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) Create(ctx context.Context, h *entity.History) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO histories (user_id, song_id) VALUES ($1, $2) RETURNING id, played_at
	`, h.UserID, h.SongID)
	return mapErr(row.Scan(&h.ID, &h.PlayedAt))
}

func (r *HistoryRepository) RecentByUser(ctx context.Context, userID string, perDay int) ([]entity.History, error) {
	rows, err := r.db.Query(ctx, `
		WITH ranked AS (
			SELECT h.id, h.user_id, h.song_id, h.played_at,
			       ROW_NUMBER() OVER (
			           PARTITION BY (h.played_at AT TIME ZONE 'UTC')::date
			           ORDER BY h.played_at DESC
			       ) AS rn
			FROM histories h
			WHERE h.user_id = $1
		)
		SELECT h.id, h.user_id, h.played_at,
		       s.id, s.title, s.artist_id, a.name, s.genre_id, g.name, s.duration,
		       s.audio_key, s.image_key, s.created_at, s.updated_at
		FROM ranked h
		JOIN songs s ON s.id = h.song_id
		JOIN artists a ON a.id = s.artist_id
		JOIN genres g ON g.id = s.genre_id
		WHERE h.rn <= $2
		ORDER BY h.played_at DESC
	`, userID, perDay)
	return collect(rows, err, func(row scanner) (entity.History, error) {
		var h entity.History
		var s entity.Song
		err := row.Scan(&h.ID, &h.UserID, &h.PlayedAt,
			&s.ID, &s.Title, &s.ArtistID, &s.ArtistName, &s.GenreID, &s.GenreName, &s.Duration,
			&s.AudioKey, &s.ImageKey, &s.CreatedAt, &s.UpdatedAt)
		h.SongID = s.ID
		h.Song = &s
		return h, err
	})
}

func (r *HistoryRepository) DeleteByUser(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM histories WHERE user_id = $1`, userID)
	return mapErr(err)
}

var _ repository.HistoryRepository = (*HistoryRepository)(nil)

type FollowRepository struct {
	db DBTX
}

func NewFollowRepository(db DBTX) *FollowRepository {
	return &FollowRepository{db: db}
}

func (r *FollowRepository) Find(ctx context.Context, userID, artistID string) (*entity.FollowArtist, error) {
	f := &entity.FollowArtist{}
	err := r.db.QueryRow(ctx, `
		SELECT user_id, artist_id, created_at FROM follow_artists WHERE user_id = $1 AND artist_id = $2
	`, userID, artistID).Scan(&f.UserID, &f.ArtistID, &f.CreatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return f, nil
}

func (r *FollowRepository) Create(ctx context.Context, f *entity.FollowArtist) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO follow_artists (user_id, artist_id) VALUES ($1, $2) RETURNING created_at
	`, f.UserID, f.ArtistID)
	return mapErr(row.Scan(&f.CreatedAt))
}

func (r *FollowRepository) Delete(ctx context.Context, userID, artistID string) error {
	return execOne(ctx, r.db, `DELETE FROM follow_artists WHERE user_id = $1 AND artist_id = $2`, userID, artistID)
}

func (r *FollowRepository) ListArtistsByUser(ctx context.Context, userID string) ([]entity.Artist, error) {
	rows, err := r.db.Query(ctx, artistSelect+`
		JOIN follow_artists fa ON fa.artist_id = a.id
		WHERE fa.user_id = $1
		ORDER BY fa.created_at DESC
	`, userID)
	return collect(rows, err, scanArtist)
}

var _ repository.FollowRepository = (*FollowRepository)(nil)
