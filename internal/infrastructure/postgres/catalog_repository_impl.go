package postgres

import (
	"context"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
	"github.com/soundclone/soundclone-api/internal/domain/repository"
)

const songSelect = `
	SELECT s.id, s.title, s.artist_id, a.name, s.genre_id, g.name, s.duration,
	       s.audio_key, s.image_key, s.created_at, s.updated_at
	FROM songs s
	JOIN artists a ON a.id = s.artist_id
	JOIN genres g ON g.id = s.genre_id`

func scanSong(row scanner) (entity.Song, error) {
	var s entity.Song
	err := row.Scan(&s.ID, &s.Title, &s.ArtistID, &s.ArtistName, &s.GenreID, &s.GenreName,
		&s.Duration, &s.AudioKey, &s.ImageKey, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

type SongRepository struct {
	db DBTX
}

func NewSongRepository(db DBTX) *SongRepository {
	return &SongRepository{db: db}
}

func (r *SongRepository) Create(ctx context.Context, s *entity.Song) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO songs (title, artist_id, genre_id, duration, audio_key, image_key)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, s.Title, s.ArtistID, s.GenreID, s.Duration, s.AudioKey, s.ImageKey)
	return mapErr(row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt))
}

func (r *SongRepository) GetByID(ctx context.Context, id string) (*entity.Song, error) {
	s, err := scanSong(r.db.QueryRow(ctx, songSelect+` WHERE s.id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (r *SongRepository) Update(ctx context.Context, s *entity.Song) error {
	row := r.db.QueryRow(ctx, `
		UPDATE songs
		SET title = $1, artist_id = $2, genre_id = $3, duration = $4, audio_key = $5, image_key = $6, updated_at = now()
		WHERE id = $7
		RETURNING updated_at
	`, s.Title, s.ArtistID, s.GenreID, s.Duration, s.AudioKey, s.ImageKey, s.ID)
	return mapErr(row.Scan(&s.UpdatedAt))
}

func (r *SongRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.db, `DELETE FROM songs WHERE id = $1`, id)
}

const songFilter = ` WHERE ($1::text = '' OR s.genre_id::text = $1) AND ($2::text = '' OR s.artist_id::text = $2)`

func (r *SongRepository) List(ctx context.Context, f repository.SongFilter) ([]entity.Song, int, error) {
	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM songs s`+songFilter, f.GenreID, f.ArtistID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, songSelect+songFilter+` ORDER BY s.created_at DESC, s.id LIMIT $3 OFFSET $4`,
		f.GenreID, f.ArtistID, f.Page.Limit, f.Page.Offset)
	songs, err := collect(rows, err, scanSong)
	return songs, total, err
}

func (r *SongRepository) SearchByPrefix(ctx context.Context, prefix string, limit int) ([]entity.Song, error) {
	rows, err := r.db.Query(ctx, songSelect+` WHERE s.title ILIKE $1 ORDER BY s.title, s.id LIMIT $2`, prefixPattern(prefix), limit)
	return collect(rows, err, scanSong)
}

var _ repository.SongRepository = (*SongRepository)(nil)

const artistSelect = `
	SELECT a.id, a.name, a.bio, a.image_key,
	       (SELECT COUNT(*) FROM follow_artists f WHERE f.artist_id = a.id),
	       a.created_at, a.updated_at
	FROM artists a`

func scanArtist(row scanner) (entity.Artist, error) {
	var a entity.Artist
	err := row.Scan(&a.ID, &a.Name, &a.Bio, &a.ImageKey, &a.Followers, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

type ArtistRepository struct {
	db DBTX
}

func NewArtistRepository(db DBTX) *ArtistRepository {
	return &ArtistRepository{db: db}
}

func (r *ArtistRepository) Create(ctx context.Context, a *entity.Artist) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO artists (name, bio, image_key) VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`, a.Name, a.Bio, a.ImageKey)
	return mapErr(row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt))
}

func (r *ArtistRepository) GetByID(ctx context.Context, id string) (*entity.Artist, error) {
	a, err := scanArtist(r.db.QueryRow(ctx, artistSelect+` WHERE a.id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (r *ArtistRepository) Update(ctx context.Context, a *entity.Artist) error {
	row := r.db.QueryRow(ctx, `
		UPDATE artists SET name = $1, bio = $2, image_key = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at
	`, a.Name, a.Bio, a.ImageKey, a.ID)
	return mapErr(row.Scan(&a.UpdatedAt))
}

func (r *ArtistRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.db, `DELETE FROM artists WHERE id = $1`, id)
}

func (r *ArtistRepository) List(ctx context.Context, page repository.Page) ([]entity.Artist, int, error) {
	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM artists`)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, artistSelect+` ORDER BY a.name, a.id LIMIT $1 OFFSET $2`, page.Limit, page.Offset)
	artists, err := collect(rows, err, scanArtist)
	return artists, total, err
}

func (r *ArtistRepository) SearchByPrefix(ctx context.Context, prefix string, limit int) ([]entity.Artist, error) {
	rows, err := r.db.Query(ctx, artistSelect+` WHERE a.name ILIKE $1 ORDER BY a.name, a.id LIMIT $2`, prefixPattern(prefix), limit)
	return collect(rows, err, scanArtist)
}

var _ repository.ArtistRepository = (*ArtistRepository)(nil)

type GenreRepository struct {
	db DBTX
}

func NewGenreRepository(db DBTX) *GenreRepository {
	return &GenreRepository{db: db}
}

func scanGenre(row scanner) (entity.Genre, error) {
	var g entity.Genre
	err := row.Scan(&g.ID, &g.Name, &g.CreatedAt)
	return g, err
}

func (r *GenreRepository) Create(ctx context.Context, g *entity.Genre) error {
	row := r.db.QueryRow(ctx, `INSERT INTO genres (name) VALUES ($1) RETURNING id, created_at`, g.Name)
	return mapErr(row.Scan(&g.ID, &g.CreatedAt))
}

func (r *GenreRepository) GetByID(ctx context.Context, id string) (*entity.Genre, error) {
	g, err := scanGenre(r.db.QueryRow(ctx, `SELECT id, name, created_at FROM genres WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return &g, nil
}

func (r *GenreRepository) Update(ctx context.Context, g *entity.Genre) error {
	return execOne(ctx, r.db, `UPDATE genres SET name = $1 WHERE id = $2`, g.Name, g.ID)
}

func (r *GenreRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.db, `DELETE FROM genres WHERE id = $1`, id)
}

func (r *GenreRepository) List(ctx context.Context) ([]entity.Genre, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, created_at FROM genres ORDER BY name`)
	return collect(rows, err, scanGenre)
}

var _ repository.GenreRepository = (*GenreRepository)(nil)
