package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
)

type SongInput struct {
	Title    string `json:"title" validate:"required,max=200"`
	ArtistID string `json:"artist_id" validate:"required,uuid"`
	GenreID  string `json:"genre_id" validate:"required,uuid"`
	Duration int    `json:"duration" validate:"gte=0"`
}

// SongUpdate carries the fields to change; nil pointers keep the current value.
type SongUpdate struct {
	Title    *string `json:"title" validate:"omitempty,min=1,max=200"`
	ArtistID *string `json:"artist_id" validate:"omitempty,uuid"`
	GenreID  *string `json:"genre_id" validate:"omitempty,uuid"`
	Duration *int    `json:"duration" validate:"omitempty,gte=0"`
}

func (s *CatalogService) GetSong(ctx context.Context, id string) (*entity.Song, error) {
	song, err := s.Store.Repos().Songs.GetByID(ctx, id)
	if err != nil {
		return nil, fail(s.Logger, "failed to load song", mapNotFound(err, ErrSongNotFound), logrus.Fields{"song_id": id})
	}
	return song, nil
}

func (s *CatalogService) ListSongs(ctx context.Context, f repo.SongFilter) ([]entity.Song, int, error) {
	f.Page = f.Page.Normalize()
	songs, total, err := s.Store.Repos().Songs.List(ctx, f)
	if err != nil {
		return nil, 0, fail(s.Logger, "failed to list songs", err, nil)
	}
	return songs, total, nil
}

// CreateSong uploads the audio (and optional cover) then writes the metadata row.
// If the row cannot be written the uploaded blobs are removed again.
func (s *CatalogService) CreateSong(ctx context.Context, in SongInput, audio *Upload, image *Upload) (*entity.Song, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if audio == nil {
		return nil, validationErr("invalid payload", map[string]string{"song": "is required"})
	}
	if err := audio.checkType("audio/", "song"); err != nil {
		return nil, err
	}
	if err := image.checkType("image/", "image"); err != nil {
		return nil, err
	}

	r := s.Store.Repos()
	if _, err := r.Artists.GetByID(ctx, in.ArtistID); err != nil {
		return nil, fail(s.Logger, "failed to create song", mapNotFound(err, ErrArtistNotFound), nil)
	}
	genre, err := r.Genres.GetByID(ctx, in.GenreID)
	if err != nil {
		return nil, fail(s.Logger, "failed to create song", mapNotFound(err, ErrGenreNotFound), nil)
	}

	song := &entity.Song{Title: in.Title, ArtistID: in.ArtistID, GenreID: in.GenreID, Duration: in.Duration}
	if song.AudioKey, err = s.store(ctx, audio, KindSongs, genre.Name); err != nil {
		return nil, err
	}
	if image != nil {
		if song.ImageKey, err = s.store(ctx, image, KindImages, genre.Name); err != nil {
			s.discard(ctx, song.AudioKey)
			return nil, err
		}
	}
	if err := r.Songs.Create(ctx, song); err != nil {
		s.discard(ctx, song.AudioKey, song.ImageKey)
		return nil, fail(s.Logger, "failed to create song", err, logrus.Fields{"title": song.Title})
	}

	created, err := r.Songs.GetByID(ctx, song.ID)
	if err != nil {
		return nil, fail(s.Logger, "failed to load song", err, logrus.Fields{"song_id": song.ID})
	}
	if s.Index != nil {
		s.indexWarn(s.Index.IndexSong(ctx, created), "failed to index song", logrus.Fields{"song_id": created.ID})
	}
	return created, nil
}

// UpdateSong applies metadata changes and optional file replacements. Replaced
// blobs are deleted only after the row write succeeds.
func (s *CatalogService) UpdateSong(ctx context.Context, id string, in SongUpdate, audio *Upload, image *Upload) (*entity.Song, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := audio.checkType("audio/", "song"); err != nil {
		return nil, err
	}
	if err := image.checkType("image/", "image"); err != nil {
		return nil, err
	}

	r := s.Store.Repos()
	song, err := r.Songs.GetByID(ctx, id)
	if err != nil {
		return nil, fail(s.Logger, "failed to update song", mapNotFound(err, ErrSongNotFound), logrus.Fields{"song_id": id})
	}
	if in.Title != nil {
		song.Title = strings.TrimSpace(*in.Title)
	}
	if in.Duration != nil {
		song.Duration = *in.Duration
	}
	if in.ArtistID != nil && *in.ArtistID != song.ArtistID {
		if _, err := r.Artists.GetByID(ctx, *in.ArtistID); err != nil {
			return nil, fail(s.Logger, "failed to update song", mapNotFound(err, ErrArtistNotFound), nil)
		}
		song.ArtistID = *in.ArtistID
	}
	if in.GenreID != nil && *in.GenreID != song.GenreID {
		g, err := r.Genres.GetByID(ctx, *in.GenreID)
		if err != nil {
			return nil, fail(s.Logger, "failed to update song", mapNotFound(err, ErrGenreNotFound), nil)
		}
		song.GenreID, song.GenreName = g.ID, g.Name
	}

	oldAudio, oldImage := song.AudioKey, song.ImageKey
	var fresh []string
	if audio != nil {
		key, err := s.store(ctx, audio, KindSongs, song.GenreName)
		if err != nil {
			return nil, err
		}
		song.AudioKey = key
		fresh = append(fresh, key)
	}
	if image != nil {
		key, err := s.store(ctx, image, KindImages, song.GenreName)
		if err != nil {
			s.discard(ctx, fresh...)
			return nil, err
		}
		song.ImageKey = key
		fresh = append(fresh, key)
	}
	if err := r.Songs.Update(ctx, song); err != nil {
		s.discard(ctx, fresh...)
		return nil, fail(s.Logger, "failed to update song", mapNotFound(err, ErrSongNotFound), logrus.Fields{"song_id": id})
	}
	if audio != nil {
		s.discard(ctx, oldAudio)
	}
	if image != nil {
		s.discard(ctx, oldImage)
	}

	updated, err := r.Songs.GetByID(ctx, id)
	if err != nil {
		return nil, fail(s.Logger, "failed to load song", err, logrus.Fields{"song_id": id})
	}
	if s.Index != nil {
		s.indexWarn(s.Index.IndexSong(ctx, updated), "failed to index song", logrus.Fields{"song_id": id})
	}
	return updated, nil
}

// DeleteSong removes the song and every row that references it. Liked-songs
// playlists emptied by the cascade are removed in the same transaction.
func (s *CatalogService) DeleteSong(ctx context.Context, id string) error {
	var song *entity.Song
	err := s.Store.WithinTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		var err error
		if song, err = r.Songs.GetByID(ctx, id); err != nil {
			return mapNotFound(err, ErrSongNotFound)
		}
		if err := r.Songs.Delete(ctx, id); err != nil {
			return mapNotFound(err, ErrSongNotFound)
		}
		_, err = r.Playlists.DeleteEmptyLikedPlaylists(ctx)
		return err
	})
	if err != nil {
		return fail(s.Logger, "failed to delete song", err, logrus.Fields{"song_id": id})
	}
	s.discard(ctx, song.AudioKey, song.ImageKey)
	if s.Index != nil {
		s.indexWarn(s.Index.DeleteSong(ctx, id), "failed to unindex song", logrus.Fields{"song_id": id})
	}
	return nil
}
