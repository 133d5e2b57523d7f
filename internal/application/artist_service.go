package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
)

const artistImageCategory = "artists"

type ArtistInput struct {
	Name string `json:"name" validate:"required,max=200"`
	Bio  string `json:"bio" validate:"max=5000"`
}

type ArtistUpdate struct {
	Name *string `json:"name" validate:"omitempty,min=1,max=200"`
	Bio  *string `json:"bio" validate:"omitempty,max=5000"`
}

// ArtistDetail is an artist with its songs.
type ArtistDetail struct {
	Artist *entity.Artist
	Songs  []entity.Song
}

func (s *CatalogService) ListArtists(ctx context.Context, page repo.Page) ([]entity.Artist, int, error) {
	artists, total, err := s.Store.Repos().Artists.List(ctx, page.Normalize())
	if err != nil {
		return nil, 0, fail(s.Logger, "failed to list artists", err, nil)
	}
	return artists, total, nil
}

// GetArtist returns the artist, its follower count and up to one page of its songs.
func (s *CatalogService) GetArtist(ctx context.Context, id string) (*ArtistDetail, error) {
	r := s.Store.Repos()
	a, err := r.Artists.GetByID(ctx, id)
	if err != nil {
		return nil, fail(s.Logger, "failed to load artist", mapNotFound(err, ErrArtistNotFound), logrus.Fields{"artist_id": id})
	}
	songs, _, err := r.Songs.List(ctx, repo.SongFilter{ArtistID: id, Page: repo.Page{Limit: repo.MaxPageSize}})
	if err != nil {
		return nil, fail(s.Logger, "failed to load artist songs", err, logrus.Fields{"artist_id": id})
	}
	return &ArtistDetail{Artist: a, Songs: songs}, nil
}

func (s *CatalogService) CreateArtist(ctx context.Context, in ArtistInput, image *Upload) (*entity.Artist, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := image.checkType("image/", "image"); err != nil {
		return nil, err
	}
	a := &entity.Artist{Name: in.Name, Bio: in.Bio}
	if image != nil {
		key, err := s.store(ctx, image, KindImages, artistImageCategory)
		if err != nil {
			return nil, err
		}
		a.ImageKey = key
	}
	if err := s.Store.Repos().Artists.Create(ctx, a); err != nil {
		s.discard(ctx, a.ImageKey)
		return nil, fail(s.Logger, "failed to create artist", err, logrus.Fields{"name": a.Name})
	}
	if s.Index != nil {
		s.indexWarn(s.Index.IndexArtist(ctx, a), "failed to index artist", logrus.Fields{"artist_id": a.ID})
	}
	return a, nil
}

func (s *CatalogService) UpdateArtist(ctx context.Context, id string, in ArtistUpdate, image *Upload) (*entity.Artist, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := image.checkType("image/", "image"); err != nil {
		return nil, err
	}
	r := s.Store.Repos()
	a, err := r.Artists.GetByID(ctx, id)
	if err != nil {
		return nil, fail(s.Logger, "failed to update artist", mapNotFound(err, ErrArtistNotFound), logrus.Fields{"artist_id": id})
	}
	renamed := false
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		renamed = name != a.Name
		a.Name = name
	}
	if in.Bio != nil {
		a.Bio = *in.Bio
	}
	oldImage := a.ImageKey
	if image != nil {
		key, err := s.store(ctx, image, KindImages, artistImageCategory)
		if err != nil {
			return nil, err
		}
		a.ImageKey = key
	}
	if err := r.Artists.Update(ctx, a); err != nil {
		if image != nil {
			s.discard(ctx, a.ImageKey)
		}
		return nil, fail(s.Logger, "failed to update artist", mapNotFound(err, ErrArtistNotFound), logrus.Fields{"artist_id": id})
	}
	if image != nil {
		s.discard(ctx, oldImage)
	}
	if s.Index != nil {
		s.indexWarn(s.Index.IndexArtist(ctx, a), "failed to index artist", logrus.Fields{"artist_id": id})
		if renamed {
			s.reindexArtistSongs(ctx, r, id)
		}
	}
	return a, nil
}

// reindexArtistSongs refreshes the denormalized artist name on every indexed song.
func (s *CatalogService) reindexArtistSongs(ctx context.Context, r repo.Repositories, artistID string) {
	songs, err := allSongs(ctx, r, repo.SongFilter{ArtistID: artistID})
	if err != nil {
		s.indexWarn(err, "failed to load songs for reindex", logrus.Fields{"artist_id": artistID})
		return
	}
	for i := range songs {
		s.indexWarn(s.Index.IndexSong(ctx, &songs[i]), "failed to index song", logrus.Fields{"song_id": songs[i].ID})
	}
}

// DeleteArtist removes the artist and, through the cascade, its songs, follows,
// likes and playlist entries.
func (s *CatalogService) DeleteArtist(ctx context.Context, id string) error {
	var artist *entity.Artist
	var songs []entity.Song
	err := s.Store.WithinTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		var err error
		if artist, err = r.Artists.GetByID(ctx, id); err != nil {
			return mapNotFound(err, ErrArtistNotFound)
		}
		if songs, err = allSongs(ctx, r, repo.SongFilter{ArtistID: id}); err != nil {
			return err
		}
		if err := r.Artists.Delete(ctx, id); err != nil {
			return mapNotFound(err, ErrArtistNotFound)
		}
		_, err = r.Playlists.DeleteEmptyLikedPlaylists(ctx)
		return err
	})
	if err != nil {
		return fail(s.Logger, "failed to delete artist", err, logrus.Fields{"artist_id": id})
	}
	s.discard(ctx, artist.ImageKey)
	for _, song := range songs {
		s.discard(ctx, song.AudioKey, song.ImageKey)
		if s.Index != nil {
			s.indexWarn(s.Index.DeleteSong(ctx, song.ID), "failed to unindex song", logrus.Fields{"song_id": song.ID})
		}
	}
	if s.Index != nil {
		s.indexWarn(s.Index.DeleteArtist(ctx, id), "failed to unindex artist", logrus.Fields{"artist_id": id})
	}
	return nil
}

// allSongs pages through every song matching f.
func allSongs(ctx context.Context, r repo.Repositories, f repo.SongFilter) ([]entity.Song, error) {
	var out []entity.Song
	f.Page = repo.Page{Limit: repo.MaxPageSize}
	for {
		batch, total, err := r.Songs.List(ctx, f)
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
		f.Page.Offset += len(batch)
		if len(batch) == 0 || f.Page.Offset >= total {
			return out, nil
		}
	}
}
