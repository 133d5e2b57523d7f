package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
)

// LikeService keeps likes and the per-user liked-songs playlist consistent:
// the playlist exists exactly when the user likes at least one song.
type LikeService struct {
	Store  repo.Store
	Logger *logrus.Logger
}

func NewLikeService(store repo.Store, logger *logrus.Logger) *LikeService {
	return &LikeService{Store: store, Logger: logger}
}

// ToggleLike flips the like state of songID for userID and returns the new state.
func (s *LikeService) ToggleLike(ctx context.Context, userID, songID string) (bool, error) {
	var liked bool
	err := s.Store.WithinTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		if _, err := r.Songs.GetByID(ctx, songID); err != nil {
			return mapNotFound(err, ErrSongNotFound)
		}
		_, err := r.Likes.Find(ctx, userID, songID)
		switch {
		case err == nil:
			liked = false
			return unlike(ctx, r, userID, songID)
		case errors.Is(err, repo.ErrNotFound):
			liked = true
			return like(ctx, r, userID, songID)
		default:
			return err
		}
	})
	if err != nil {
		return false, fail(s.Logger, "failed to toggle like", err, logrus.Fields{"user_id": userID, "song_id": songID})
	}
	return liked, nil
}

func like(ctx context.Context, r repo.Repositories, userID, songID string) error {
	pl, err := r.Playlists.FindByTitle(ctx, userID, entity.LikedSongsTitle)
	if errors.Is(err, repo.ErrNotFound) {
		pl = &entity.Playlist{UserID: userID, Title: entity.LikedSongsTitle}
		err = r.Playlists.Create(ctx, pl)
	}
	if err != nil {
		return err
	}
	if err := r.Likes.Create(ctx, &entity.LikeSong{UserID: userID, SongID: songID}); err != nil {
		return err
	}
	// A leftover row means likes and the playlist drifted apart earlier; reuse it.
	present, err := r.Playlists.HasSong(ctx, pl.ID, songID)
	if err != nil || present {
		return err
	}
	return r.Playlists.AddSong(ctx, pl.ID, songID)
}

func unlike(ctx context.Context, r repo.Repositories, userID, songID string) error {
	if err := r.Likes.Delete(ctx, userID, songID); err != nil {
		return err
	}
	pl, err := r.Playlists.FindByTitle(ctx, userID, entity.LikedSongsTitle)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := r.Playlists.RemoveSong(ctx, pl.ID, songID); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	remaining, err := r.Playlists.CountSongs(ctx, pl.ID)
	if err != nil {
		return err
	}
	if remaining == 0 {
		return r.Playlists.Delete(ctx, pl.ID)
	}
	return nil
}

// IsLiked reports whether userID likes songID.
func (s *LikeService) IsLiked(ctx context.Context, userID, songID string) (bool, error) {
	r := s.Store.Repos()
	if _, err := r.Songs.GetByID(ctx, songID); err != nil {
		return false, fail(s.Logger, "failed to load song", mapNotFound(err, ErrSongNotFound), logrus.Fields{"song_id": songID})
	}
	_, err := r.Likes.Find(ctx, userID, songID)
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fail(s.Logger, "failed to load like", err, logrus.Fields{"user_id": userID, "song_id": songID})
	}
	return true, nil
}

// ListLiked returns the songs userID likes, newest like first.
func (s *LikeService) ListLiked(ctx context.Context, userID string) ([]entity.Song, error) {
	songs, err := s.Store.Repos().Likes.ListSongsByUser(ctx, userID)
	if err != nil {
		return nil, fail(s.Logger, "failed to list liked songs", err, logrus.Fields{"user_id": userID})
	}
	return songs, nil
}
