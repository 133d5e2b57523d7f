package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
)

// ToggleFollow flips whether userID follows artistID and returns the new state.
func (s *LibraryService) ToggleFollow(ctx context.Context, userID, artistID string) (bool, error) {
	var followed bool
	err := s.Store.WithinTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		if _, err := r.Artists.GetByID(ctx, artistID); err != nil {
			return mapNotFound(err, ErrArtistNotFound)
		}
		_, err := r.Follows.Find(ctx, userID, artistID)
		switch {
		case err == nil:
			followed = false
			return r.Follows.Delete(ctx, userID, artistID)
		case errors.Is(err, repo.ErrNotFound):
			followed = true
			return r.Follows.Create(ctx, &entity.FollowArtist{UserID: userID, ArtistID: artistID})
		default:
			return err
		}
	})
	if err != nil {
		return false, fail(s.Logger, "failed to toggle follow", err, logrus.Fields{"user_id": userID, "artist_id": artistID})
	}
	return followed, nil
}

func (s *LibraryService) FollowedArtists(ctx context.Context, userID string) ([]entity.Artist, error) {
	artists, err := s.Store.Repos().Follows.ListArtistsByUser(ctx, userID)
	if err != nil {
		return nil, fail(s.Logger, "failed to list followed artists", err, logrus.Fields{"user_id": userID})
	}
	return artists, nil
}
