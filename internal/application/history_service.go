package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
)

// PlaysPerDay caps how many plays of one UTC day Recent returns.
const PlaysPerDay = 5

func (s *LibraryService) RecordPlay(ctx context.Context, userID, songID string) (*entity.History, error) {
	r := s.Store.Repos()
	song, err := r.Songs.GetByID(ctx, songID)
	if err != nil {
		return nil, fail(s.Logger, "failed to record play", mapNotFound(err, ErrSongNotFound), logrus.Fields{"song_id": songID})
	}
	h := &entity.History{UserID: userID, SongID: songID}
	if err := r.History.Create(ctx, h); err != nil {
		return nil, fail(s.Logger, "failed to record play", err, logrus.Fields{"user_id": userID, "song_id": songID})
	}
	h.Song = song
	return h, nil
}

// RecentPlays returns the user's plays, newest first, at most PlaysPerDay per day.
func (s *LibraryService) RecentPlays(ctx context.Context, userID string) ([]entity.History, error) {
	hs, err := s.Store.Repos().History.RecentByUser(ctx, userID, PlaysPerDay)
	if err != nil {
		return nil, fail(s.Logger, "failed to load history", err, logrus.Fields{"user_id": userID})
	}
	return hs, nil
}

func (s *LibraryService) ClearHistory(ctx context.Context, userID string) error {
	if err := s.Store.Repos().History.DeleteByUser(ctx, userID); err != nil {
		return fail(s.Logger, "failed to clear history", err, logrus.Fields{"user_id": userID})
	}
	return nil
}
