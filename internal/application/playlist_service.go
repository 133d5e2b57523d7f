package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
)

// LibraryService covers the per-user collections: playlists, play history
// and followed artists.
type LibraryService struct {
	Store  repo.Store
	Logger *logrus.Logger
}

func NewLibraryService(store repo.Store, logger *logrus.Logger) *LibraryService {
	return &LibraryService{Store: store, Logger: logger}
}

type PlaylistInput struct {
	Title string `json:"title" validate:"required,max=100"`
}

func (in *PlaylistInput) check() error {
	in.Title = strings.TrimSpace(in.Title)
	if err := validateStruct(in); err != nil {
		return err
	}
	if entity.IsReservedTitle(in.Title) {
		return ErrReservedTitle
	}
	return nil
}

// ownPlaylist loads a playlist and hides those owned by someone else.
func ownPlaylist(ctx context.Context, r repo.Repositories, userID, id string) (*entity.Playlist, error) {
	pl, err := r.Playlists.GetByID(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrPlaylistNotFound)
	}
	if pl.UserID != userID {
		return nil, ErrPlaylistNotFound
	}
	return pl, nil
}

func (s *LibraryService) ListPlaylists(ctx context.Context, userID string) ([]entity.Playlist, error) {
	pls, err := s.Store.Repos().Playlists.ListByUser(ctx, userID)
	if err != nil {
		return nil, fail(s.Logger, "failed to list playlists", err, logrus.Fields{"user_id": userID})
	}
	return pls, nil
}

// GetPlaylist returns the playlist with its songs.
func (s *LibraryService) GetPlaylist(ctx context.Context, userID, id string) (*entity.Playlist, error) {
	r := s.Store.Repos()
	pl, err := ownPlaylist(ctx, r, userID, id)
	if err != nil {
		return nil, fail(s.Logger, "failed to load playlist", err, logrus.Fields{"playlist_id": id})
	}
	if pl.Songs, err = r.Playlists.ListSongs(ctx, id); err != nil {
		return nil, fail(s.Logger, "failed to load playlist songs", err, logrus.Fields{"playlist_id": id})
	}
	pl.SongCount = len(pl.Songs)
	return pl, nil
}

func (s *LibraryService) CreatePlaylist(ctx context.Context, userID string, in PlaylistInput) (*entity.Playlist, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	pl := &entity.Playlist{UserID: userID, Title: in.Title}
	if err := s.Store.Repos().Playlists.Create(ctx, pl); err != nil {
		return nil, fail(s.Logger, "failed to create playlist", err, logrus.Fields{"user_id": userID})
	}
	return pl, nil
}

func (s *LibraryService) RenamePlaylist(ctx context.Context, userID, id string, in PlaylistInput) (*entity.Playlist, error) {
	if err := in.check(); err != nil {
		return nil, err
	}
	r := s.Store.Repos()
	pl, err := ownPlaylist(ctx, r, userID, id)
	if err == nil && pl.IsLikedSongs() {
		err = ErrLikedPlaylistLocked
	}
	if err != nil {
		return nil, fail(s.Logger, "failed to rename playlist", err, logrus.Fields{"playlist_id": id})
	}
	pl.Title = in.Title
	if err := r.Playlists.Update(ctx, pl); err != nil {
		return nil, fail(s.Logger, "failed to rename playlist", mapNotFound(err, ErrPlaylistNotFound), logrus.Fields{"playlist_id": id})
	}
	return pl, nil
}

func (s *LibraryService) DeletePlaylist(ctx context.Context, userID, id string) error {
	r := s.Store.Repos()
	pl, err := ownPlaylist(ctx, r, userID, id)
	if err == nil && pl.IsLikedSongs() {
		err = ErrLikedPlaylistLocked
	}
	if err == nil {
		err = mapNotFound(r.Playlists.Delete(ctx, id), ErrPlaylistNotFound)
	}
	if err != nil {
		return fail(s.Logger, "failed to delete playlist", err, logrus.Fields{"playlist_id": id})
	}
	return nil
}

func (s *LibraryService) AddSong(ctx context.Context, userID, playlistID, songID string) error {
	err := s.Store.WithinTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		pl, err := ownPlaylist(ctx, r, userID, playlistID)
		if err != nil {
			return err
		}
		if pl.IsLikedSongs() {
			return ErrLikedPlaylistLocked
		}
		if _, err := r.Songs.GetByID(ctx, songID); err != nil {
			return mapNotFound(err, ErrSongNotFound)
		}
		present, err := r.Playlists.HasSong(ctx, playlistID, songID)
		if err != nil {
			return err
		}
		if present {
			return ErrSongInPlaylist
		}
		return mapDuplicate(r.Playlists.AddSong(ctx, playlistID, songID), ErrSongInPlaylist)
	})
	if err != nil {
		return fail(s.Logger, "failed to add song to playlist", err, logrus.Fields{"playlist_id": playlistID, "song_id": songID})
	}
	return nil
}

func (s *LibraryService) RemoveSong(ctx context.Context, userID, playlistID, songID string) error {
	r := s.Store.Repos()
	pl, err := ownPlaylist(ctx, r, userID, playlistID)
	if err == nil && pl.IsLikedSongs() {
		err = ErrLikedPlaylistLocked
	}
	if err == nil {
		err = r.Playlists.RemoveSong(ctx, playlistID, songID)
		if errors.Is(err, repo.ErrNotFound) {
			err = ErrSongNotInPlaylist
		}
	}
	if err != nil {
		return fail(s.Logger, "failed to remove song from playlist", err, logrus.Fields{"playlist_id": playlistID, "song_id": songID})
	}
	return nil
}
