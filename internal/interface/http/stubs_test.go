package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/soundclone/soundclone-api/internal/application"
	"github.com/soundclone/soundclone-api/internal/domain/entity"
	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
	"github.com/soundclone/soundclone-api/internal/interface/middleware"
	"github.com/soundclone/soundclone-api/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	os.Exit(m.Run())
}

// withUser mimics the auth middleware.
func withUser(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CtxUserID, id)
		c.Next()
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

type stubAuth struct {
	register  *application.RegisterResult
	loginUser *entity.User
	pair      application.TokenPair
	err       error
	refreshed string
}

func (s *stubAuth) Register(context.Context, application.RegisterInput) (*application.RegisterResult, error) {
	return s.register, s.err
}

func (s *stubAuth) VerifyEmail(context.Context, string) (*entity.User, error) {
	return s.loginUser, s.err
}

func (s *stubAuth) ResendVerification(context.Context, string) error { return s.err }

func (s *stubAuth) Login(context.Context, string, string) (*entity.User, application.TokenPair, error) {
	return s.loginUser, s.pair, s.err
}

func (s *stubAuth) Refresh(_ context.Context, token string) (application.TokenPair, error) {
	s.refreshed = token
	return s.pair, s.err
}

func (s *stubAuth) Logout(context.Context, string) error { return s.err }

type stubPassword struct {
	verified string
}

func (s *stubPassword) SendOTP(context.Context, string) error { return nil }

func (s *stubPassword) VerifyOTP(_ context.Context, _, code string) (string, error) {
	s.verified = code
	return "reset-token", nil
}

func (s *stubPassword) ResetPassword(context.Context, string, string, string) error { return nil }

type stubSongs struct {
	in        application.SongInput
	audioBody string
	audioType string
	hadImage  bool
	err       error
}

func (s *stubSongs) GetSong(_ context.Context, id string) (*entity.Song, error) {
	return &entity.Song{ID: id}, s.err
}

func (s *stubSongs) ListSongs(context.Context, repo.SongFilter) ([]entity.Song, int, error) {
	return nil, 0, s.err
}

func (s *stubSongs) CreateSong(_ context.Context, in application.SongInput, audio, image *application.Upload) (*entity.Song, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.in = in
	s.hadImage = image != nil
	if audio != nil {
		b, _ := io.ReadAll(audio.Reader)
		s.audioBody = string(b)
		s.audioType = audio.ContentType
	}
	return &entity.Song{ID: "s1", Title: in.Title, AudioKey: "songs/rock/1-a.mp3"}, nil
}

func (s *stubSongs) UpdateSong(_ context.Context, id string, _ application.SongUpdate, _, _ *application.Upload) (*entity.Song, error) {
	return &entity.Song{ID: id}, s.err
}

func (s *stubSongs) DeleteSong(context.Context, string) error { return s.err }

type stubLikes struct {
	liked map[string]bool
	user  string
}

func (s *stubLikes) ToggleLike(_ context.Context, userID, songID string) (bool, error) {
	if s.liked == nil {
		s.liked = map[string]bool{}
	}
	s.user = userID
	s.liked[songID] = !s.liked[songID]
	return s.liked[songID], nil
}

func (s *stubLikes) IsLiked(_ context.Context, _, songID string) (bool, error) {
	return s.liked[songID], nil
}

func (s *stubLikes) ListLiked(context.Context, string) ([]entity.Song, error) { return nil, nil }

type stubLibrary struct {
	added [][3]string
	err   error
}

func (s *stubLibrary) ListPlaylists(context.Context, string) ([]entity.Playlist, error) {
	return nil, s.err
}

func (s *stubLibrary) GetPlaylist(_ context.Context, _, id string) (*entity.Playlist, error) {
	return &entity.Playlist{ID: id}, s.err
}

func (s *stubLibrary) CreatePlaylist(_ context.Context, _ string, in application.PlaylistInput) (*entity.Playlist, error) {
	return &entity.Playlist{ID: "p1", Title: in.Title}, s.err
}

func (s *stubLibrary) RenamePlaylist(_ context.Context, _, id string, in application.PlaylistInput) (*entity.Playlist, error) {
	return &entity.Playlist{ID: id, Title: in.Title}, s.err
}

func (s *stubLibrary) DeletePlaylist(context.Context, string, string) error { return s.err }

func (s *stubLibrary) AddSong(_ context.Context, userID, playlistID, songID string) error {
	if s.err != nil {
		return s.err
	}
	s.added = append(s.added, [3]string{userID, playlistID, songID})
	return nil
}

func (s *stubLibrary) RemoveSong(context.Context, string, string, string) error { return s.err }

func (s *stubLibrary) RecordPlay(_ context.Context, _, songID string) (*entity.History, error) {
	return &entity.History{ID: "h1", SongID: songID}, s.err
}

func (s *stubLibrary) RecentPlays(context.Context, string) ([]entity.History, error) {
	return nil, s.err
}

func (s *stubLibrary) ClearHistory(context.Context, string) error { return s.err }

type stubSearch struct{}

func (stubSearch) Search(_ context.Context, q string) (*application.SearchResult, error) {
	if q == "" {
		return nil, application.ErrEmptyQuery
	}
	return &application.SearchResult{Songs: []entity.Song{{ID: "s1", Title: q + " song"}}}, nil
}

func (stubSearch) Suggestions(_ context.Context, q string) ([]string, error) {
	if q == "" {
		return nil, application.ErrEmptyQuery
	}
	return []string{q}, nil
}

type stubSessions struct{ sess repo.Session }

func (s stubSessions) Save(context.Context, repo.Session, time.Duration) error { return nil }

func (s stubSessions) Get(_ context.Context, userID string) (*repo.Session, error) {
	if userID != s.sess.UserID {
		return nil, repo.ErrNotFound
	}
	return &s.sess, nil
}

func (s stubSessions) Delete(context.Context, string) error { return nil }
