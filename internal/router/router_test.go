package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundclone/soundclone-api/internal/application"
	"github.com/soundclone/soundclone-api/internal/domain/entity"
	handlers "github.com/soundclone/soundclone-api/internal/interface/http"
	"github.com/soundclone/soundclone-api/internal/interface/middleware"
	"github.com/soundclone/soundclone-api/internal/router/modules"
)

func init() { gin.SetMode(gin.TestMode) }

type stubGenres struct{ created []string }

func (s *stubGenres) ListGenres(context.Context) ([]entity.Genre, error) {
	return []entity.Genre{{ID: "g1", Name: "Rock"}}, nil
}

func (s *stubGenres) CreateGenre(_ context.Context, in application.GenreInput) (*entity.Genre, error) {
	s.created = append(s.created, in.Name)
	return &entity.Genre{ID: "g2", Name: in.Name}, nil
}

func (s *stubGenres) UpdateGenre(_ context.Context, id string, in application.GenreInput) (*entity.Genre, error) {
	return &entity.Genre{ID: id, Name: in.Name}, nil
}

func (s *stubGenres) DeleteGenre(context.Context, string) error { return nil }

// fakeAuth trusts X-Test-Role as the caller's role; no header means anonymous.
func fakeAuth(c *gin.Context) {
	role := c.GetHeader("X-Test-Role")
	if role == "" {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Set(middleware.CtxUserID, "u1")
	c.Set(middleware.CtxRoles, entity.NewRoleSet(role))
	c.Next()
}

func newTestRegistry(genres *stubGenres) *Registry {
	engine := gin.New()
	reg := NewRegistry(engine)
	g := modules.Guard{Auth: fakeAuth}
	errs := handlers.Errors{}

	reg.Add(modules.NewDebugModule(g, true))
	reg.Add(modules.NewAuthModule(handlers.NewAuthHandler(nil, nil, nil, errs), g))
	reg.Add(modules.NewCatalogModule(
		handlers.NewSongHandler(nil, nil, nil, 0, errs),
		handlers.NewArtistHandler(nil, nil, nil, 0, errs),
		handlers.NewGenreHandler(genres, errs),
		g,
	))
	reg.Add(modules.NewLibraryModule(handlers.NewLibraryHandler(nil, nil, errs), g))
	reg.Add(modules.NewSearchModule(handlers.NewSearchHandler(nil, nil, errs), g))
	reg.Add(modules.NewUserModule(handlers.NewUserHandler(nil, errs), g))
	reg.ExposeMetrics()
	reg.RegisterAll()
	return reg
}

func TestRoutesRegistered(t *testing.T) {
	reg := newTestRegistry(&stubGenres{})
	got := map[string]bool{}
	for _, r := range reg.Engine.Routes() {
		got[r.Method+" "+r.Path] = true
	}
	for _, want := range []string{
		"POST /api/register",
		"GET /api/verify",
		"POST /api/verify/resend",
		"POST /api/login",
		"POST /api/login/refresh",
		"POST /api/login/logout",
		"POST /api/password/send-otp",
		"POST /api/password/verify-otp",
		"POST /api/password/reset-password",
		"GET /api/songs",
		"GET /api/songs/:id",
		"GET /api/songs/liked",
		"POST /api/songs/:id/like",
		"GET /api/artist/:id",
		"POST /api/artists/:id/follow",
		"GET /api/artists/followed",
		"GET /api/genres",
		"GET /api/playlists",
		"POST /api/playlists/:id/songs",
		"DELETE /api/playlists/:id/songs/:songId",
		"GET /api/history",
		"GET /api/search",
		"GET /api/users/me",
		"POST /api/admin/songs",
		"PUT /api/admin/artists/:id",
		"DELETE /api/admin/genres/:id",
		"GET /api/admin/users",
		"PUT /api/admin/users/:id/role",
		"GET /api/health",
		"GET /api/debug/vars",
		"GET /metrics",
	} {
		assert.True(t, got[want], "missing route %s", want)
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	genres := &stubGenres{}
	reg := newTestRegistry(genres)

	send := func(role string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/admin/genres", strings.NewReader(`{"name":"Jazz"}`))
		req.Header.Set("Content-Type", "application/json")
		if role != "" {
			req.Header.Set("X-Test-Role", role)
		}
		reg.Engine.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, send("").Code)
	assert.Equal(t, http.StatusForbidden, send(string(entity.RoleUser)).Code)
	assert.Empty(t, genres.created)

	w := send(string(entity.RoleAdmin))
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, []string{"Jazz"}, genres.created)
}

func TestPublicCatalogNeedsNoAuth(t *testing.T) {
	reg := newTestRegistry(&stubGenres{})
	w := httptest.NewRecorder()
	reg.Engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/genres", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Rock")
}

func TestMetricsHiddenFromPublicAddresses(t *testing.T) {
	reg := newTestRegistry(&stubGenres{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.RemoteAddr = "203.0.113.10:4000"
	reg.Engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.RemoteAddr = "127.0.0.1:4000"
	reg.Engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
