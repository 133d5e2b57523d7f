package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundclone/soundclone-api/internal/application"
	"github.com/soundclone/soundclone-api/internal/domain/entity"
	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
	"github.com/soundclone/soundclone-api/pkg/metrics"
	"github.com/soundclone/soundclone-api/pkg/response"
)

type songCatalog interface {
	GetSong(ctx context.Context, id string) (*entity.Song, error)
	ListSongs(ctx context.Context, f repo.SongFilter) ([]entity.Song, int, error)
	CreateSong(ctx context.Context, in application.SongInput, audio, image *application.Upload) (*entity.Song, error)
	UpdateSong(ctx context.Context, id string, in application.SongUpdate, audio, image *application.Upload) (*entity.Song, error)
	DeleteSong(ctx context.Context, id string) error
}

type likeService interface {
	ToggleLike(ctx context.Context, userID, songID string) (bool, error)
	IsLiked(ctx context.Context, userID, songID string) (bool, error)
	ListLiked(ctx context.Context, userID string) ([]entity.Song, error)
}

type SongHandler struct {
	Catalog   songCatalog
	Likes     likeService
	URL       URLResolver
	MaxUpload int64
	Errors
}

func NewSongHandler(catalog songCatalog, likes likeService, url URLResolver, maxUpload int64, errs Errors) *SongHandler {
	return &SongHandler{Catalog: catalog, Likes: likes, URL: url, MaxUpload: maxUpload, Errors: errs}
}

func (h *SongHandler) List(c *gin.Context) {
	f := repo.SongFilter{GenreID: c.Query("genre_id"), ArtistID: c.Query("artist_id"), Page: pageFrom(c)}
	songs, total, err := h.Catalog.ListSongs(c.Request.Context(), f)
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, toSongs(songs, h.URL), "songs", pageMeta(f.Page, total))
}

func (h *SongHandler) Get(c *gin.Context) {
	s, err := h.Catalog.GetSong(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, toSong(s, h.URL), "song", nil)
}

// files opens the optional "song" and "image" parts.
func (h *SongHandler) files(c *gin.Context) (audio, image *application.Upload, closeAll func(), ok bool) {
	audio, ac, err := formFile(c, "song")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid upload", gin.H{"song": "could not be read"})
		return nil, nil, nil, false
	}
	image, ic, err := formFile(c, "image")
	if err != nil {
		_ = ac.Close()
		response.Error[any](c, http.StatusBadRequest, "invalid upload", gin.H{"image": "could not be read"})
		return nil, nil, nil, false
	}
	return audio, image, func() { _ = ac.Close(); _ = ic.Close() }, true
}

// Create expects multipart fields title, artist_id, genre_id, duration and
// the files "song" (required) and "image" (optional).
func (h *SongHandler) Create(c *gin.Context) {
	if !parseMultipart(c, h.MaxUpload) {
		return
	}
	duration, ok := optionalInt(c, "duration")
	if !ok {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", gin.H{"duration": "must be numeric"})
		return
	}
	in := application.SongInput{Title: c.PostForm("title"), ArtistID: c.PostForm("artist_id"), GenreID: c.PostForm("genre_id")}
	if duration != nil {
		in.Duration = *duration
	}
	audio, image, closeAll, ok := h.files(c)
	if !ok {
		return
	}
	defer closeAll()

	s, err := h.Catalog.CreateSong(c.Request.Context(), in, audio, image)
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toSong(s, h.URL), "song created", nil)
}

func (h *SongHandler) Update(c *gin.Context) {
	if !parseMultipart(c, h.MaxUpload) {
		return
	}
	duration, ok := optionalInt(c, "duration")
	if !ok {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", gin.H{"duration": "must be numeric"})
		return
	}
	in := application.SongUpdate{
		Title:    optionalForm(c, "title"),
		ArtistID: optionalForm(c, "artist_id"),
		GenreID:  optionalForm(c, "genre_id"),
		Duration: duration,
	}
	audio, image, closeAll, ok := h.files(c)
	if !ok {
		return
	}
	defer closeAll()

	s, err := h.Catalog.UpdateSong(c.Request.Context(), c.Param("id"), in, audio, image)
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, toSong(s, h.URL), "song updated", nil)
}

func (h *SongHandler) Delete(c *gin.Context) {
	if err := h.Catalog.DeleteSong(c.Request.Context(), c.Param("id")); err != nil {
		h.Respond(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "song deleted", nil)
}

func (h *SongHandler) ToggleLike(c *gin.Context) {
	liked, err := h.Likes.ToggleLike(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		h.Respond(c, err)
		return
	}
	metrics.RecordLikeToggle(liked)
	msg := "song unliked"
	if liked {
		msg = "song liked"
	}
	response.Success(c, http.StatusOK, gin.H{"liked": liked}, msg, nil)
}

func (h *SongHandler) IsLiked(c *gin.Context) {
	liked, err := h.Likes.IsLiked(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"liked": liked}, "like status", nil)
}

func (h *SongHandler) Liked(c *gin.Context) {
	songs, err := h.Likes.ListLiked(c.Request.Context(), currentUser(c))
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, toSongs(songs, h.URL), "liked songs", nil)
}
