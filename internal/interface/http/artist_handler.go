package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundclone/soundclone-api/internal/application"
	"github.com/soundclone/soundclone-api/internal/domain/entity"
	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
	"github.com/soundclone/soundclone-api/pkg/response"
)

type artistCatalog interface {
	ListArtists(ctx context.Context, page repo.Page) ([]entity.Artist, int, error)
	GetArtist(ctx context.Context, id string) (*application.ArtistDetail, error)
	CreateArtist(ctx context.Context, in application.ArtistInput, image *application.Upload) (*entity.Artist, error)
	UpdateArtist(ctx context.Context, id string, in application.ArtistUpdate, image *application.Upload) (*entity.Artist, error)
	DeleteArtist(ctx context.Context, id string) error
}

type followService interface {
	ToggleFollow(ctx context.Context, userID, artistID string) (bool, error)
	FollowedArtists(ctx context.Context, userID string) ([]entity.Artist, error)
}

type ArtistHandler struct {
	Catalog   artistCatalog
	Follows   followService
	URL       URLResolver
	MaxUpload int64
	Errors
}

func NewArtistHandler(catalog artistCatalog, follows followService, url URLResolver, maxUpload int64, errs Errors) *ArtistHandler {
	return &ArtistHandler{Catalog: catalog, Follows: follows, URL: url, MaxUpload: maxUpload, Errors: errs}
}

func (h *ArtistHandler) List(c *gin.Context) {
	page := pageFrom(c)
	artists, total, err := h.Catalog.ListArtists(c.Request.Context(), page)
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, toArtists(artists, h.URL), "artists", pageMeta(page, total))
}

func (h *ArtistHandler) Get(c *gin.Context) {
	d, err := h.Catalog.GetArtist(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, artistDetailDTO{
		artistDTO: toArtist(d.Artist, h.URL),
		Songs:     toSongs(d.Songs, h.URL),
	}, "artist", nil)
}

func (h *ArtistHandler) image(c *gin.Context) (*application.Upload, func(), bool) {
	img, closer, err := formFile(c, "image")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid upload", gin.H{"image": "could not be read"})
		return nil, nil, false
	}
	return img, func() { _ = closer.Close() }, true
}

// Create expects multipart fields name, bio and an optional "image" file.
func (h *ArtistHandler) Create(c *gin.Context) {
	if !parseMultipart(c, h.MaxUpload) {
		return
	}
	img, done, ok := h.image(c)
	if !ok {
		return
	}
	defer done()

	a, err := h.Catalog.CreateArtist(c.Request.Context(), application.ArtistInput{
		Name: c.PostForm("name"),
		Bio:  c.PostForm("bio"),
	}, img)
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toArtist(a, h.URL), "artist created", nil)
}

func (h *ArtistHandler) Update(c *gin.Context) {
	if !parseMultipart(c, h.MaxUpload) {
		return
	}
	img, done, ok := h.image(c)
	if !ok {
		return
	}
	defer done()

	a, err := h.Catalog.UpdateArtist(c.Request.Context(), c.Param("id"), application.ArtistUpdate{
		Name: optionalForm(c, "name"),
		Bio:  optionalForm(c, "bio"),
	}, img)
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, toArtist(a, h.URL), "artist updated", nil)
}

func (h *ArtistHandler) Delete(c *gin.Context) {
	if err := h.Catalog.DeleteArtist(c.Request.Context(), c.Param("id")); err != nil {
		h.Respond(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "artist deleted", nil)
}

func (h *ArtistHandler) ToggleFollow(c *gin.Context) {
	followed, err := h.Follows.ToggleFollow(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"followed": followed}, "follow updated", nil)
}

func (h *ArtistHandler) Followed(c *gin.Context) {
	artists, err := h.Follows.FollowedArtists(c.Request.Context(), currentUser(c))
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, toArtists(artists, h.URL), "followed artists", nil)
}
