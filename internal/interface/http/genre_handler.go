package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundclone/soundclone-api/internal/application"
	"github.com/soundclone/soundclone-api/internal/domain/entity"
	"github.com/soundclone/soundclone-api/pkg/response"
)

type genreCatalog interface {
	ListGenres(ctx context.Context) ([]entity.Genre, error)
	CreateGenre(ctx context.Context, in application.GenreInput) (*entity.Genre, error)
	UpdateGenre(ctx context.Context, id string, in application.GenreInput) (*entity.Genre, error)
	DeleteGenre(ctx context.Context, id string) error
}

type GenreHandler struct {
	Catalog genreCatalog
	Errors
}

func NewGenreHandler(catalog genreCatalog, errs Errors) *GenreHandler {
	return &GenreHandler{Catalog: catalog, Errors: errs}
}

func (h *GenreHandler) List(c *gin.Context) {
	genres, err := h.Catalog.ListGenres(c.Request.Context())
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, toGenres(genres), "genres", nil)
}

func (h *GenreHandler) Create(c *gin.Context) {
	var req application.GenreInput
	if !h.Bind(c, &req) {
		return
	}
	g, err := h.Catalog.CreateGenre(c.Request.Context(), req)
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusCreated, genreDTO{ID: g.ID, Name: g.Name}, "genre created", nil)
}

func (h *GenreHandler) Update(c *gin.Context) {
	var req application.GenreInput
	if !h.Bind(c, &req) {
		return
	}
	g, err := h.Catalog.UpdateGenre(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, genreDTO{ID: g.ID, Name: g.Name}, "genre updated", nil)
}

func (h *GenreHandler) Delete(c *gin.Context) {
	if err := h.Catalog.DeleteGenre(c.Request.Context(), c.Param("id")); err != nil {
		h.Respond(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "genre deleted", nil)
}
