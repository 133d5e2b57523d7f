package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundclone/soundclone-api/internal/application"
	"github.com/soundclone/soundclone-api/pkg/response"
)

type searchService interface {
	Search(ctx context.Context, q string) (*application.SearchResult, error)
	Suggestions(ctx context.Context, q string) ([]string, error)
}

type SearchHandler struct {
	Svc searchService
	URL URLResolver
	Errors
}

func NewSearchHandler(svc searchService, url URLResolver, errs Errors) *SearchHandler {
	return &SearchHandler{Svc: svc, URL: url, Errors: errs}
}

func (h *SearchHandler) Search(c *gin.Context) {
	res, err := h.Svc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, toSearch(res, h.URL), "search results", nil)
}

func (h *SearchHandler) Suggestions(c *gin.Context) {
	titles, err := h.Svc.Suggestions(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, titles, "suggestions", nil)
}
