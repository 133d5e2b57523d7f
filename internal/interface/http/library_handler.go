package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundclone/soundclone-api/internal/application"
	"github.com/soundclone/soundclone-api/internal/domain/entity"
	"github.com/soundclone/soundclone-api/pkg/response"
)

type libraryService interface {
	ListPlaylists(ctx context.Context, userID string) ([]entity.Playlist, error)
	GetPlaylist(ctx context.Context, userID, id string) (*entity.Playlist, error)
	CreatePlaylist(ctx context.Context, userID string, in application.PlaylistInput) (*entity.Playlist, error)
	RenamePlaylist(ctx context.Context, userID, id string, in application.PlaylistInput) (*entity.Playlist, error)
	DeletePlaylist(ctx context.Context, userID, id string) error
	AddSong(ctx context.Context, userID, playlistID, songID string) error
	RemoveSong(ctx context.Context, userID, playlistID, songID string) error

	RecordPlay(ctx context.Context, userID, songID string) (*entity.History, error)
	RecentPlays(ctx context.Context, userID string) ([]entity.History, error)
	ClearHistory(ctx context.Context, userID string) error
}

// LibraryHandler serves the signed-in user's playlists and play history.
type LibraryHandler struct {
	Svc libraryService
	URL URLResolver
	Errors
}

func NewLibraryHandler(svc libraryService, url URLResolver, errs Errors) *LibraryHandler {
	return &LibraryHandler{Svc: svc, URL: url, Errors: errs}
}

type songRefRequest struct {
	SongID string `json:"song_id" binding:"required"`
}

func (h *LibraryHandler) ListPlaylists(c *gin.Context) {
	pls, err := h.Svc.ListPlaylists(c.Request.Context(), currentUser(c))
	if err != nil {
		h.Respond(c, err)
		return
	}
	out := make([]playlistDTO, 0, len(pls))
	for i := range pls {
		out = append(out, toPlaylist(&pls[i], h.URL))
	}
	response.Success(c, http.StatusOK, out, "playlists", nil)
}

func (h *LibraryHandler) GetPlaylist(c *gin.Context) {
	p, err := h.Svc.GetPlaylist(c.Request.Context(), currentUser(c), c.Param("id"))
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, toPlaylist(p, h.URL), "playlist", nil)
}

func (h *LibraryHandler) CreatePlaylist(c *gin.Context) {
	var req application.PlaylistInput
	if !h.Bind(c, &req) {
		return
	}
	p, err := h.Svc.CreatePlaylist(c.Request.Context(), currentUser(c), req)
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toPlaylist(p, h.URL), "playlist created", nil)
}

func (h *LibraryHandler) RenamePlaylist(c *gin.Context) {
	var req application.PlaylistInput
	if !h.Bind(c, &req) {
		return
	}
	p, err := h.Svc.RenamePlaylist(c.Request.Context(), currentUser(c), c.Param("id"), req)
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, toPlaylist(p, h.URL), "playlist updated", nil)
}

func (h *LibraryHandler) DeletePlaylist(c *gin.Context) {
	if err := h.Svc.DeletePlaylist(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		h.Respond(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "playlist deleted", nil)
}

func (h *LibraryHandler) AddSong(c *gin.Context) {
	var req songRefRequest
	if !h.Bind(c, &req) {
		return
	}
	if err := h.Svc.AddSong(c.Request.Context(), currentUser(c), c.Param("id"), req.SongID); err != nil {
		h.Respond(c, err)
		return
	}
	response.Success[any](c, http.StatusCreated, gin.H{"song_id": req.SongID}, "song added to playlist", nil)
}

func (h *LibraryHandler) RemoveSong(c *gin.Context) {
	if err := h.Svc.RemoveSong(c.Request.Context(), currentUser(c), c.Param("id"), c.Param("songId")); err != nil {
		h.Respond(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"removed": true}, "song removed from playlist", nil)
}

func (h *LibraryHandler) History(c *gin.Context) {
	plays, err := h.Svc.RecentPlays(c.Request.Context(), currentUser(c))
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, toHistory(plays, h.URL), "history", nil)
}

func (h *LibraryHandler) RecordPlay(c *gin.Context) {
	var req songRefRequest
	if !h.Bind(c, &req) {
		return
	}
	play, err := h.Svc.RecordPlay(c.Request.Context(), currentUser(c), req.SongID)
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusCreated, toHistory([]entity.History{*play}, h.URL)[0], "play recorded", nil)
}

func (h *LibraryHandler) ClearHistory(c *gin.Context) {
	if err := h.Svc.ClearHistory(c.Request.Context(), currentUser(c)); err != nil {
		h.Respond(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"cleared": true}, "history cleared", nil)
}
