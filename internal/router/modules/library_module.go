package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/soundclone/soundclone-api/internal/interface/http"
)

type LibraryModule struct {
	Handler *handlers.LibraryHandler
	Guard   Guard
}

func NewLibraryModule(h *handlers.LibraryHandler, g Guard) *LibraryModule {
	return &LibraryModule{Handler: h, Guard: g}
}

func (m *LibraryModule) Register(rg *gin.RouterGroup) {
	auth := m.Guard.Authed(rg)
	{
		auth.GET("/playlists", m.Handler.ListPlaylists)
		auth.POST("/playlists", m.Handler.CreatePlaylist)
		auth.GET("/playlists/:id", m.Handler.GetPlaylist)
		auth.PUT("/playlists/:id", m.Handler.RenamePlaylist)
		auth.DELETE("/playlists/:id", m.Handler.DeletePlaylist)
		auth.POST("/playlists/:id/songs", m.Handler.AddSong)
		auth.DELETE("/playlists/:id/songs/:songId", m.Handler.RemoveSong)

		auth.GET("/history", m.Handler.History)
		auth.POST("/history", m.Handler.RecordPlay)
		auth.DELETE("/history", m.Handler.ClearHistory)
	}
}
