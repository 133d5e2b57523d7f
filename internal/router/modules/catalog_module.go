package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
	handlers "github.com/soundclone/soundclone-api/internal/interface/http"
)

// CatalogModule serves songs, artists and genres: public reads, likes and
// follows for signed-in users, and writes under /admin.
type CatalogModule struct {
	Songs   *handlers.SongHandler
	Artists *handlers.ArtistHandler
	Genres  *handlers.GenreHandler
	Guard   Guard
}

func NewCatalogModule(songs *handlers.SongHandler, artists *handlers.ArtistHandler, genres *handlers.GenreHandler, g Guard) *CatalogModule {
	return &CatalogModule{Songs: songs, Artists: artists, Genres: genres, Guard: g}
}

func (m *CatalogModule) Register(rg *gin.RouterGroup) {
	rg.GET("/songs", m.Songs.List)
	rg.GET("/songs/:id", m.Songs.Get)
	rg.GET("/artists", m.Artists.List)
	rg.GET("/artists/:id", m.Artists.Get)
	rg.GET("/artist/:id", m.Artists.Get)
	rg.GET("/genres", m.Genres.List)

	auth := m.Guard.Authed(rg)
	{
		auth.GET("/songs/liked", m.Songs.Liked)
		auth.POST("/songs/:id/like", m.Songs.ToggleLike)
		auth.GET("/songs/:id/like", m.Songs.IsLiked)
		auth.GET("/artists/followed", m.Artists.Followed)
		auth.POST("/artists/:id/follow", m.Artists.ToggleFollow)
	}

	admin := m.Guard.Admin(rg, entity.PermManageCatalog)
	{
		admin.POST("/songs", m.Songs.Create)
		admin.PUT("/songs/:id", m.Songs.Update)
		admin.DELETE("/songs/:id", m.Songs.Delete)

		admin.POST("/artists", m.Artists.Create)
		admin.PUT("/artists/:id", m.Artists.Update)
		admin.DELETE("/artists/:id", m.Artists.Delete)

		admin.POST("/genres", m.Genres.Create)
		admin.PUT("/genres/:id", m.Genres.Update)
		admin.DELETE("/genres/:id", m.Genres.Delete)
	}
}
