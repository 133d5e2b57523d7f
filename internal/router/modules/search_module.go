package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/soundclone/soundclone-api/internal/interface/http"
	"github.com/soundclone/soundclone-api/internal/interface/middleware"
)

type SearchModule struct {
	Handler *handlers.SearchHandler
	Guard   Guard
}

func NewSearchModule(h *handlers.SearchHandler, g Guard) *SearchModule {
	return &SearchModule{Handler: h, Guard: g}
}

func (m *SearchModule) Register(rg *gin.RouterGroup) {
	limit := m.Guard.Limit(120, time.Minute, middleware.KeyByIP())
	rg.GET("/search", limit, m.Handler.Search)
	rg.GET("/search/suggestions", limit, m.Handler.Suggestions)
}
