package modules

import (
	"expvar"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soundclone/soundclone-api/internal/interface/middleware"
	"github.com/soundclone/soundclone-api/pkg/response"
)

// DebugModule exposes liveness and, when enabled, expvar counters.
type DebugModule struct {
	Guard        Guard
	ExpvarEnable bool
}

func NewDebugModule(g Guard, expvarEnabled bool) *DebugModule {
	return &DebugModule{Guard: g, ExpvarEnable: expvarEnabled}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, "healthy", nil)
	})
	if m.ExpvarEnable {
		rl := m.Guard.Limit(120, time.Minute, middleware.KeyByIP())
		rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	}
}
