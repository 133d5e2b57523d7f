package modules

import (
	"github.com/gin-gonic/gin"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
	handlers "github.com/soundclone/soundclone-api/internal/interface/http"
)

// UserModule serves the caller's profile and user administration.
type UserModule struct {
	Handler *handlers.UserHandler
	Guard   Guard
}

func NewUserModule(h *handlers.UserHandler, g Guard) *UserModule {
	return &UserModule{Handler: h, Guard: g}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	auth := m.Guard.Authed(rg)
	{
		auth.GET("/users/me", m.Handler.GetProfile)
		auth.PUT("/users/me", m.Handler.UpdateProfile)
	}

	admin := m.Guard.Admin(rg, entity.PermManageUsers)
	{
		admin.GET("/users", m.Handler.List)
		admin.GET("/users/:id", m.Handler.Get)
		admin.PUT("/users/:id/role", m.Handler.UpdateRole)
		admin.DELETE("/users/:id", m.Handler.Delete)
	}
}
