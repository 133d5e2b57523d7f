package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/soundclone/soundclone-api/internal/interface/http"
	"github.com/soundclone/soundclone-api/internal/interface/middleware"
)

// AuthModule serves registration, login, email verification and password reset.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Guard   Guard
}

func NewAuthModule(h *handlers.AuthHandler, g Guard) *AuthModule {
	return &AuthModule{Handler: h, Guard: g}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	g := m.Guard
	byIP := g.Limit(10, time.Minute, middleware.KeyByIPAndPath())

	rg.POST("/register", byIP, m.Handler.Register)
	rg.GET("/verify", g.Limit(30, time.Minute, middleware.KeyByIPAndPath()), m.Handler.VerifyEmail)
	rg.POST("/verify/resend", g.Limit(5, time.Minute, middleware.KeyByIPAndPath()), m.Handler.ResendVerification)

	rg.POST("/login", byIP, m.Handler.Login)
	rg.POST("/login/refresh", g.Limit(60, time.Minute, middleware.KeyByIP()), m.Handler.Refresh)
	rg.POST("/login/logout", g.Auth, m.Handler.Logout)

	pwd := rg.Group("/password", g.Limit(20, time.Minute, middleware.KeyByIPAndPath()))
	{
		pwd.POST("/send-otp", m.Handler.SendOTP)
		pwd.POST("/verify-otp", m.Handler.VerifyOTP)
		pwd.POST("/reset-password", m.Handler.ResetPassword)
	}
}
