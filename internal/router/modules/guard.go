package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
	"github.com/soundclone/soundclone-api/internal/interface/middleware"
)

// Guard bundles the middleware modules attach to their routes.
type Guard struct {
	Auth  gin.HandlerFunc
	Redis redis.Cmdable // nil disables rate limiting
}

func (g Guard) Limit(max int, window time.Duration, key middleware.KeyFunc) gin.HandlerFunc {
	if g.Redis == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return middleware.RateLimit(g.Redis, max, window, key, nil)
}

// Authed returns a group that requires a valid session.
func (g Guard) Authed(rg *gin.RouterGroup) *gin.RouterGroup {
	return rg.Group("/", g.Auth, g.Limit(120, time.Minute, middleware.KeyByUserID()))
}

// Admin returns the /admin group restricted to callers granted p.
func (g Guard) Admin(rg *gin.RouterGroup, p entity.Permission) *gin.RouterGroup {
	return rg.Group("/admin", g.Auth, middleware.Require(p))
}
