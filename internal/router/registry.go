package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soundclone/soundclone-api/internal/interface/middleware"
)

type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	api := engine.Group("/api")
	return &Registry{Engine: engine, API: api}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// ExposeMetrics serves the Prometheus registry at /metrics, outside /api.
// Scrapes are only accepted from private addresses.
func (r *Registry) ExposeMetrics() {
	private := middleware.AllowPrivateIP()
	r.Engine.GET("/metrics", func(c *gin.Context) {
		if !private(c) {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		c.Next()
	}, gin.WrapH(promhttp.Handler()))
}

func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}
