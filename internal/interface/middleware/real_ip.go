package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

// CtxRealIP holds the client address used for rate limiting and access logs.
const CtxRealIP = "real_ip"

// proxy headers in priority order; X-Forwarded-For contributes its left-most entry
var realIPHeaders = []string{"CF-Connecting-IP", "X-Real-IP", "X-Forwarded-For"}

func headerIP(c *gin.Context, name string) string {
	v := c.GetHeader(name)
	if i := strings.IndexByte(v, ','); i >= 0 {
		v = v[:i]
	}
	if ip := net.ParseIP(strings.TrimSpace(v)); ip != nil {
		return ip.String()
	}
	return ""
}

// RealIP resolves the client address from proxy headers, falling back to the
// socket peer.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := ""
		for _, h := range realIPHeaders {
			if ip = headerIP(c, h); ip != "" {
				break
			}
		}
		if ip == "" {
			ip = c.ClientIP()
		}
		c.Set(CtxRealIP, ip)
		c.Next()
	}
}
