package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
	"github.com/soundclone/soundclone-api/internal/domain/repository"
	"github.com/soundclone/soundclone-api/pkg/helpers"
	"github.com/soundclone/soundclone-api/pkg/response"
)

// Context keys set for authenticated requests.
const (
	CtxUserID    = "userID"
	CtxUserEmail = "userEmail"
	CtxRoles     = "roles"
)

// bearerToken reads the access token from the Authorization header (mobile
// client) and falls back to the access_token cookie (dashboard).
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(tok)
		}
	}
	tok, _ := c.Cookie(helpers.AccessCookie)
	return tok
}

// Auth validates the access token and requires the session it was issued for
// to still be current. It sets userID, userEmail and roles on success.
func Auth(sessions repository.SessionStore, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", nil)
			return
		}

		sess, err := sessions.Get(c.Request.Context(), claims.UserID)
		if err != nil || sess.SessionID != claims.SessionID {
			response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
			return
		}

		c.Set(CtxUserID, sess.UserID)
		c.Set(CtxUserEmail, sess.Email)
		c.Set(CtxRoles, entity.NewRoleSet(sess.Roles...))
		c.Next()
	}
}

// RolesFrom returns the roles Auth stored on the context.
func RolesFrom(c *gin.Context) entity.RoleSet {
	if v, ok := c.Get(CtxRoles); ok {
		if rs, ok := v.(entity.RoleSet); ok {
			return rs
		}
	}
	return nil
}

// Require aborts with 403 unless the caller's roles grant p. Must run after Auth.
func Require(p entity.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !entity.Authorize(RolesFrom(c), p) {
			response.Error[any](c, http.StatusForbidden, "forbidden", nil)
			return
		}
		c.Next()
	}
}
