package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/soundclone/soundclone-api/internal/application"
	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
	"github.com/soundclone/soundclone-api/internal/interface/middleware"
	"github.com/soundclone/soundclone-api/pkg/response"
	"github.com/soundclone/soundclone-api/pkg/validation"
)

// Errors renders application errors. Details of system failures are only
// exposed when Production is false.
type Errors struct {
	Logger     *logrus.Logger
	Production bool
}

func statusOf(k application.Kind) int {
	switch k {
	case application.KindValidation:
		return http.StatusBadRequest
	case application.KindAuth:
		return http.StatusUnauthorized
	case application.KindForbidden:
		return http.StatusForbidden
	case application.KindNotFound:
		return http.StatusNotFound
	case application.KindConflict:
		return http.StatusConflict
	case application.KindRateLimited:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

// Respond writes err as an error envelope.
func (e Errors) Respond(c *gin.Context, err error) {
	var appErr *application.Error
	if !errors.As(err, &appErr) {
		appErr = &application.Error{Kind: application.KindSystem, Message: "internal server error", Err: err}
	}
	status := statusOf(appErr.Kind)
	if status != http.StatusInternalServerError {
		var details any
		if len(appErr.Fields) > 0 {
			details = appErr.Fields
		}
		response.Error[any](c, status, appErr.Message, details)
		return
	}

	if e.Logger != nil {
		e.Logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	msg := appErr.Message
	if msg == "" {
		msg = "internal server error"
	}
	var details any
	if !e.Production && appErr.Err != nil {
		details = appErr.Err.Error()
	}
	if e.Production && !errors.Is(err, application.ErrDefaultRoleMissing) {
		msg = "internal server error"
	}
	response.Error[any](c, status, msg, details)
}

// Bind decodes the JSON body into dst and answers 400 on failure.
func (e Errors) Bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return false
	}
	return true
}

func currentUser(c *gin.Context) string { return c.GetString(middleware.CtxUserID) }

// pageFrom reads limit/offset query parameters. Bad values fall back to defaults.
func pageFrom(c *gin.Context) repo.Page {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return repo.Page{Limit: limit, Offset: offset}.Normalize()
}

func pageMeta(p repo.Page, total int) response.PageMeta {
	return response.PageMeta{Total: total, Limit: p.Limit, Offset: p.Offset}
}
