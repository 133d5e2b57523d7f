package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundclone/soundclone-api/internal/application"
	"github.com/soundclone/soundclone-api/internal/domain/entity"
	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
	"github.com/soundclone/soundclone-api/pkg/response"
)

type userService interface {
	GetUser(ctx context.Context, id string) (*entity.User, error)
	UpdateProfile(ctx context.Context, id string, in application.ProfileInput) (*entity.User, error)
	ListUsers(ctx context.Context, page repo.Page) ([]entity.User, int, error)
	UpdateRole(ctx context.Context, id string, in application.RoleInput) (*entity.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type UserHandler struct {
	Svc userService
	Errors
}

func NewUserHandler(svc userService, errs Errors) *UserHandler {
	return &UserHandler{Svc: svc, Errors: errs}
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.Svc.GetUser(c.Request.Context(), currentUser(c))
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "profile", nil)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req application.ProfileInput
	if !h.Bind(c, &req) {
		return
	}
	u, err := h.Svc.UpdateProfile(c.Request.Context(), currentUser(c), req)
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "profile updated", nil)
}

func (h *UserHandler) List(c *gin.Context) {
	page := pageFrom(c)
	users, total, err := h.Svc.ListUsers(c.Request.Context(), page)
	if err != nil {
		h.Respond(c, err)
		return
	}
	out := make([]userDTO, 0, len(users))
	for i := range users {
		out = append(out, toUser(&users[i]))
	}
	response.Success(c, http.StatusOK, out, "users", pageMeta(page, total))
}

func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.Svc.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "user", nil)
}

func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req application.RoleInput
	if !h.Bind(c, &req) {
		return
	}
	u, err := h.Svc.UpdateRole(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "role updated", nil)
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.Svc.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.Respond(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "user deleted", nil)
}
