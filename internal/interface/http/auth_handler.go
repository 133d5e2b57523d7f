package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/soundclone/soundclone-api/internal/application"
	"github.com/soundclone/soundclone-api/internal/domain/entity"
	"github.com/soundclone/soundclone-api/pkg/helpers"
	"github.com/soundclone/soundclone-api/pkg/response"
)

type authService interface {
	Register(ctx context.Context, in application.RegisterInput) (*application.RegisterResult, error)
	VerifyEmail(ctx context.Context, token string) (*entity.User, error)
	ResendVerification(ctx context.Context, email string) error
	Login(ctx context.Context, email, password string) (*entity.User, application.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (application.TokenPair, error)
	Logout(ctx context.Context, userID string) error
}

type passwordService interface {
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (string, error)
	ResetPassword(ctx context.Context, token, password, confirm string) error
}

type AuthHandler struct {
	Auth     authService
	Password passwordService
	Cookies  *helpers.Manager
	Errors
}

func NewAuthHandler(auth authService, password passwordService, cookies *helpers.Manager, errs Errors) *AuthHandler {
	return &AuthHandler{Auth: auth, Password: password, Cookies: cookies, Errors: errs}
}

type registerRequest struct {
	Email           string `json:"email"`
	Name            string `json:"name"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	GoogleID        string `json:"google_id"`
	IDToken         string `json:"id_token"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,otp"`
}

type resetPasswordRequest struct {
	Token           string `json:"token" binding:"required"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type tokenResponse struct {
	User   *userDTO             `json:"user,omitempty"`
	Tokens application.TokenPair `json:"tokens"`
}

func (h *AuthHandler) setTokens(c *gin.Context, pair application.TokenPair) {
	if h.Cookies != nil {
		h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !h.Bind(c, &req) {
		return
	}
	res, err := h.Auth.Register(c.Request.Context(), application.RegisterInput{
		Email:           req.Email,
		Name:            req.Name,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		GoogleID:        req.GoogleID,
		GoogleIDToken:   req.IDToken,
	})
	if err != nil {
		h.Respond(c, err)
		return
	}

	u := toUser(res.User)
	data := gin.H{"user": u, "outcome": res.Outcome}
	if res.Tokens != nil {
		h.setTokens(c, *res.Tokens)
		data["tokens"] = res.Tokens
	}
	switch res.Outcome {
	case application.OutcomeCreatedPassword:
		response.Success[any](c, http.StatusCreated, data, "registered; check your email to verify the account", nil)
	case application.OutcomeCreatedGoogle:
		response.Success[any](c, http.StatusCreated, data, "registered with Google", nil)
	case application.OutcomePasswordAttached:
		response.Success[any](c, http.StatusOK, data, "password added to account", nil)
	default:
		response.Success[any](c, http.StatusOK, data, "signed in with Google", nil)
	}
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	u, err := h.Auth.VerifyEmail(c.Request.Context(), c.Query("token"))
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, toUser(u), "email verified", nil)
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req emailRequest
	if !h.Bind(c, &req) {
		return
	}
	if err := h.Auth.ResendVerification(c.Request.Context(), req.Email); err != nil {
		h.Respond(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "if the account needs verification, a new link has been sent", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !h.Bind(c, &req) {
		return
	}
	u, pair, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.Respond(c, err)
		return
	}
	h.setTokens(c, pair)
	dto := toUser(u)
	response.Success(c, http.StatusOK, tokenResponse{User: &dto, Tokens: pair}, "login successful", nil)
}

// Refresh accepts the refresh token from the body (mobile) or the cookie (dashboard).
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if c.Request.ContentLength > 0 && !h.Bind(c, &req) {
		return
	}
	token := strings.TrimSpace(req.RefreshToken)
	if token == "" {
		token, _ = c.Cookie(helpers.RefreshCookie)
	}
	if token == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, err := h.Auth.Refresh(c.Request.Context(), token)
	if err != nil {
		h.Respond(c, err)
		return
	}
	h.setTokens(c, pair)
	response.Success(c, http.StatusOK, tokenResponse{Tokens: pair}, "token refreshed", nil)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.Auth.Logout(c.Request.Context(), currentUser(c)); err != nil {
		h.Respond(c, err)
		return
	}
	if h.Cookies != nil {
		h.Cookies.Clear(c)
	}
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

func (h *AuthHandler) SendOTP(c *gin.Context) {
	var req emailRequest
	if !h.Bind(c, &req) {
		return
	}
	if err := h.Password.SendOTP(c.Request.Context(), req.Email); err != nil {
		h.Respond(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "code sent", nil)
}

func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if !h.Bind(c, &req) {
		return
	}
	token, err := h.Password.VerifyOTP(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		h.Respond(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"reset_token": token}, "code verified", nil)
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if !h.Bind(c, &req) {
		return
	}
	if err := h.Password.ResetPassword(c.Request.Context(), req.Token, req.Password, req.ConfirmPassword); err != nil {
		h.Respond(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"reset_at": time.Now().UTC()}, "password updated", nil)
}
