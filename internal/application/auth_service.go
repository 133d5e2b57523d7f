package application

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
	"github.com/soundclone/soundclone-api/pkg/helpers"
	"github.com/soundclone/soundclone-api/pkg/validation"
)

type AuthService struct {
	Store      repo.Store
	Sessions   repo.SessionStore
	JWT        *helpers.JWTManager
	Notifier   Notifier
	Google     IdentityVerifier // nil trusts raw Google subject ids
	Logger     *logrus.Logger
	VerifyURL  string
	SessionTTL time.Duration
}

func NewAuthService(store repo.Store, sessions repo.SessionStore, jwt *helpers.JWTManager, notifier Notifier, google IdentityVerifier, logger *logrus.Logger, verifyURL string, sessionTTL time.Duration) *AuthService {
	return &AuthService{
		Store:      store,
		Sessions:   sessions,
		JWT:        jwt,
		Notifier:   notifier,
		Google:     google,
		Logger:     logger,
		VerifyURL:  verifyURL,
		SessionTTL: sessionTTL,
	}
}

type TokenPair struct {
	AccessToken        string    `json:"access_token"`
	AccessTokenExpiry  time.Time `json:"access_expires_at"`
	RefreshToken       string    `json:"refresh_token"`
	RefreshTokenExpiry time.Time `json:"refresh_expires_at"`
}

type RegisterInput struct {
	Email           string
	Name            string
	Password        string
	ConfirmPassword string
	GoogleID        string
	GoogleIDToken   string
}

func (in RegisterInput) wantsPassword() bool { return in.Password != "" || in.ConfirmPassword != "" }

func (in RegisterInput) wantsGoogle() bool { return in.GoogleID != "" || in.GoogleIDToken != "" }

type RegisterOutcome string

const (
	OutcomeCreatedPassword  RegisterOutcome = "created_password"
	OutcomeCreatedGoogle    RegisterOutcome = "created_google"
	OutcomePasswordAttached RegisterOutcome = "password_attached"
	OutcomeGoogleSignedIn   RegisterOutcome = "google_signed_in"
)

type RegisterResult struct {
	User    *entity.User
	Outcome RegisterOutcome
	// Tokens is set for Google outcomes, which double as a sign-in.
	Tokens *TokenPair
}

type emailInput struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

type passwordInput struct {
	Password        string `json:"password" validate:"required,pwd,max=72"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
}

func validateStruct(v any) error {
	if err := validation.Validator().Struct(v); err != nil {
		return validationErr("invalid payload", validation.ToDetails(err))
	}
	return nil
}

func normalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Register reconciles submitted credentials with any existing account for the
// email and applies the resulting transition in a single transaction.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validateStruct(emailInput{Email: in.Email}); err != nil {
		return nil, err
	}
	switch {
	case in.wantsPassword() && in.wantsGoogle():
		return nil, validationErr("provide either a password or a Google credential", nil)
	case in.wantsPassword():
		if err := validateStruct(passwordInput{Password: in.Password, ConfirmPassword: in.ConfirmPassword}); err != nil {
			return nil, err
		}
	case in.wantsGoogle():
		if err := s.resolveGoogle(ctx, &in); err != nil {
			return nil, err
		}
	default:
		return nil, validationErr("password or Google credential is required", map[string]string{"password": "is required"})
	}

	var res *RegisterResult
	err := s.Store.WithinTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		existing, err := r.Users.GetByEmail(ctx, in.Email)
		if errors.Is(err, repo.ErrNotFound) {
			res, err = s.createAccount(ctx, r, in)
			return err
		}
		if err != nil {
			return err
		}
		res, err = s.mergeIdentity(ctx, r, existing, in)
		return err
	})
	if err != nil {
		return nil, fail(s.Logger, "failed to register", err, logrus.Fields{"email": in.Email})
	}

	switch res.Outcome {
	case OutcomeCreatedPassword:
		s.sendVerification(ctx, res.User)
	case OutcomeCreatedGoogle, OutcomeGoogleSignedIn:
		pair, err := s.IssueTokens(ctx, res.User)
		if err != nil {
			return nil, err
		}
		res.Tokens = &pair
	}
	return res, nil
}

func (s *AuthService) resolveGoogle(ctx context.Context, in *RegisterInput) error {
	if in.GoogleIDToken == "" {
		// a bare google_id is only trusted when no verifier is configured
		if in.GoogleID != "" && s.Google != nil {
			return validationErr("Google ID token is required", map[string]string{"id_token": "is required"})
		}
		return nil
	}
	if s.Google == nil {
		return newErr(KindSystem, "google sign-in not configured")
	}
	id, err := s.Google.VerifyGoogleToken(ctx, in.GoogleIDToken)
	if err != nil {
		return newErr(KindAuth, "invalid Google credential")
	}
	if id.Email != "" && normalizeEmail(id.Email) != in.Email {
		return validationErr("Google account email does not match", map[string]string{"email": "does not match Google account"})
	}
	in.GoogleID = id.Subject
	if in.Name == "" {
		in.Name = id.Name
	}
	return nil
}

func (s *AuthService) createAccount(ctx context.Context, r repo.Repositories, in RegisterInput) (*RegisterResult, error) {
	u := &entity.User{Email: in.Email, Name: displayName(in)}
	outcome := OutcomeCreatedGoogle
	if in.wantsPassword() {
		hash, err := helpers.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		tok, err := helpers.GenToken(32)
		if err != nil {
			return nil, err
		}
		u.Password = hash
		u.VerificationToken = tok
		outcome = OutcomeCreatedPassword
	} else {
		u.GoogleID = in.GoogleID
		u.IsVerified = true
	}
	if err := r.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailRegistered
		}
		return nil, err
	}
	role, err := r.Roles.GetByName(ctx, entity.DefaultRole)
	if errors.Is(err, repo.ErrNotFound) {
		if s.Logger != nil {
			s.Logger.WithField("role", entity.DefaultRole).Error("default role missing from roles table")
		}
		return nil, ErrDefaultRoleMissing
	}
	if err != nil {
		return nil, err
	}
	if err := r.Roles.AssignToUser(ctx, u.ID, role.ID); err != nil {
		return nil, err
	}
	u.Roles = entity.RoleSet{entity.DefaultRole}
	return &RegisterResult{User: u, Outcome: outcome}, nil
}

func (s *AuthService) mergeIdentity(ctx context.Context, r repo.Repositories, u *entity.User, in RegisterInput) (*RegisterResult, error) {
	googleOnly := u.HasGoogleIdentity() && !u.HasPassword()
	switch {
	case googleOnly && in.wantsPassword():
		hash, err := helpers.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		u.Password = hash
		if err := r.Users.Update(ctx, u); err != nil {
			return nil, err
		}
		return &RegisterResult{User: u, Outcome: OutcomePasswordAttached}, nil
	case googleOnly && in.wantsGoogle() && in.GoogleID == u.GoogleID:
		return &RegisterResult{User: u, Outcome: OutcomeGoogleSignedIn}, nil
	case u.HasPassword() && in.wantsGoogle():
		return nil, ErrAccountClaimed
	default:
		return nil, ErrEmailRegistered
	}
}

func displayName(in RegisterInput) string {
	if n := strings.TrimSpace(in.Name); n != "" {
		return n
	}
	local, _, _ := strings.Cut(in.Email, "@")
	return local
}

func (s *AuthService) verifyLink(token string) string {
	return s.VerifyURL + "?token=" + url.QueryEscape(token)
}

// sendVerification enqueues the verification email. Delivery problems are
// logged; the user can ask for another link.
func (s *AuthService) sendVerification(ctx context.Context, u *entity.User) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendVerification(ctx, u, s.verifyLink(u.VerificationToken)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("failed to enqueue verification email")
	}
}

// VerifyEmail marks the account holding token as verified.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (*entity.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrInvalidVerifyToken
	}
	r := s.Store.Repos()
	u, err := r.Users.GetByVerificationToken(ctx, token)
	if err != nil {
		return nil, fail(s.Logger, "failed to verify email", mapNotFound(err, ErrInvalidVerifyToken), nil)
	}
	u.IsVerified = true
	u.VerificationToken = ""
	if err := r.Users.Update(ctx, u); err != nil {
		return nil, fail(s.Logger, "failed to verify email", err, logrus.Fields{"user_id": u.ID})
	}
	return u, nil
}

// ResendVerification issues a fresh link for unverified password accounts.
// Unknown or already verified emails succeed silently to avoid enumeration.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validateStruct(emailInput{Email: email}); err != nil {
		return err
	}
	r := s.Store.Repos()
	u, err := r.Users.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fail(s.Logger, "failed to resend verification", err, nil)
	}
	if u.IsVerified || !u.HasPassword() {
		return nil
	}
	tok, err := helpers.GenToken(32)
	if err != nil {
		return fail(s.Logger, "failed to resend verification", err, nil)
	}
	u.VerificationToken = tok
	if err := r.Users.Update(ctx, u); err != nil {
		return fail(s.Logger, "failed to resend verification", err, logrus.Fields{"user_id": u.ID})
	}
	s.sendVerification(ctx, u)
	return nil
}

// Authenticate validates email/password and returns the user without issuing tokens.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Store.Repos().Users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fail(s.Logger, "failed to load user", mapNotFound(err, ErrInvalidCredentials), nil)
	}
	if !u.HasPassword() {
		return nil, ErrUseGoogleSignIn
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsVerified {
		return nil, ErrEmailNotVerified
	}
	return u, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// IssueTokens generates access/refresh tokens bound to a new session id and
// records the session in the cache store.
func (s *AuthService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	roles := u.Roles.Strings()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid, roles)
	if err != nil {
		return TokenPair{}, fail(s.Logger, "generate access token failed", err, logrus.Fields{"user_id": u.ID})
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid, roles)
	if err != nil {
		return TokenPair{}, fail(s.Logger, "generate refresh token failed", err, logrus.Fields{"user_id": u.ID})
	}
	sess := repo.Session{UserID: u.ID, SessionID: sid, Email: u.Email, Name: u.Name, Roles: roles}
	if err := s.Sessions.Save(ctx, sess, s.SessionTTL); err != nil {
		return TokenPair{}, fail(s.Logger, "failed to store session", err, logrus.Fields{"user_id": u.ID})
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh rotates the session id and both tokens. The presented refresh token
// must belong to the user's current session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidSession
	}
	sess, err := s.Sessions.Get(ctx, claims.UserID)
	if err != nil || sess.SessionID != claims.SessionID {
		return TokenPair{}, ErrInvalidSession
	}
	u, err := s.Store.Repos().Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, fail(s.Logger, "failed to refresh session", mapNotFound(err, ErrInvalidSession), nil)
	}
	return s.IssueTokens(ctx, u)
}

func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.Sessions.Delete(ctx, userID); err != nil {
		return fail(s.Logger, "failed to end session", err, logrus.Fields{"user_id": userID})
	}
	return nil
}
