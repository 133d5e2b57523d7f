package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
	"github.com/soundclone/soundclone-api/pkg/helpers"
)

// PasswordService drives the reset flow: a code is issued to the email,
// exchanged once for a reset token, and the token authorizes a new password.
type PasswordService struct {
	Store    repo.Store
	OTP      repo.OTPStore
	Sessions repo.SessionStore
	Notifier Notifier
	Logger   *logrus.Logger
	CodeTTL  time.Duration
	Cooldown time.Duration
}

func NewPasswordService(store repo.Store, otp repo.OTPStore, sessions repo.SessionStore, notifier Notifier, logger *logrus.Logger, codeTTL, cooldown time.Duration) *PasswordService {
	return &PasswordService{
		Store:    store,
		OTP:      otp,
		Sessions: sessions,
		Notifier: notifier,
		Logger:   logger,
		CodeTTL:  codeTTL,
		Cooldown: cooldown,
	}
}

// SendOTP issues a 6-digit code for email unless one was issued within the cool-down window.
func (s *PasswordService) SendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if err := validateStruct(emailInput{Email: email}); err != nil {
		return err
	}
	u, err := s.Store.Repos().Users.GetByEmail(ctx, email)
	if err != nil {
		return fail(s.Logger, "failed to send code", mapNotFound(err, ErrUserNotFound), nil)
	}
	acquired, err := s.OTP.AcquireCooldown(ctx, email, s.Cooldown)
	if err != nil {
		return fail(s.Logger, "failed to send code", err, logrus.Fields{"user_id": u.ID})
	}
	if !acquired {
		return ErrOTPRateLimited
	}
	if err := s.issueCode(ctx, email, u); err != nil {
		// the user never got a code, so neither the code nor the cooldown may outlive the failure
		if dErr := s.OTP.Discard(ctx, email); dErr != nil && s.Logger != nil {
			s.Logger.WithError(dErr).WithField("user_id", u.ID).Warn("failed to discard otp")
		}
		return fail(s.Logger, "failed to send code", err, logrus.Fields{"user_id": u.ID})
	}
	return nil
}

func (s *PasswordService) issueCode(ctx context.Context, email string, u *entity.User) error {
	code, err := helpers.GenOTPCode()
	if err != nil {
		return err
	}
	if err := s.OTP.SaveCode(ctx, email, code, s.CodeTTL); err != nil {
		return err
	}
	if s.Notifier != nil {
		return s.Notifier.SendPasswordOTP(ctx, u, code, s.CodeTTL)
	}
	return nil
}

// VerifyOTP spends the code and returns an opaque reset token persisted on the user.
func (s *PasswordService) VerifyOTP(ctx context.Context, email, code string) (string, error) {
	email = normalizeEmail(email)
	if err := validateStruct(emailInput{Email: email}); err != nil {
		return "", err
	}
	code = strings.TrimSpace(code)
	if !helpers.IsOTPCode(code) {
		return "", ErrInvalidOTP
	}
	r := s.Store.Repos()
	u, err := r.Users.GetByEmail(ctx, email)
	if err != nil {
		return "", fail(s.Logger, "failed to verify code", mapNotFound(err, ErrInvalidOTP), nil)
	}
	ok, err := s.OTP.ConsumeCode(ctx, email, code)
	if err != nil {
		return "", fail(s.Logger, "failed to verify code", err, logrus.Fields{"user_id": u.ID})
	}
	if !ok {
		return "", ErrInvalidOTP
	}
	token, err := helpers.GenToken(32)
	if err == nil {
		u.ResetToken = token
		err = r.Users.Update(ctx, u)
	}
	if err != nil {
		// put the code back so the failed attempt leaves the flow where it was
		if rErr := s.OTP.SaveCode(ctx, email, code, s.CodeTTL); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("user_id", u.ID).Warn("failed to restore otp")
		}
		return "", fail(s.Logger, "failed to verify code", err, logrus.Fields{"user_id": u.ID})
	}
	return token, nil
}

// ResetPassword replaces the password of the account holding token and ends
// its sessions. Proving control of the inbox also verifies the email.
func (s *PasswordService) ResetPassword(ctx context.Context, token, password, confirm string) error {
	if err := validateStruct(passwordInput{Password: password, ConfirmPassword: confirm}); err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return ErrInvalidResetToken
	}
	r := s.Store.Repos()
	u, err := r.Users.GetByResetToken(ctx, token)
	if err != nil {
		return fail(s.Logger, "failed to reset password", mapNotFound(err, ErrInvalidResetToken), nil)
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return fail(s.Logger, "failed to reset password", err, nil)
	}
	u.Password = hash
	u.ResetToken = ""
	u.IsVerified = true
	if err := r.Users.Update(ctx, u); err != nil {
		return fail(s.Logger, "failed to reset password", err, logrus.Fields{"user_id": u.ID})
	}
	if s.Sessions != nil {
		if err := s.Sessions.Delete(ctx, u.ID); err != nil && !errors.Is(err, repo.ErrNotFound) && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("failed to end sessions after reset")
		}
	}
	return nil
}
