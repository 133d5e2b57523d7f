package identity

import (
	"context"
	"errors"

	"google.golang.org/api/idtoken"

	"github.com/soundclone/soundclone-api/internal/application"
)

var ErrEmailUnverified = errors.New("google email not verified")

// validateFunc matches idtoken.Validate.
type validateFunc func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// GoogleVerifier validates Google ID tokens issued for the configured client id.
type GoogleVerifier struct {
	clientID string
	validate validateFunc
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validate: idtoken.Validate}
}

func (v *GoogleVerifier) VerifyGoogleToken(ctx context.Context, token string) (*application.GoogleIdentity, error) {
	payload, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return nil, err
	}
	id := &application.GoogleIdentity{Subject: payload.Subject}
	id.Email, _ = payload.Claims["email"].(string)
	id.Name, _ = payload.Claims["name"].(string)
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified && id.Email != "" {
		return nil, ErrEmailUnverified
	}
	if id.Subject == "" {
		return nil, errors.New("google token has no subject")
	}
	return id, nil
}

var _ application.IdentityVerifier = (*GoogleVerifier)(nil)
