package application

import (
	"errors"
	"fmt"
)

// Kind classifies an application error for the transport layer.
type Kind int

const (
	KindSystem Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	}
	return "system"
}

// Error is a client-facing failure. Message is safe to show to callers;
// Err, when set, is the underlying cause and is never rendered in production.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches sentinel errors by kind and message so wrapped copies still compare equal.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Message == t.Message
}

func newErr(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

func validationErr(msg string, fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Fields: fields}
}

func notFound(what string) *Error { return newErr(KindNotFound, what+" not found") }

// systemErr wraps an unexpected persistence or infrastructure failure.
func systemErr(msg string, err error) *Error {
	return &Error{Kind: KindSystem, Message: msg, Err: err}
}

// KindOf returns the kind of err, treating foreign errors as system failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindSystem
}

var (
	ErrInvalidCredentials  = newErr(KindAuth, "invalid credentials")
	ErrUseGoogleSignIn     = newErr(KindAuth, "this account signs in with Google")
	ErrEmailNotVerified    = newErr(KindForbidden, "email not verified")
	ErrInvalidSession      = newErr(KindAuth, "invalid or expired session")
	ErrUserNotFound        = notFound("user")
	ErrSongNotFound        = notFound("song")
	ErrArtistNotFound      = notFound("artist")
	ErrGenreNotFound       = notFound("genre")
	ErrPlaylistNotFound    = notFound("playlist")
	ErrEmailRegistered     = newErr(KindConflict, "email already registered")
	ErrAccountClaimed      = newErr(KindConflict, "account already fully claimed")
	ErrSongInPlaylist      = newErr(KindConflict, "song already in playlist")
	ErrSongNotInPlaylist   = notFound("song in playlist")
	ErrReservedTitle       = validationErr("playlist title is reserved", map[string]string{"title": "is reserved"})
	ErrLikedPlaylistLocked = newErr(KindForbidden, "liked songs playlist is managed through likes")
	ErrGenreInUse          = newErr(KindConflict, "genre still has songs")
	ErrGenreExists         = newErr(KindConflict, "genre already exists")
	ErrAdminProtected      = newErr(KindForbidden, "admin accounts cannot be modified")
	ErrOTPRateLimited      = newErr(KindRateLimited, "please wait before requesting another code")
	ErrInvalidOTP          = validationErr("invalid or expired code", nil)
	ErrInvalidResetToken   = validationErr("invalid or expired reset token", nil)
	ErrInvalidVerifyToken  = validationErr("invalid or expired verification token", nil)
	ErrEmptyQuery          = validationErr("search query is required", map[string]string{"q": "is required"})
	ErrStorageUnavailable  = newErr(KindSystem, "file storage not configured")

	// ErrDefaultRoleMissing signals a misconfigured deployment: the roles
	// table lacks the default role. Its message is surfaced to callers.
	ErrDefaultRoleMissing = newErr(KindSystem, "default role not configured")
)
