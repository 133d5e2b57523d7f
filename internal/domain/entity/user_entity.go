package entity

import (
	"time"
)

// User is the aggregate root for the account domain.
// A user authenticates by password, by Google identity, or by both after an
// identity merge. Password holds a bcrypt hash and is empty for Google-only accounts.
type User struct {
	ID                string
	Email             string
	Password          string
	GoogleID          string
	Name              string
	IsVerified        bool
	VerificationToken string
	ResetToken        string
	Roles             RoleSet
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (u *User) HasPassword() bool { return u.Password != "" }

func (u *User) HasGoogleIdentity() bool { return u.GoogleID != "" }
