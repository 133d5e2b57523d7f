package repository

import (
	"context"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
// Getters return ErrNotFound when no row matches and load the user's roles.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*entity.User, error)
	GetByResetToken(ctx context.Context, token string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page Page) ([]entity.User, int, error)
}

// RoleRepository manages roles and the user_roles join table.
type RoleRepository interface {
	GetByName(ctx context.Context, name entity.RoleName) (*entity.Role, error)
	AssignToUser(ctx context.Context, userID, roleID string) error
	// SetUserRole replaces every role of the user with the given one.
	SetUserRole(ctx context.Context, userID, roleID string) error
	ListForUser(ctx context.Context, userID string) (entity.RoleSet, error)
}
