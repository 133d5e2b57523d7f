package application

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
)

// UserService serves the profile endpoints and user administration.
type UserService struct {
	Store    repo.Store
	Sessions repo.SessionStore
	Logger   *logrus.Logger
}

func NewUserService(store repo.Store, sessions repo.SessionStore, logger *logrus.Logger) *UserService {
	return &UserService{Store: store, Sessions: sessions, Logger: logger}
}

type ProfileInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

type RoleInput struct {
	Role string `json:"role" validate:"required,oneof=admin user"`
}

func (s *UserService) GetUser(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Store.Repos().Users.GetByID(ctx, id)
	if err != nil {
		return nil, fail(s.Logger, "failed to load user", mapNotFound(err, ErrUserNotFound), logrus.Fields{"user_id": id})
	}
	return u, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id string, in ProfileInput) (*entity.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	r := s.Store.Repos()
	u, err := r.Users.GetByID(ctx, id)
	if err != nil {
		return nil, fail(s.Logger, "failed to update profile", mapNotFound(err, ErrUserNotFound), logrus.Fields{"user_id": id})
	}
	u.Name = in.Name
	if err := r.Users.Update(ctx, u); err != nil {
		return nil, fail(s.Logger, "failed to update profile", mapNotFound(err, ErrUserNotFound), logrus.Fields{"user_id": id})
	}
	return u, nil
}

func (s *UserService) ListUsers(ctx context.Context, page repo.Page) ([]entity.User, int, error) {
	users, total, err := s.Store.Repos().Users.List(ctx, page.Normalize())
	if err != nil {
		return nil, 0, fail(s.Logger, "failed to list users", err, nil)
	}
	return users, total, nil
}

// UpdateRole replaces the role of a non-admin account. The user's session is
// ended so the next token carries the new role.
func (s *UserService) UpdateRole(ctx context.Context, id string, in RoleInput) (*entity.User, error) {
	in.Role = strings.ToLower(strings.TrimSpace(in.Role))
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	name, _ := entity.ParseRoleName(in.Role)
	var u *entity.User
	err := s.Store.WithinTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		var err error
		if u, err = r.Users.GetByID(ctx, id); err != nil {
			return mapNotFound(err, ErrUserNotFound)
		}
		if !entity.CanMutateAccount(u.Roles) {
			return ErrAdminProtected
		}
		role, err := r.Roles.GetByName(ctx, name)
		if err != nil {
			return mapNotFound(err, notFound("role"))
		}
		if err := r.Roles.SetUserRole(ctx, id, role.ID); err != nil {
			return err
		}
		u.Roles = entity.NewRoleSet(string(role.Name))
		return nil
	})
	if err != nil {
		return nil, fail(s.Logger, "failed to update role", err, logrus.Fields{"user_id": id})
	}
	s.endSession(ctx, id)
	return u, nil
}

// DeleteUser removes a non-admin account and everything it owns.
func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	err := s.Store.WithinTx(ctx, func(ctx context.Context, r repo.Repositories) error {
		u, err := r.Users.GetByID(ctx, id)
		if err != nil {
			return mapNotFound(err, ErrUserNotFound)
		}
		if !entity.CanMutateAccount(u.Roles) {
			return ErrAdminProtected
		}
		return mapNotFound(r.Users.Delete(ctx, id), ErrUserNotFound)
	})
	if err != nil {
		return fail(s.Logger, "failed to delete user", err, logrus.Fields{"user_id": id})
	}
	s.endSession(ctx, id)
	return nil
}

func (s *UserService) endSession(ctx context.Context, id string) {
	if s.Sessions == nil {
		return
	}
	if err := s.Sessions.Delete(ctx, id); err != nil && !errors.Is(err, repo.ErrNotFound) && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", id).Warn("failed to end session")
	}
}
