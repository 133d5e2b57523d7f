package postgres

import (
	"context"

	"github.com/soundclone/soundclone-api/internal/domain/entity"
	"github.com/soundclone/soundclone-api/internal/domain/repository"
)

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

const userSelect = `
	SELECT u.id, u.email, u.password_hash, COALESCE(u.google_id, ''), u.name, u.is_verified,
	       COALESCE(u.verification_token, ''), COALESCE(u.reset_token, ''),
	       COALESCE((SELECT array_agg(r.name ORDER BY r.name) FROM user_roles ur JOIN roles r ON r.id = ur.role_id WHERE ur.user_id = u.id), '{}'),
	       u.created_at, u.updated_at
	FROM users u`

func scanUser(row scanner) (entity.User, error) {
	var u entity.User
	var roles []string
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.GoogleID, &u.Name, &u.IsVerified,
		&u.VerificationToken, &u.ResetToken, &roles, &u.CreatedAt, &u.UpdatedAt)
	u.Roles = entity.NewRoleSet(roles...)
	return u, err
}

func (r *UserRepository) getOne(ctx context.Context, where string, arg any) (*entity.User, error) {
	u, err := scanUser(r.db.QueryRow(ctx, userSelect+" WHERE "+where, arg))
	if err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, google_id, name, is_verified, verification_token, reset_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, u.Email, u.Password, nullable(u.GoogleID), u.Name, u.IsVerified, nullable(u.VerificationToken), nullable(u.ResetToken))

	return mapErr(row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, "u.id = $1", id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, "u.email = $1", email)
}

func (r *UserRepository) GetByVerificationToken(ctx context.Context, token string) (*entity.User, error) {
	return r.getOne(ctx, "u.verification_token = $1", token)
}

func (r *UserRepository) GetByResetToken(ctx context.Context, token string) (*entity.User, error) {
	return r.getOne(ctx, "u.reset_token = $1", token)
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	row := r.db.QueryRow(ctx, `
		UPDATE users
		SET email = $1, password_hash = $2, google_id = $3, name = $4, is_verified = $5,
		    verification_token = $6, reset_token = $7, updated_at = now()
		WHERE id = $8
		RETURNING updated_at
	`, u.Email, u.Password, nullable(u.GoogleID), u.Name, u.IsVerified, nullable(u.VerificationToken), nullable(u.ResetToken), u.ID)

	return mapErr(row.Scan(&u.UpdatedAt))
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return execOne(ctx, r.db, `DELETE FROM users WHERE id = $1`, id)
}

func (r *UserRepository) List(ctx context.Context, page repository.Page) ([]entity.User, int, error) {
	total, err := count(ctx, r.db, `SELECT COUNT(*) FROM users`)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.db.Query(ctx, userSelect+` ORDER BY u.created_at DESC LIMIT $1 OFFSET $2`, page.Limit, page.Offset)
	users, err := collect(rows, err, scanUser)
	return users, total, err
}

var _ repository.UserRepository = (*UserRepository)(nil)

type RoleRepository struct {
	db DBTX
}

func NewRoleRepository(db DBTX) *RoleRepository {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) GetByName(ctx context.Context, name entity.RoleName) (*entity.Role, error) {
	role := &entity.Role{}
	err := r.db.QueryRow(ctx, `
		SELECT id, name, created_at, updated_at FROM roles WHERE name = $1
	`, string(name)).Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return role, nil
}

func (r *RoleRepository) AssignToUser(ctx context.Context, userID, roleID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, userID, roleID)
	return mapErr(err)
}

// SetUserRole issues two statements; callers run it inside a transaction.
func (r *RoleRepository) SetUserRole(ctx context.Context, userID, roleID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return mapErr(err)
	}
	return r.AssignToUser(ctx, userID, roleID)
}

func (r *RoleRepository) ListForUser(ctx context.Context, userID string) (entity.RoleSet, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.name FROM user_roles ur JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1 ORDER BY r.name
	`, userID)
	names, err := collect(rows, err, func(s scanner) (string, error) {
		var n string
		return n, s.Scan(&n)
	})
	if err != nil {
		return nil, err
	}
	return entity.NewRoleSet(names...), nil
}

var _ repository.RoleRepository = (*RoleRepository)(nil)
