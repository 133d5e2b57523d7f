package main

import (
	"database/sql"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/soundclone/soundclone-api/config"
	pginfra "github.com/soundclone/soundclone-api/internal/infrastructure/postgres"
	"github.com/soundclone/soundclone-api/pkg/helpers"
)

var defaultGenres = []string{"Pop", "Rock", "Hip-Hop", "Jazz", "Electronic", "Classical"}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), logger); err != nil {
		logger.Fatalf("migration failed: %v", err)
	}

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		logger.Fatalf("failed to open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	email := envOr("SEED_ADMIN_EMAIL", "admin@soundclone.local")
	password := envOr("SEED_ADMIN_PASSWORD", "password123")
	name := envOr("SEED_ADMIN_NAME", "Admin")
	hash, err := helpers.HashPassword(password)
	if err != nil {
		logger.Fatalf("failed to hash password: %v", err)
	}

	// Ensure base roles exist
	var adminRoleID, userRoleID string
	if err := db.QueryRow(`
		INSERT INTO roles (name) VALUES ('admin')
		ON CONFLICT (name) DO UPDATE SET updated_at = now()
		RETURNING id
	`).Scan(&adminRoleID); err != nil {
		logger.Fatalf("failed to upsert admin role: %v", err)
	}
	if err := db.QueryRow(`
		INSERT INTO roles (name) VALUES ('user')
		ON CONFLICT (name) DO UPDATE SET updated_at = now()
		RETURNING id
	`).Scan(&userRoleID); err != nil {
		logger.Fatalf("failed to upsert user role: %v", err)
	}
	logger.WithField("admin", adminRoleID).WithField("user", userRoleID).Info("roles ensured")

	// The seeded admin is pre-verified so it can sign in immediately.
	var id string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name, is_verified)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, email, hash, name).Scan(&id)
	if err != nil {
		logger.Fatalf("failed to seed admin: %v", err)
	}
	if _, err := db.Exec(`
		INSERT INTO user_roles (user_id, role_id)
		VALUES ($1, $2), ($1, $3)
		ON CONFLICT (user_id, role_id) DO NOTHING
	`, id, adminRoleID, userRoleID); err != nil {
		logger.Fatalf("failed to assign roles: %v", err)
	}
	logger.WithField("id", id).WithField("email", email).Info("admin seeded")

	for _, g := range defaultGenres {
		if _, err := db.Exec(`INSERT INTO genres (name) VALUES ($1) ON CONFLICT DO NOTHING`, g); err != nil {
			logger.Fatalf("failed to seed genre %s: %v", g, err)
		}
	}
	logger.WithField("count", len(defaultGenres)).Info("genres ensured")
}
