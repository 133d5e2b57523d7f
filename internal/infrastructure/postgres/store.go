package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so every repository
// runs unchanged inside or outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store implements repository.Store on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func repositories(db DBTX) repo.Repositories {
	return repo.Repositories{
		Users:     NewUserRepository(db),
		Roles:     NewRoleRepository(db),
		Songs:     NewSongRepository(db),
		Artists:   NewArtistRepository(db),
		Genres:    NewGenreRepository(db),
		Playlists: NewPlaylistRepository(db),
		Likes:     NewLikeRepository(db),
		History:   NewHistoryRepository(db),
		Follows:   NewFollowRepository(db),
	}
}

func (s *Store) Repos() repo.Repositories { return repositories(s.pool) }

// WithinTx runs fn in a transaction that commits only if fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, r repo.Repositories) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	// no-op once committed
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(ctx, repositories(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

var _ repo.Store = (*Store)(nil)

// mapErr translates driver errors into repository sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return repo.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%w: %s", repo.ErrDuplicate, pgErr.ConstraintName)
		case "23503", "22P02": // foreign_key_violation, invalid_text_representation (malformed uuid)
			return fmt.Errorf("%w: %s", repo.ErrNotFound, pgErr.Message)
		}
	}
	return err
}

// execOne runs a write that must touch at least one row.
func execOne(ctx context.Context, db DBTX, sql string, args ...any) error {
	tag, err := db.Exec(ctx, sql, args...)
	if err != nil {
		return mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func count(ctx context.Context, db DBTX, sql string, args ...any) (int, error) {
	var n int
	if err := db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, mapErr(err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

// collect scans every row with scan and closes rows.
func collect[T any](rows pgx.Rows, err error, scan func(scanner) (T, error)) ([]T, error) {
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()
	var out []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, mapErr(err)
		}
		out = append(out, v)
	}
	return out, mapErr(rows.Err())
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// prefixPattern turns user input into an ILIKE prefix pattern.
func prefixPattern(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}

// nullable stores empty strings as NULL for columns with partial unique indexes.
func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
