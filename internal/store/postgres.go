package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scrollr/scrollr/internal/models"
)

const (
	uniqueViolation      = "23505"
	invalidTextRepresent = "22P02"
)

// PostgresUserStore handles user CRUD against PostgreSQL. Posts always
// stay in MongoDB; they reference these users by their UUID string.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

func NewPostgresUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

// Migrate creates the users table if it doesn't exist.
func (s *PostgresUserStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username   VARCHAR(50)  NOT NULL CONSTRAINT users_username_key UNIQUE,
			email      VARCHAR(255) NOT NULL CONSTRAINT users_email_key UNIQUE,
			password   VARCHAR(255) NOT NULL,
			avatar     TEXT         NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (s *PostgresUserStore) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	out := models.User{Password: u.Password}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password, avatar, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id::text, username, email, avatar, created_at`,
		u.Username, u.Email, u.Password, u.Avatar, now(),
	).Scan(&out.ID, &out.Username, &out.Email, &out.Avatar, &out.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			if pgErr.ConstraintName == "users_username_key" {
				return nil, fmt.Errorf("%w: %v", ErrDuplicateUsername, err)
			}
			return nil, fmt.Errorf("%w: %v", ErrDuplicateEmail, err)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return &out, nil
}

func (s *PostgresUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `email = $1`, email)
}

func (s *PostgresUserStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, `username = $1`, username)
}

// GetUserByID treats an id that is not a UUID as unknown, like the Mongo
// store does for malformed ObjectIDs.
func (s *PostgresUserStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.getUser(ctx, `id = $1::uuid`, uid.String())
}

func (s *PostgresUserStore) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	out := make(map[string]*models.User, len(ids))
	uids := validUUIDs(ids)
	if len(uids) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id::text, username, email, avatar, created_at FROM users WHERE id = ANY($1::uuid[])`, uids,
	)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Avatar, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out[u.ID] = &u
	}
	return out, rows.Err()
}

func (s *PostgresUserStore) getUser(ctx context.Context, where string, arg any) (*models.User, error) {
	var u models.User
	err := s.pool.QueryRow(ctx,
		`SELECT id::text, username, email, password, avatar, created_at FROM users WHERE `+where, arg,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Avatar, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.Is(err, pgx.ErrNoRows) || (errors.As(err, &pgErr) && pgErr.Code == invalidTextRepresent) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// validUUIDs keeps the ids that parse as UUIDs, in canonical form. Posts
// written while users lived in MongoDB carry ObjectID hex author ids.
func validUUIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if uid, err := uuid.Parse(id); err == nil {
			out = append(out, uid.String())
		}
	}
	return out
}
