package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"eureka/internal/auth/models"
	"eureka/pkg/domain"
	"eureka/pkg/platform/sentinel"
	"eureka/pkg/platform/tx"
)

const uniqueViolation = "23505"

// PostgresUserStore persists accounts in the users table.
type PostgresUserStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

func (s *PostgresUserStore) Create(ctx context.Context, user *models.User) error {
	_, err := tx.Use(ctx, s.db).ExecContext(ctx, `
		INSERT INTO users (id, name, email, handle, avatar_url, password_hash, created_at)
		VALUES ($1, $2, LOWER($3), $4, $5, $6, $7)
	`, uuid.UUID(user.ID), user.Name, user.Email, user.Handle, user.AvatarURL, string(user.PasswordHash), user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("create user: %w", sentinel.ErrConflict)
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id domain.UserID) (*models.User, error) {
	return s.findOne(ctx, `WHERE id = $1`, uuid.UUID(id))
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, `WHERE email = LOWER($1)`, email)
}

func (s *PostgresUserStore) findOne(ctx context.Context, where string, arg any) (*models.User, error) {
	var (
		u    models.User
		id   uuid.UUID
		hash string
	)
	err := tx.Use(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, name, email, handle, avatar_url, password_hash, created_at FROM users `+where, arg,
	).Scan(&id, &u.Name, &u.Email, &u.Handle, &u.AvatarURL, &hash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.ID = domain.UserID(id)
	u.PasswordHash = []byte(hash)
	return &u, nil
}
