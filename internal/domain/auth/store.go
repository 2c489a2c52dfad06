package auth

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AuthUser struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	Role         string
	DivisionID   string
	Active       bool
}

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (AuthUser, error) {
	var user AuthUser
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, full_name, password_hash, role, COALESCE(division_id::text, ''), active
    FROM users
    WHERE lower(email) = lower($1)
  `, email).Scan(&user.ID, &user.Email, &user.FullName, &user.PasswordHash, &user.Role, &user.DivisionID, &user.Active)
	if err != nil {
		return AuthUser{}, err
	}
	return user, nil
}

func (s *Store) UserContextByID(ctx context.Context, userID string) (UserContext, bool, error) {
	var userCtx UserContext
	var active bool
	err := s.DB.QueryRow(ctx, `
    SELECT id, role, COALESCE(division_id::text, ''), active
    FROM users
    WHERE id = $1
  `, userID).Scan(&userCtx.UserID, &userCtx.Role, &userCtx.DivisionID, &active)
	if err != nil {
		return UserContext{}, false, err
	}
	return userCtx, active, nil
}

func (s *Store) CreateSession(ctx context.Context, userID, refreshTokenHash string, expires time.Time) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO sessions (user_id, refresh_token_hash, expires_at)
    VALUES ($1, $2, $3)
  `, userID, refreshTokenHash, expires)
	return err
}

func (s *Store) SessionValid(ctx context.Context, userID, refreshTokenHash string) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM sessions
    WHERE user_id = $1 AND refresh_token_hash = $2 AND revoked_at IS NULL AND expires_at > now()
  `, userID, refreshTokenHash).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) RotateSession(ctx context.Context, userID, oldHash, newHash string, expires time.Time) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
    UPDATE sessions SET revoked_at = now()
    WHERE user_id = $1 AND refresh_token_hash = $2 AND revoked_at IS NULL
  `, userID, oldHash); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
    INSERT INTO sessions (user_id, refresh_token_hash, expires_at)
    VALUES ($1, $2, $3)
  `, userID, newHash, expires); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) RevokeSession(ctx context.Context, userID, refreshTokenHash string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE sessions SET revoked_at = now()
    WHERE user_id = $1 AND refresh_token_hash = $2 AND revoked_at IS NULL
  `, userID, refreshTokenHash)
	return err
}

func (s *Store) UpdateLastLogin(ctx context.Context, userID string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET last_login_at = now() WHERE id = $1", userID)
	return err
}

func (s *Store) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	tag, err := s.DB.Exec(ctx, "DELETE FROM sessions WHERE expires_at < now() OR revoked_at IS NOT NULL")
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
