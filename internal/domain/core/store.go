package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) ListDivisions(ctx context.Context, activeOnly bool) ([]Division, error) {
	query := `
    SELECT id, name, COALESCE(description, ''), active, created_at, updated_at
    FROM divisions
  `
	if activeOnly {
		query += " WHERE active"
	}
	query += " ORDER BY name"

	rows, err := s.DB.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var divisions []Division
	for rows.Next() {
		var division Division
		if err := rows.Scan(&division.ID, &division.Name, &division.Description, &division.Active, &division.CreatedAt, &division.UpdatedAt); err != nil {
			return nil, err
		}
		divisions = append(divisions, division)
	}
	return divisions, rows.Err()
}

func (s *Store) GetDivision(ctx context.Context, id string) (Division, error) {
	var division Division
	err := s.DB.QueryRow(ctx, `
    SELECT id, name, COALESCE(description, ''), active, created_at, updated_at
    FROM divisions
    WHERE id = $1
  `, id).Scan(&division.ID, &division.Name, &division.Description, &division.Active, &division.CreatedAt, &division.UpdatedAt)
	if err != nil {
		return Division{}, err
	}
	return division, nil
}

func (s *Store) CreateDivision(ctx context.Context, name, description string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO divisions (name, description)
    VALUES ($1, $2)
    RETURNING id
  `, name, description).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateDivision(ctx context.Context, id, name, description string, active bool) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE divisions
    SET name = $1, description = $2, active = $3, updated_at = now()
    WHERE id = $4
  `, name, description, active, id)
	return err
}

func (s *Store) DeactivateDivision(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, "UPDATE divisions SET active = false, updated_at = now() WHERE id = $1", id)
	return err
}

type UserFilter struct {
	DivisionID string
	Role       string
	ActiveOnly bool
}

func (s *Store) ListUsers(ctx context.Context, filter UserFilter, limit, offset int) ([]User, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	if filter.DivisionID != "" {
		where += fmt.Sprintf(" AND division_id = $%d", len(args)+1)
		args = append(args, filter.DivisionID)
	}
	if filter.Role != "" {
		where += fmt.Sprintf(" AND role = $%d", len(args)+1)
		args = append(args, filter.Role)
	}
	if filter.ActiveOnly {
		where += " AND active"
	}

	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
    SELECT id, email, full_name, role, COALESCE(division_id::text, ''), active, last_login_at, created_at, updated_at
    FROM users
  ` + where + fmt.Sprintf(" ORDER BY full_name LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var user User
		if err := rows.Scan(&user.ID, &user.Email, &user.FullName, &user.Role, &user.DivisionID, &user.Active, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, 0, err
		}
		users = append(users, user)
	}
	return users, total, rows.Err()
}

func (s *Store) GetUser(ctx context.Context, id string) (User, error) {
	var user User
	err := s.DB.QueryRow(ctx, `
    SELECT id, email, full_name, role, COALESCE(division_id::text, ''), active, last_login_at, created_at, updated_at
    FROM users
    WHERE id = $1
  `, id).Scan(&user.ID, &user.Email, &user.FullName, &user.Role, &user.DivisionID, &user.Active, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Store) CreateUser(ctx context.Context, email, fullName, passwordHash, role string, divisionID any) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (email, full_name, password_hash, role, division_id)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id
  `, email, fullName, passwordHash, role, divisionID).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateUser(ctx context.Context, id, fullName, role string, divisionID any, active bool) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE users
    SET full_name = $1, role = $2, division_id = $3, active = $4, updated_at = now()
    WHERE id = $5
  `, fullName, role, divisionID, active, id)
	return err
}

func (s *Store) DeactivateUser(ctx context.Context, id string) error {
	_, err := s.DB.Exec(ctx, "UPDATE users SET active = false, updated_at = now() WHERE id = $1", id)
	return err
}
