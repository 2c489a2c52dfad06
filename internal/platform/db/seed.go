package db

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"kpitrack/internal/domain/auth"
	"kpitrack/internal/platform/config"
)

// Seed makes sure a default division and the bootstrap accounts exist.
// Idempotent; existing rows are left alone.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	divisionID, err := ensureDivision(ctx, pool, cfg.SeedDivisionName)
	if err != nil {
		return err
	}

	if err := ensureUser(ctx, pool, cfg.SeedAdminEmail, cfg.SeedAdminPassword, "Administrator", auth.RoleAdmin, ""); err != nil {
		return err
	}
	if err := ensureUser(ctx, pool, cfg.SeedManagerEmail, cfg.SeedManagerPassword, "Manager", auth.RoleManager, divisionID); err != nil {
		return err
	}

	return nil
}

func ensureDivision(ctx context.Context, pool *pgxpool.Pool, name string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM divisions WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}

	if err := pool.QueryRow(ctx, "INSERT INTO divisions (name) VALUES ($1) RETURNING id", name).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, email, password, fullName, role, divisionID string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE email = $1", email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	var division any
	if divisionID != "" {
		division = divisionID
	}
	return pool.QueryRow(ctx, `
    INSERT INTO users (email, password_hash, full_name, role, division_id)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id
  `, email, hash, fullName, role, division).Scan(&id)
}
