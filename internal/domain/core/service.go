package core

import (
	"context"

	"kpitrack/internal/domain/auth"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) ListDivisions(ctx context.Context, activeOnly bool) ([]Division, error) {
	return s.Store.ListDivisions(ctx, activeOnly)
}

func (s *Service) GetDivision(ctx context.Context, id string) (Division, error) {
	return s.Store.GetDivision(ctx, id)
}

func (s *Service) CreateDivision(ctx context.Context, name, description string) (string, error) {
	return s.Store.CreateDivision(ctx, name, description)
}

func (s *Service) UpdateDivision(ctx context.Context, id, name, description string, active bool) error {
	return s.Store.UpdateDivision(ctx, id, name, description, active)
}

func (s *Service) DeactivateDivision(ctx context.Context, id string) error {
	return s.Store.DeactivateDivision(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, filter UserFilter, limit, offset int) ([]User, int, error) {
	return s.Store.ListUsers(ctx, filter, limit, offset)
}

func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	return s.Store.GetUser(ctx, id)
}

func (s *Service) CreateUser(ctx context.Context, email, fullName, password, role, divisionID string) (string, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return "", err
	}
	return s.Store.CreateUser(ctx, email, fullName, hash, role, nullIfEmpty(divisionID))
}

func (s *Service) UpdateUser(ctx context.Context, id, fullName, role, divisionID string, active bool) error {
	return s.Store.UpdateUser(ctx, id, fullName, role, nullIfEmpty(divisionID), active)
}

func (s *Service) DeactivateUser(ctx context.Context, id string) error {
	return s.Store.DeactivateUser(ctx, id)
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
