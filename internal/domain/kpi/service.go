package kpi

import "context"

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) List(ctx context.Context, filter Filter) ([]KPI, error) {
	return s.Store.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id string) (KPI, error) {
	return s.Store.Get(ctx, id)
}

// MyKPIs lists the active KPIs of the caller's division.
func (s *Service) MyKPIs(ctx context.Context, divisionID string) ([]KPI, error) {
	if divisionID == "" {
		return nil, nil
	}
	return s.Store.List(ctx, Filter{DivisionID: divisionID, ActiveOnly: true})
}

func (s *Service) Create(ctx context.Context, divisionID, name, description string, period Period, weight int, questions []QuestionInput) (string, error) {
	return s.Store.Create(ctx, divisionID, name, description, period, weight, questions)
}

func (s *Service) Update(ctx context.Context, id, divisionID, name, description string, period Period, weight int, active bool, questions []QuestionInput) error {
	return s.Store.Update(ctx, id, divisionID, name, description, period, weight, active, questions)
}

func (s *Service) Deactivate(ctx context.Context, id string) error {
	return s.Store.Deactivate(ctx, id)
}
