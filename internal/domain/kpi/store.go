package kpi

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type Filter struct {
	DivisionID string
	Period     string
	Search     string
	ActiveOnly bool
}

func (s *Store) List(ctx context.Context, filter Filter) ([]KPI, error) {
	query := `
    SELECT id, division_id, name, COALESCE(description, ''), period, weight, active, created_at, updated_at
    FROM kpis
    WHERE 1=1
  `
	args := []any{}
	if filter.DivisionID != "" {
		query += fmt.Sprintf(" AND division_id = $%d", len(args)+1)
		args = append(args, filter.DivisionID)
	}
	if filter.Period != "" {
		query += fmt.Sprintf(" AND period = $%d", len(args)+1)
		args = append(args, filter.Period)
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND name ILIKE $%d", len(args)+1)
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.ActiveOnly {
		query += " AND active"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KPI
	for rows.Next() {
		var k KPI
		if err := rows.Scan(&k.ID, &k.DivisionID, &k.Name, &k.Description, &k.Period, &k.Weight, &k.Active, &k.CreatedAt, &k.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		questions, err := s.Questions(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Questions = questions
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (KPI, error) {
	var k KPI
	err := s.DB.QueryRow(ctx, `
    SELECT id, division_id, name, COALESCE(description, ''), period, weight, active, created_at, updated_at
    FROM kpis
    WHERE id = $1
  `, id).Scan(&k.ID, &k.DivisionID, &k.Name, &k.Description, &k.Period, &k.Weight, &k.Active, &k.CreatedAt, &k.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return KPI{}, ErrNotFound
	}
	if err != nil {
		return KPI{}, err
	}

	questions, err := s.Questions(ctx, id)
	if err != nil {
		return KPI{}, err
	}
	k.Questions = questions
	return k, nil
}

func (s *Store) Questions(ctx context.Context, kpiID string) ([]Question, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, kpi_id, prompt, answer_type, weight, position, mandatory
    FROM kpi_questions
    WHERE kpi_id = $1
    ORDER BY position
  `, kpiID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.KPIID, &q.Prompt, &q.AnswerType, &q.Weight, &q.Position, &q.Mandatory); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) Create(ctx context.Context, divisionID, name, description string, period Period, weight int, questions []QuestionInput) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO kpis (division_id, name, description, period, weight)
    VALUES ($1, $2, $3, $4, $5)
    RETURNING id
  `, divisionID, name, description, period, weight).Scan(&id); err != nil {
		return "", err
	}

	for _, q := range questions {
		if _, err := tx.Exec(ctx, `
      INSERT INTO kpi_questions (kpi_id, prompt, answer_type, weight, position, mandatory)
      VALUES ($1, $2, $3, $4, $5, $6)
    `, id, q.Prompt, q.AnswerType, q.Weight, q.Position, q.Mandatory); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// Update replaces the KPI row and its full question set in one transaction.
func (s *Store) Update(ctx context.Context, id, divisionID, name, description string, period Period, weight int, active bool, questions []QuestionInput) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
    UPDATE kpis
    SET division_id = $1, name = $2, description = $3, period = $4, weight = $5, active = $6, updated_at = now()
    WHERE id = $7
  `, divisionID, name, description, period, weight, active, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if _, err := tx.Exec(ctx, "DELETE FROM kpi_questions WHERE kpi_id = $1", id); err != nil {
		return err
	}
	for _, q := range questions {
		if _, err := tx.Exec(ctx, `
      INSERT INTO kpi_questions (kpi_id, prompt, answer_type, weight, position, mandatory)
      VALUES ($1, $2, $3, $4, $5, $6)
    `, id, q.Prompt, q.AnswerType, q.Weight, q.Position, q.Mandatory); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *Store) Deactivate(ctx context.Context, id string) error {
	tag, err := s.DB.Exec(ctx, "UPDATE kpis SET active = false, updated_at = now() WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
