package assessment

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kpitrack/internal/domain/kpi"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) KPISchema(ctx context.Context, kpiID string) (Schema, error) {
	var schema Schema
	err := s.DB.QueryRow(ctx, `
    SELECT id, division_id, name, period, active
    FROM kpis
    WHERE id = $1
  `, kpiID).Scan(&schema.KPIID, &schema.DivisionID, &schema.Name, &schema.Period, &schema.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return Schema{}, ErrKPINotFound
	}
	if err != nil {
		return Schema{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT id, kpi_id, prompt, answer_type, weight, position, mandatory
    FROM kpi_questions
    WHERE kpi_id = $1
    ORDER BY position
  `, kpiID)
	if err != nil {
		return Schema{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var q kpi.Question
		if err := rows.Scan(&q.ID, &q.KPIID, &q.Prompt, &q.AnswerType, &q.Weight, &q.Position, &q.Mandatory); err != nil {
			return Schema{}, err
		}
		schema.Questions = append(schema.Questions, q)
	}
	return schema, rows.Err()
}

func (s *Store) EmployeeDivision(ctx context.Context, employeeID string) (string, error) {
	var divisionID string
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(division_id::text, '')
    FROM users
    WHERE id = $1
  `, employeeID).Scan(&divisionID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrEmployeeNotFound
	}
	if err != nil {
		return "", err
	}
	return divisionID, nil
}

// CreateSubmitted persists the assessment, its answers and the recomputed
// period rollup in a single transaction; any failure rolls back all three.
func (s *Store) CreateSubmitted(ctx context.Context, sub Submission) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var id string
	if err := tx.QueryRow(ctx, `
    INSERT INTO assessments (employee_id, kpi_id, fill_date, status, total_score, employee_note, submitted_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING id
  `, sub.EmployeeID, sub.KPIID, sub.FillDate, StatusSubmitted, sub.TotalScore, nullIfEmpty(sub.EmployeeNote), sub.SubmittedAt).Scan(&id); err != nil {
		return "", err
	}

	if err := insertAnswers(ctx, tx, id, sub.Answers); err != nil {
		return "", err
	}

	if _, _, err := recomputeTx(ctx, tx, sub.EmployeeID, sub.KPIID, sub.PeriodLabel); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// SaveDraft replaces an existing draft's answers wholesale, or creates a new
// draft row.
func (s *Store) SaveDraft(ctx context.Context, draft Draft) (string, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `
    SELECT id FROM assessments
    WHERE employee_id = $1 AND kpi_id = $2 AND status = $3
    FOR UPDATE
  `, draft.EmployeeID, draft.KPIID, StatusDraft).Scan(&id)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		if err := tx.QueryRow(ctx, `
      INSERT INTO assessments (employee_id, kpi_id, fill_date, status, employee_note)
      VALUES ($1, $2, $3, $4, $5)
      RETURNING id
    `, draft.EmployeeID, draft.KPIID, draft.FillDate, StatusDraft, nullIfEmpty(draft.EmployeeNote)).Scan(&id); err != nil {
			return "", err
		}
	case err != nil:
		return "", err
	default:
		if _, err := tx.Exec(ctx, `
      UPDATE assessments
      SET employee_note = $1, fill_date = $2, updated_at = now()
      WHERE id = $3
    `, nullIfEmpty(draft.EmployeeNote), draft.FillDate, id); err != nil {
			return "", err
		}
		if _, err := tx.Exec(ctx, "DELETE FROM assessment_answers WHERE assessment_id = $1", id); err != nil {
			return "", err
		}
	}

	if err := insertAnswers(ctx, tx, id, draft.Answers); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetDetail(ctx context.Context, assessmentID, restrictToEmployee string) (Detail, error) {
	query := `
    SELECT a.id, a.employee_id, a.kpi_id, a.fill_date, a.status, a.total_score,
           COALESCE(a.employee_note, ''), COALESCE(a.manager_note, ''),
           a.submitted_at, a.reviewed_at, a.created_at,
           k.name, u.full_name, COALESCE(d.name, '')
    FROM assessments a
    JOIN kpis k ON a.kpi_id = k.id
    JOIN users u ON a.employee_id = u.id
    LEFT JOIN divisions d ON u.division_id = d.id
    WHERE a.id = $1
  `
	args := []any{assessmentID}
	if restrictToEmployee != "" {
		query += " AND a.employee_id = $2"
		args = append(args, restrictToEmployee)
	}

	var detail Detail
	err := s.DB.QueryRow(ctx, query, args...).Scan(
		&detail.ID, &detail.EmployeeID, &detail.KPIID, &detail.FillDate, &detail.Status, &detail.TotalScore,
		&detail.EmployeeNote, &detail.ManagerNote,
		&detail.SubmittedAt, &detail.ReviewedAt, &detail.CreatedAt,
		&detail.KPIName, &detail.EmployeeName, &detail.DivisionName,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Detail{}, ErrAssessmentNotFound
	}
	if err != nil {
		return Detail{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT ans.question_id, q.prompt, q.answer_type, q.weight, ans.numeric_value, COALESCE(ans.text_value, '')
    FROM assessment_answers ans
    JOIN kpi_questions q ON ans.question_id = q.id
    WHERE ans.assessment_id = $1
    ORDER BY q.position
  `, assessmentID)
	if err != nil {
		return Detail{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var answer AnswerDetail
		if err := rows.Scan(&answer.QuestionID, &answer.Prompt, &answer.AnswerType, &answer.QuestionWeight, &answer.Numeric, &answer.Text); err != nil {
			return Detail{}, err
		}
		detail.Answers = append(detail.Answers, answer)
	}
	return detail, rows.Err()
}

func (s *Store) ListHistory(ctx context.Context, employeeID string, limit, offset int) ([]HistoryItem, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1) FROM assessments
    WHERE employee_id = $1 AND status <> $2
  `, employeeID, StatusDraft).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT a.id, a.employee_id, a.kpi_id, a.fill_date, a.status, a.total_score,
           COALESCE(a.employee_note, ''), COALESCE(a.manager_note, ''),
           a.submitted_at, a.reviewed_at, a.created_at, k.name
    FROM assessments a
    JOIN kpis k ON a.kpi_id = k.id
    WHERE a.employee_id = $1 AND a.status <> $2
    ORDER BY a.fill_date DESC
    LIMIT $3 OFFSET $4
  `, employeeID, StatusDraft, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []HistoryItem
	for rows.Next() {
		var item HistoryItem
		if err := rows.Scan(&item.ID, &item.EmployeeID, &item.KPIID, &item.FillDate, &item.Status, &item.TotalScore,
			&item.EmployeeNote, &item.ManagerNote, &item.SubmittedAt, &item.ReviewedAt, &item.CreatedAt, &item.KPIName); err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func (s *Store) ListPending(ctx context.Context, limit, offset int) ([]PendingItem, int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM assessments WHERE status = $1", StatusSubmitted).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT a.id, a.employee_id, u.full_name, a.kpi_id, k.name, a.fill_date, COALESCE(a.total_score, 0), a.submitted_at
    FROM assessments a
    JOIN users u ON a.employee_id = u.id
    JOIN kpis k ON a.kpi_id = k.id
    WHERE a.status = $1
    ORDER BY a.submitted_at
    LIMIT $2 OFFSET $3
  `, StatusSubmitted, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []PendingItem
	for rows.Next() {
		var item PendingItem
		if err := rows.Scan(&item.ID, &item.EmployeeID, &item.EmployeeName, &item.KPIID, &item.KPIName, &item.FillDate, &item.TotalScore, &item.SubmittedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

// MarkReviewed transitions submitted → reviewed under a row lock so
// concurrent reviews cannot both pass the state check.
func (s *Store) MarkReviewed(ctx context.Context, assessmentID, managerNote string, at time.Time) error {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx, "SELECT status FROM assessments WHERE id = $1 FOR UPDATE", assessmentID).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAssessmentNotFound
	}
	if err != nil {
		return err
	}
	if status != StatusSubmitted {
		return ErrInvalidState
	}

	if _, err := tx.Exec(ctx, `
    UPDATE assessments
    SET status = $1, manager_note = $2, reviewed_at = $3, updated_at = now()
    WHERE id = $4
  `, StatusReviewed, managerNote, at, assessmentID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *Store) RecomputePeriod(ctx context.Context, employeeID, kpiID, periodLabel string) (PeriodResult, bool, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return PeriodResult{}, false, err
	}
	defer tx.Rollback(ctx)

	result, ok, err := recomputeTx(ctx, tx, employeeID, kpiID, periodLabel)
	if err != nil {
		return PeriodResult{}, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return PeriodResult{}, false, err
	}
	return result, ok, nil
}

// recomputeTx rebuilds one (employee, kpi, period) rollup inside the caller's
// transaction. It always reads the full current assessment set rather than
// incrementing, so concurrent submissions converge on the same row.
func recomputeTx(ctx context.Context, tx pgx.Tx, employeeID, kpiID, periodLabel string) (PeriodResult, bool, error) {
	windowStart, windowEnd, err := PeriodWindow(periodLabel)
	if err != nil {
		return PeriodResult{}, false, err
	}

	rows, err := tx.Query(ctx, `
    SELECT total_score
    FROM assessments
    WHERE employee_id = $1 AND kpi_id = $2
      AND status = ANY($3)
      AND fill_date >= $4 AND fill_date < $5
      AND total_score IS NOT NULL
  `, employeeID, kpiID, PolicySubmittedToDate.Statuses(), windowStart, windowEnd)
	if err != nil {
		return PeriodResult{}, false, err
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var score float64
		if err := rows.Scan(&score); err != nil {
			return PeriodResult{}, false, err
		}
		scores = append(scores, score)
	}
	if err := rows.Err(); err != nil {
		return PeriodResult{}, false, err
	}

	result, ok := BuildPeriodResult(employeeID, kpiID, periodLabel, scores)
	if !ok {
		return PeriodResult{}, false, nil
	}

	if _, err := tx.Exec(ctx, `
    INSERT INTO period_results (employee_id, kpi_id, period, avg_score, total_score, assessment_count, grade)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    ON CONFLICT (employee_id, kpi_id, period)
    DO UPDATE SET avg_score = EXCLUDED.avg_score, total_score = EXCLUDED.total_score,
                  assessment_count = EXCLUDED.assessment_count, grade = EXCLUDED.grade, updated_at = now()
  `, result.EmployeeID, result.KPIID, result.Period, result.AvgScore, result.TotalScore, result.Count, result.Grade); err != nil {
		return PeriodResult{}, false, err
	}

	return result, true, nil
}

func insertAnswers(ctx context.Context, tx pgx.Tx, assessmentID string, answers []AnswerInput) error {
	for _, answer := range answers {
		if _, err := tx.Exec(ctx, `
      INSERT INTO assessment_answers (assessment_id, question_id, numeric_value, text_value)
      VALUES ($1, $2, $3, $4)
    `, assessmentID, answer.QuestionID, answer.Numeric, nullIfEmpty(answer.Text)); err != nil {
			return err
		}
	}
	return nil
}

func nullIfEmpty(value string) any {
	if value == "" {
		return nil
	}
	return value
}
