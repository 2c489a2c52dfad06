package reports

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"kpitrack/internal/domain/assessment"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

var ErrEmployeeNotFound = errors.New("employee not found")

func (s *Store) DashboardSummary(ctx context.Context) (DashboardSummary, error) {
	var summary DashboardSummary

	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM users WHERE active = true").Scan(&summary.TotalEmployees); err != nil {
		return DashboardSummary{}, err
	}
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM divisions WHERE active = true").Scan(&summary.TotalDivisions); err != nil {
		return DashboardSummary{}, err
	}
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM kpis WHERE active = true").Scan(&summary.ActiveKPIs); err != nil {
		return DashboardSummary{}, err
	}
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM assessments WHERE status = $1", assessment.StatusSubmitted).Scan(&summary.PendingReviews); err != nil {
		return DashboardSummary{}, err
	}
	if err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM assessments
    WHERE status <> $1 AND submitted_at >= date_trunc('month', now())
  `, assessment.StatusDraft).Scan(&summary.SubmissionsThisMonth); err != nil {
		return DashboardSummary{}, err
	}
	if err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(AVG(total_score), 0)
    FROM assessments
    WHERE status = $1 AND total_score IS NOT NULL
  `, assessment.StatusReviewed).Scan(&summary.AvgScore); err != nil {
		return DashboardSummary{}, err
	}

	return summary, nil
}

func (s *Store) RecentAssessments(ctx context.Context, limit int) ([]RecentAssessment, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT a.id, u.full_name, k.name, a.status, a.total_score, a.submitted_at
    FROM assessments a
    JOIN users u ON a.employee_id = u.id
    JOIN kpis k ON a.kpi_id = k.id
    WHERE a.status <> $1 AND a.submitted_at IS NOT NULL
    ORDER BY a.submitted_at DESC
    LIMIT $2
  `, assessment.StatusDraft, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecentAssessment
	for rows.Next() {
		var row RecentAssessment
		if err := rows.Scan(&row.AssessmentID, &row.EmployeeName, &row.KPIName, &row.Status, &row.TotalScore, &row.SubmittedAt); err != nil {
			return nil, err
		}
		if row.TotalScore != nil {
			row.Grade = assessment.Classify(*row.TotalScore)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *Store) DivisionPerformance(ctx context.Context) ([]DivisionPerformance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT d.id, d.name,
           COUNT(DISTINCT a.employee_id),
           COUNT(a.id),
           COALESCE(AVG(a.total_score), 0)
    FROM divisions d
    LEFT JOIN users u ON u.division_id = d.id
    LEFT JOIN assessments a ON a.employee_id = u.id AND a.status = $1
    WHERE d.active = true
    GROUP BY d.id, d.name
    ORDER BY d.name
  `, assessment.StatusReviewed)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DivisionPerformance
	for rows.Next() {
		var row DivisionPerformance
		if err := rows.Scan(&row.DivisionID, &row.DivisionName, &row.EmployeeCount, &row.AssessmentCount, &row.AvgScore); err != nil {
			return nil, err
		}
		if row.AssessmentCount > 0 {
			row.Grade = assessment.Classify(row.AvgScore)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// TopPerformers ranks employees by the average of their period_results
// aggregates rather than raw assessment rows, so one heavily assessed period
// does not outweigh the others.
func (s *Store) TopPerformers(ctx context.Context, limit int) ([]TopPerformer, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT u.id, u.full_name, COALESCE(d.name, ''),
           SUM(pr.assessment_count), AVG(pr.avg_score)
    FROM period_results pr
    JOIN users u ON pr.employee_id = u.id
    LEFT JOIN divisions d ON u.division_id = d.id
    GROUP BY u.id, u.full_name, d.name
    ORDER BY AVG(pr.avg_score) DESC
    LIMIT $1
  `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TopPerformer
	for rows.Next() {
		var row TopPerformer
		if err := rows.Scan(&row.EmployeeID, &row.EmployeeName, &row.DivisionName, &row.AssessmentCount, &row.AvgScore); err != nil {
			return nil, err
		}
		row.Grade = assessment.Classify(row.AvgScore)
		out = append(out, row)
	}
	return out, rows.Err()
}

// MonthlyTrend returns per-month averages over the trailing window, oldest
// first. Months without reviewed assessments are simply absent.
func (s *Store) MonthlyTrend(ctx context.Context, months int) ([]TrendPoint, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT to_char(fill_date, 'YYYY-MM'), COUNT(1), AVG(total_score)
    FROM assessments
    WHERE status = $1 AND total_score IS NOT NULL
      AND fill_date >= date_trunc('month', now()) - ($2 || ' months')::interval
    GROUP BY 1
    ORDER BY 1
  `, assessment.StatusReviewed, months)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TrendPoint
	for rows.Next() {
		var point TrendPoint
		if err := rows.Scan(&point.Period, &point.AssessmentCount, &point.AvgScore); err != nil {
			return nil, err
		}
		out = append(out, point)
	}
	return out, rows.Err()
}

func (s *Store) EmployeeReport(ctx context.Context, employeeID string) (EmployeeReport, error) {
	var report EmployeeReport
	err := s.DB.QueryRow(ctx, `
    SELECT u.id, u.full_name, u.email, COALESCE(d.name, '')
    FROM users u
    LEFT JOIN divisions d ON u.division_id = d.id
    WHERE u.id = $1
  `, employeeID).Scan(&report.EmployeeID, &report.EmployeeName, &report.Email, &report.DivisionName)
	if errors.Is(err, pgx.ErrNoRows) {
		return EmployeeReport{}, ErrEmployeeNotFound
	}
	if err != nil {
		return EmployeeReport{}, err
	}

	rows, err := s.DB.Query(ctx, `
    SELECT k.id, k.name, COUNT(a.id), AVG(a.total_score), MAX(a.fill_date)
    FROM assessments a
    JOIN kpis k ON a.kpi_id = k.id
    WHERE a.employee_id = $1 AND a.status = $2 AND a.total_score IS NOT NULL
    GROUP BY k.id, k.name
    ORDER BY k.name
  `, employeeID, assessment.StatusReviewed)
	if err != nil {
		return EmployeeReport{}, err
	}
	defer rows.Close()

	var weightedSum float64
	var totalCount int
	for rows.Next() {
		var item EmployeeReportItem
		if err := rows.Scan(&item.KPIID, &item.KPIName, &item.AssessmentCount, &item.AvgScore, &item.LastFillDate); err != nil {
			return EmployeeReport{}, err
		}
		item.Grade = assessment.Classify(item.AvgScore)
		report.Items = append(report.Items, item)
		weightedSum += item.AvgScore * float64(item.AssessmentCount)
		totalCount += item.AssessmentCount
	}
	if err := rows.Err(); err != nil {
		return EmployeeReport{}, err
	}

	if totalCount > 0 {
		report.AvgScore = weightedSum / float64(totalCount)
		report.Grade = assessment.Classify(report.AvgScore)
	}
	return report, nil
}
