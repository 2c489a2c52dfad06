package reports

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"

	cryptoutil "kpitrack/internal/platform/crypto"
)

type Service struct {
	store  *Store
	crypto *cryptoutil.Service
}

func NewService(store *Store, crypto *cryptoutil.Service) *Service {
	return &Service{store: store, crypto: crypto}
}

// DashboardSummary assembles the landing-page payload: headline counters
// plus the recent-submissions feed, top performers, and the monthly trend.
func (s *Service) DashboardSummary(ctx context.Context) (DashboardSummary, error) {
	summary, err := s.store.DashboardSummary(ctx)
	if err != nil {
		return DashboardSummary{}, err
	}
	if summary.RecentAssessments, err = s.store.RecentAssessments(ctx, 5); err != nil {
		return DashboardSummary{}, err
	}
	if summary.TopPerformers, err = s.store.TopPerformers(ctx, 5); err != nil {
		return DashboardSummary{}, err
	}
	if summary.MonthlyTrend, err = s.store.MonthlyTrend(ctx, 6); err != nil {
		return DashboardSummary{}, err
	}
	return summary, nil
}

func (s *Service) DivisionPerformance(ctx context.Context) ([]DivisionPerformance, error) {
	return s.store.DivisionPerformance(ctx)
}

func (s *Service) TopPerformers(ctx context.Context, limit int) ([]TopPerformer, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	return s.store.TopPerformers(ctx, limit)
}

func (s *Service) MonthlyTrend(ctx context.Context, months int) ([]TrendPoint, error) {
	if months <= 0 || months > 36 {
		months = 12
	}
	return s.store.MonthlyTrend(ctx, months)
}

func (s *Service) EmployeeReport(ctx context.Context, employeeID string) (EmployeeReport, error) {
	report, err := s.store.EmployeeReport(ctx, employeeID)
	if err != nil {
		return EmployeeReport{}, err
	}
	report.GeneratedAt = time.Now()
	return report, nil
}

// GenerateEmployeeReportPDF renders the reviewed-only performance report to
// disk and returns the file path. With an encryption key configured the
// plaintext PDF is replaced by an encrypted copy.
func (s *Service) GenerateEmployeeReportPDF(ctx context.Context, employeeID string) (string, error) {
	report, err := s.EmployeeReport(ctx, employeeID)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll("storage/reports", 0o755); err != nil {
		return "", err
	}
	filePath := filepath.Join("storage/reports", fmt.Sprintf("%s-%s.pdf", employeeID, report.GeneratedAt.Format("20060102-150405")))

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Performance Report")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Employee: %s", report.EmployeeName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Email: %s", report.Email))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Division: %s", report.DivisionName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Generated: %s", report.GeneratedAt.Format("2006-01-02 15:04")))
	pdf.Ln(10)

	if len(report.Items) == 0 {
		pdf.Cell(0, 8, "No reviewed assessments yet.")
	} else {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(90, 8, "KPI")
		pdf.Cell(30, 8, "Reviews")
		pdf.Cell(30, 8, "Avg Score")
		pdf.Cell(20, 8, "Grade")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 12)
		for _, item := range report.Items {
			pdf.Cell(90, 8, item.KPIName)
			pdf.Cell(30, 8, fmt.Sprintf("%d", item.AssessmentCount))
			pdf.Cell(30, 8, fmt.Sprintf("%.1f", item.AvgScore))
			pdf.Cell(20, 8, item.Grade)
			pdf.Ln(8)
		}
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 8, fmt.Sprintf("Overall: %.1f (%s)", report.AvgScore, report.Grade))
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", err
	}

	if s.crypto != nil && s.crypto.Configured() {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return "", err
		}
		encrypted, err := s.crypto.Encrypt(data)
		if err != nil {
			return "", err
		}
		encryptedPath := filePath + ".enc"
		if err := os.WriteFile(encryptedPath, encrypted, 0o600); err != nil {
			return "", err
		}
		if err := os.Remove(filePath); err != nil {
			return "", err
		}
		return encryptedPath, nil
	}

	return filePath, nil
}
