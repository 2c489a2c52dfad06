package assessment

import (
	"context"
	"time"
)

// StoreAPI is the persistence surface the lifecycle service depends on.
// The pgx-backed Store implements it; tests substitute an in-memory fake.
type StoreAPI interface {
	KPISchema(ctx context.Context, kpiID string) (Schema, error)
	EmployeeDivision(ctx context.Context, employeeID string) (string, error)
	CreateSubmitted(ctx context.Context, sub Submission) (string, error)
	SaveDraft(ctx context.Context, draft Draft) (string, error)
	GetDetail(ctx context.Context, assessmentID, restrictToEmployee string) (Detail, error)
	ListHistory(ctx context.Context, employeeID string, limit, offset int) ([]HistoryItem, int, error)
	ListPending(ctx context.Context, limit, offset int) ([]PendingItem, int, error)
	MarkReviewed(ctx context.Context, assessmentID, managerNote string, at time.Time) error
	RecomputePeriod(ctx context.Context, employeeID, kpiID, periodLabel string) (PeriodResult, bool, error)
}
