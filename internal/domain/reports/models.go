package reports

import "time"

// Score-bearing reports read reviewed assessments only; submitted-but-
// unreviewed work shows up in the pending counter and the recent feed. Top
// performers rank the period_results aggregates instead, as those are the
// rollups the aggregator maintains per (employee, kpi, period).

type DashboardSummary struct {
	TotalEmployees       int                `json:"totalEmployees"`
	TotalDivisions       int                `json:"totalDivisions"`
	ActiveKPIs           int                `json:"activeKpis"`
	PendingReviews       int                `json:"pendingReviews"`
	SubmissionsThisMonth int                `json:"submissionsThisMonth"`
	AvgScore             float64            `json:"avgScore"`
	RecentAssessments    []RecentAssessment `json:"recentAssessments"`
	TopPerformers        []TopPerformer     `json:"topPerformers"`
	MonthlyTrend         []TrendPoint       `json:"monthlyTrend"`
}

type RecentAssessment struct {
	AssessmentID string    `json:"assessmentId"`
	EmployeeName string    `json:"employeeName"`
	KPIName      string    `json:"kpiName"`
	Status       string    `json:"status"`
	TotalScore   *float64  `json:"totalScore,omitempty"`
	Grade        string    `json:"grade,omitempty"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

type DivisionPerformance struct {
	DivisionID      string  `json:"divisionId"`
	DivisionName    string  `json:"divisionName"`
	EmployeeCount   int     `json:"employeeCount"`
	AssessmentCount int     `json:"assessmentCount"`
	AvgScore        float64 `json:"avgScore"`
	Grade           string  `json:"grade"`
}

type TopPerformer struct {
	EmployeeID      string  `json:"employeeId"`
	EmployeeName    string  `json:"employeeName"`
	DivisionName    string  `json:"divisionName"`
	AssessmentCount int     `json:"assessmentCount"`
	AvgScore        float64 `json:"avgScore"`
	Grade           string  `json:"grade"`
}

type TrendPoint struct {
	Period          string  `json:"period"`
	AssessmentCount int     `json:"assessmentCount"`
	AvgScore        float64 `json:"avgScore"`
}

type EmployeeReportItem struct {
	KPIID           string     `json:"kpiId"`
	KPIName         string     `json:"kpiName"`
	AssessmentCount int        `json:"assessmentCount"`
	AvgScore        float64    `json:"avgScore"`
	Grade           string     `json:"grade"`
	LastFillDate    *time.Time `json:"lastFillDate,omitempty"`
}

type EmployeeReport struct {
	EmployeeID   string               `json:"employeeId"`
	EmployeeName string               `json:"employeeName"`
	Email        string               `json:"email"`
	DivisionName string               `json:"divisionName"`
	Items        []EmployeeReportItem `json:"items"`
	AvgScore     float64              `json:"avgScore"`
	Grade        string               `json:"grade"`
	GeneratedAt  time.Time            `json:"generatedAt"`
}
