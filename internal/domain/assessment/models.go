package assessment

import (
	"time"

	"kpitrack/internal/domain/kpi"
)

// Schema is the read-only question set an assessment is scored against.
type Schema struct {
	KPIID      string
	DivisionID string
	Name       string
	Period     kpi.Period
	Active     bool
	Questions  []kpi.Question
}

// AnswerInput is one submitted answer. Exactly one of Numeric/Text is
// populated after validation, matching the referenced question's answer type.
type AnswerInput struct {
	QuestionID string   `json:"questionId"`
	Numeric    *float64 `json:"numericValue,omitempty"`
	Text       string   `json:"textValue,omitempty"`
}

type Assessment struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employeeId"`
	KPIID        string     `json:"kpiId"`
	FillDate     time.Time  `json:"fillDate"`
	Status       string     `json:"status"`
	TotalScore   *float64   `json:"totalScore,omitempty"`
	EmployeeNote string     `json:"employeeNote,omitempty"`
	ManagerNote  string     `json:"managerNote,omitempty"`
	SubmittedAt  *time.Time `json:"submittedAt,omitempty"`
	ReviewedAt   *time.Time `json:"reviewedAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// PeriodResult is the derived rollup for one (employee, kpi, period).
// It is recomputed from scratch, never incremented.
type PeriodResult struct {
	EmployeeID string  `json:"employeeId"`
	KPIID      string  `json:"kpiId"`
	Period     string  `json:"period"`
	AvgScore   float64 `json:"avgScore"`
	TotalScore float64 `json:"totalScore"`
	Count      int     `json:"count"`
	Grade      string  `json:"grade"`
}

type SubmitInput struct {
	KPIID        string
	FillDate     time.Time
	Answers      []AnswerInput
	EmployeeNote string
}

type DraftInput struct {
	KPIID        string
	Answers      []AnswerInput
	EmployeeNote string
}

type SubmitResult struct {
	AssessmentID string  `json:"assessmentId"`
	TotalScore   float64 `json:"totalScore"`
	Grade        string  `json:"grade"`
	Status       string  `json:"status"`
}

type DraftResult struct {
	AssessmentID string `json:"assessmentId"`
	Status       string `json:"status"`
}

type AnswerDetail struct {
	QuestionID     string         `json:"questionId"`
	Prompt         string         `json:"prompt"`
	AnswerType     kpi.AnswerType `json:"answerType"`
	QuestionWeight int            `json:"questionWeight"`
	Numeric        *float64       `json:"numericValue,omitempty"`
	Text           string         `json:"textValue,omitempty"`
}

type Detail struct {
	Assessment
	Grade        string         `json:"grade,omitempty"`
	KPIName      string         `json:"kpiName"`
	EmployeeName string         `json:"employeeName"`
	DivisionName string         `json:"divisionName"`
	Answers      []AnswerDetail `json:"answers"`
}

type HistoryItem struct {
	Assessment
	KPIName string `json:"kpiName"`
	Grade   string `json:"grade,omitempty"`
}

type PendingItem struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	EmployeeName string    `json:"employeeName"`
	KPIID        string    `json:"kpiId"`
	KPIName      string    `json:"kpiName"`
	FillDate     time.Time `json:"fillDate"`
	TotalScore   float64   `json:"totalScore"`
	SubmittedAt  time.Time `json:"submittedAt"`
}

// Submission is the validated write set handed to the store; answers are
// already filtered to schema questions and normalized.
type Submission struct {
	EmployeeID   string
	KPIID        string
	FillDate     time.Time
	SubmittedAt  time.Time
	TotalScore   float64
	EmployeeNote string
	PeriodLabel  string
	Answers      []AnswerInput
}

type Draft struct {
	EmployeeID   string
	KPIID        string
	FillDate     time.Time
	EmployeeNote string
	Answers      []AnswerInput
}
