package assessment

import (
	"context"
	"errors"
	"testing"
	"time"

	"kpitrack/internal/domain/auth"
	"kpitrack/internal/domain/kpi"
)

// fakeStore is an in-memory StoreAPI so lifecycle rules can be exercised
// without a database.
type fakeStore struct {
	schemas   map[string]Schema
	divisions map[string]string
	details   map[string]Detail

	submissions []Submission
	drafts      []Draft
	reviewed    []string
	recomputes  []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		schemas:   map[string]Schema{},
		divisions: map[string]string{},
		details:   map[string]Detail{},
	}
}

func (f *fakeStore) KPISchema(_ context.Context, kpiID string) (Schema, error) {
	schema, ok := f.schemas[kpiID]
	if !ok {
		return Schema{}, ErrKPINotFound
	}
	return schema, nil
}

func (f *fakeStore) EmployeeDivision(_ context.Context, employeeID string) (string, error) {
	divisionID, ok := f.divisions[employeeID]
	if !ok {
		return "", ErrEmployeeNotFound
	}
	return divisionID, nil
}

func (f *fakeStore) CreateSubmitted(_ context.Context, sub Submission) (string, error) {
	f.submissions = append(f.submissions, sub)
	f.recomputes = append(f.recomputes, sub.PeriodLabel)
	return "assessment-1", nil
}

func (f *fakeStore) SaveDraft(_ context.Context, draft Draft) (string, error) {
	f.drafts = append(f.drafts, draft)
	return "draft-1", nil
}

func (f *fakeStore) GetDetail(_ context.Context, assessmentID, restrictToEmployee string) (Detail, error) {
	detail, ok := f.details[assessmentID]
	if !ok {
		return Detail{}, ErrAssessmentNotFound
	}
	if restrictToEmployee != "" && detail.EmployeeID != restrictToEmployee {
		return Detail{}, ErrAssessmentNotFound
	}
	return detail, nil
}

func (f *fakeStore) ListHistory(_ context.Context, _ string, _, _ int) ([]HistoryItem, int, error) {
	return nil, 0, nil
}

func (f *fakeStore) ListPending(_ context.Context, _, _ int) ([]PendingItem, int, error) {
	return nil, 0, nil
}

func (f *fakeStore) MarkReviewed(_ context.Context, assessmentID, _ string, _ time.Time) error {
	detail, ok := f.details[assessmentID]
	if !ok {
		return ErrAssessmentNotFound
	}
	if detail.Status != StatusSubmitted {
		return ErrInvalidState
	}
	f.reviewed = append(f.reviewed, assessmentID)
	return nil
}

func (f *fakeStore) RecomputePeriod(_ context.Context, _, _, periodLabel string) (PeriodResult, bool, error) {
	f.recomputes = append(f.recomputes, periodLabel)
	return PeriodResult{Period: periodLabel}, true, nil
}

func testSchema() Schema {
	return Schema{
		KPIID:      "kpi-1",
		DivisionID: "div-1",
		Name:       "Engineering Delivery",
		Period:     kpi.PeriodMonthly,
		Active:     true,
		Questions: []kpi.Question{
			question("q1", kpi.AnswerScale1To5, 60, true),
			question("q2", kpi.AnswerScale0To100, 40, true),
			question("q3", kpi.AnswerFreeText, 0, false),
		},
	}
}

func TestSubmitHappyPath(t *testing.T) {
	store := newFakeStore()
	store.schemas["kpi-1"] = testSchema()
	store.divisions["emp-1"] = "div-1"
	svc := NewService(store)

	result, err := svc.Submit(context.Background(), "emp-1", SubmitInput{
		KPIID:    "kpi-1",
		FillDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Answers: []AnswerInput{
			{QuestionID: "q1", Numeric: floatPtr(5)},
			{QuestionID: "q2", Numeric: floatPtr(90)},
			{QuestionID: "q3", Text: "solid month"},
		},
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if result.Status != StatusSubmitted {
		t.Fatalf("status = %q, want submitted", result.Status)
	}
	want := (100.0*60 + 90.0*40) / 100
	if result.TotalScore != want {
		t.Fatalf("total score = %v, want %v", result.TotalScore, want)
	}
	if result.Grade != "A+" {
		t.Fatalf("grade = %q, want A+", result.Grade)
	}

	if len(store.submissions) != 1 {
		t.Fatalf("expected exactly one submission, got %d", len(store.submissions))
	}
	sub := store.submissions[0]
	if sub.PeriodLabel != "2024-03" {
		t.Fatalf("period label = %q, want 2024-03", sub.PeriodLabel)
	}
	if len(sub.Answers) != 3 {
		t.Fatalf("persisted %d answers, want 3", len(sub.Answers))
	}
}

func TestSubmitMissingMandatoryPersistsNothing(t *testing.T) {
	store := newFakeStore()
	store.schemas["kpi-1"] = testSchema()
	store.divisions["emp-1"] = "div-1"
	svc := NewService(store)

	_, err := svc.Submit(context.Background(), "emp-1", SubmitInput{
		KPIID:   "kpi-1",
		Answers: []AnswerInput{{QuestionID: "q1", Numeric: floatPtr(4)}},
	})

	var missing *MissingMandatoryError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want MissingMandatoryError", err)
	}
	if len(missing.Prompts) != 1 || missing.Prompts[0] != "prompt q2" {
		t.Fatalf("prompts = %v, want [prompt q2]", missing.Prompts)
	}
	if len(store.submissions) != 0 || len(store.recomputes) != 0 {
		t.Fatal("rejected submission must not touch the store")
	}
}

func TestSubmitCrossDivision(t *testing.T) {
	store := newFakeStore()
	store.schemas["kpi-1"] = testSchema()
	store.divisions["emp-1"] = "div-other"
	svc := NewService(store)

	_, err := svc.Submit(context.Background(), "emp-1", SubmitInput{KPIID: "kpi-1"})
	if !errors.Is(err, ErrCrossDivision) {
		t.Fatalf("error = %v, want ErrCrossDivision", err)
	}
}

func TestSubmitInactiveKPI(t *testing.T) {
	store := newFakeStore()
	schema := testSchema()
	schema.Active = false
	store.schemas["kpi-1"] = schema
	store.divisions["emp-1"] = "div-1"
	svc := NewService(store)

	_, err := svc.Submit(context.Background(), "emp-1", SubmitInput{KPIID: "kpi-1"})
	if !errors.Is(err, ErrKPINotFound) {
		t.Fatalf("error = %v, want ErrKPINotFound", err)
	}
}

func TestSubmitRejectsOutOfRangeAndWrongShape(t *testing.T) {
	store := newFakeStore()
	store.schemas["kpi-1"] = testSchema()
	store.divisions["emp-1"] = "div-1"
	svc := NewService(store)

	cases := [][]AnswerInput{
		{{QuestionID: "q1", Numeric: floatPtr(6)}, {QuestionID: "q2", Numeric: floatPtr(50)}},
		{{QuestionID: "q1", Numeric: floatPtr(3)}, {QuestionID: "q2", Numeric: floatPtr(101)}},
		{{QuestionID: "q1", Text: "four"}, {QuestionID: "q2", Numeric: floatPtr(50)}},
		{{QuestionID: "q1", Numeric: floatPtr(3)}, {QuestionID: "q2", Numeric: floatPtr(50)}, {QuestionID: "q3", Numeric: floatPtr(1)}},
	}
	for i, answers := range cases {
		_, err := svc.Submit(context.Background(), "emp-1", SubmitInput{KPIID: "kpi-1", Answers: answers})
		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("case %d: error = %v, want ValidationError", i, err)
		}
	}
	if len(store.submissions) != 0 {
		t.Fatal("invalid submissions must not be persisted")
	}
}

func TestSubmitDropsAnswersOutsideSchema(t *testing.T) {
	store := newFakeStore()
	store.schemas["kpi-1"] = testSchema()
	store.divisions["emp-1"] = "div-1"
	svc := NewService(store)

	_, err := svc.Submit(context.Background(), "emp-1", SubmitInput{
		KPIID: "kpi-1",
		Answers: []AnswerInput{
			{QuestionID: "q1", Numeric: floatPtr(4)},
			{QuestionID: "q2", Numeric: floatPtr(70)},
			{QuestionID: "ghost", Numeric: floatPtr(999)},
		},
	})
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	for _, answer := range store.submissions[0].Answers {
		if answer.QuestionID == "ghost" {
			t.Fatal("answer for unknown question must be dropped before persistence")
		}
	}
}

func TestSaveDraftSkipsValidation(t *testing.T) {
	store := newFakeStore()
	store.schemas["kpi-1"] = testSchema()
	svc := NewService(store)

	result, err := svc.SaveDraft(context.Background(), "emp-1", DraftInput{
		KPIID:   "kpi-1",
		Answers: []AnswerInput{{QuestionID: "q1", Numeric: floatPtr(2)}},
	})
	if err != nil {
		t.Fatalf("SaveDraft error: %v", err)
	}
	if result.Status != StatusDraft {
		t.Fatalf("status = %q, want draft", result.Status)
	}
	if len(store.drafts) != 1 {
		t.Fatalf("expected one draft write, got %d", len(store.drafts))
	}
	if len(store.recomputes) != 0 {
		t.Fatal("drafts must not trigger period recomputation")
	}
}

func TestReviewOnlyFromSubmitted(t *testing.T) {
	store := newFakeStore()
	store.details["a-draft"] = Detail{Assessment: Assessment{ID: "a-draft", Status: StatusDraft}}
	store.details["a-reviewed"] = Detail{Assessment: Assessment{ID: "a-reviewed", Status: StatusReviewed}}
	store.details["a-submitted"] = Detail{Assessment: Assessment{ID: "a-submitted", Status: StatusSubmitted}}
	svc := NewService(store)

	if err := svc.Review(context.Background(), "a-draft", "note"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("review draft: error = %v, want ErrInvalidState", err)
	}
	if err := svc.Review(context.Background(), "a-reviewed", "note"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("review reviewed: error = %v, want ErrInvalidState", err)
	}
	if err := svc.Review(context.Background(), "a-missing", "note"); !errors.Is(err, ErrAssessmentNotFound) {
		t.Fatalf("review missing: error = %v, want ErrAssessmentNotFound", err)
	}
	if err := svc.Review(context.Background(), "a-submitted", "note"); err != nil {
		t.Fatalf("review submitted: %v", err)
	}
}

func TestGetDetailScopesEmployees(t *testing.T) {
	store := newFakeStore()
	score := 87.5
	store.details["a-1"] = Detail{Assessment: Assessment{ID: "a-1", EmployeeID: "emp-1", Status: StatusSubmitted, TotalScore: &score}}
	svc := NewService(store)

	detail, err := svc.GetDetail(context.Background(), "a-1", "emp-1", auth.RoleEmployee)
	if err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if detail.Grade != "B+" {
		t.Fatalf("grade = %q, want B+", detail.Grade)
	}

	if _, err := svc.GetDetail(context.Background(), "a-1", "emp-2", auth.RoleEmployee); !errors.Is(err, ErrAssessmentNotFound) {
		t.Fatalf("foreign read: error = %v, want ErrAssessmentNotFound", err)
	}

	if _, err := svc.GetDetail(context.Background(), "a-1", "mgr-1", auth.RoleManager); err != nil {
		t.Fatalf("manager read: %v", err)
	}
}

func TestRecomputeRejectsMalformedLabel(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	_, _, err := svc.Recompute(context.Background(), "emp-1", "kpi-1", "not-a-period")
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("error = %v, want ValidationError", err)
	}
	if len(store.recomputes) != 0 {
		t.Fatal("malformed label must not reach the store")
	}

	if _, _, err := svc.Recompute(context.Background(), "emp-1", "kpi-1", "2024-Q2"); err != nil {
		t.Fatalf("Recompute error: %v", err)
	}
}
