package assessment

import (
	"context"
	"fmt"
	"time"

	"kpitrack/internal/domain/auth"
	"kpitrack/internal/domain/kpi"
)

// Service owns the assessment lifecycle: draft, submit (score + aggregate in
// one transaction) and review.
type Service struct {
	store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{store: store}
}

func (s *Service) Submit(ctx context.Context, employeeID string, in SubmitInput) (SubmitResult, error) {
	schema, err := s.store.KPISchema(ctx, in.KPIID)
	if err != nil {
		return SubmitResult{}, err
	}
	if !schema.Active {
		return SubmitResult{}, ErrKPINotFound
	}

	divisionID, err := s.store.EmployeeDivision(ctx, employeeID)
	if err != nil {
		return SubmitResult{}, err
	}
	if divisionID != schema.DivisionID {
		return SubmitResult{}, ErrCrossDivision
	}

	answers, err := normalizeAnswers(in.Answers, schema.Questions)
	if err != nil {
		return SubmitResult{}, err
	}
	if missing := missingMandatoryPrompts(answers, schema.Questions); len(missing) > 0 {
		return SubmitResult{}, &MissingMandatoryError{Prompts: missing}
	}

	now := time.Now()
	fillDate := in.FillDate
	if fillDate.IsZero() {
		fillDate = now
	}

	totalScore := Score(answers, schema.Questions)

	id, err := s.store.CreateSubmitted(ctx, Submission{
		EmployeeID:   employeeID,
		KPIID:        schema.KPIID,
		FillDate:     fillDate,
		SubmittedAt:  now,
		TotalScore:   totalScore,
		EmployeeNote: in.EmployeeNote,
		PeriodLabel:  PeriodLabel(fillDate, schema.Period),
		Answers:      answers,
	})
	if err != nil {
		return SubmitResult{}, err
	}

	return SubmitResult{
		AssessmentID: id,
		TotalScore:   totalScore,
		Grade:        Classify(totalScore),
		Status:       StatusSubmitted,
	}, nil
}

// SaveDraft creates a draft or fully replaces an existing one for the same
// (employee, kpi). No mandatory validation, no score, no aggregate.
func (s *Service) SaveDraft(ctx context.Context, employeeID string, in DraftInput) (DraftResult, error) {
	schema, err := s.store.KPISchema(ctx, in.KPIID)
	if err != nil {
		return DraftResult{}, err
	}

	id, err := s.store.SaveDraft(ctx, Draft{
		EmployeeID:   employeeID,
		KPIID:        schema.KPIID,
		FillDate:     time.Now(),
		EmployeeNote: in.EmployeeNote,
		Answers:      filterToSchema(in.Answers, schema.Questions),
	})
	if err != nil {
		return DraftResult{}, err
	}
	return DraftResult{AssessmentID: id, Status: StatusDraft}, nil
}

// Review transitions submitted → reviewed exactly once. It neither rescores
// nor re-aggregates: the submitted-to-date aggregate is status-stable across
// this transition.
func (s *Service) Review(ctx context.Context, assessmentID, managerNote string) error {
	return s.store.MarkReviewed(ctx, assessmentID, managerNote, time.Now())
}

// GetDetail scopes employees to their own rows; assessments owned by someone
// else come back as not-found rather than forbidden.
func (s *Service) GetDetail(ctx context.Context, assessmentID, requesterID, requesterRole string) (Detail, error) {
	restrict := ""
	if requesterRole == auth.RoleEmployee {
		restrict = requesterID
	}
	detail, err := s.store.GetDetail(ctx, assessmentID, restrict)
	if err != nil {
		return Detail{}, err
	}
	if detail.TotalScore != nil {
		detail.Grade = Classify(*detail.TotalScore)
	}
	return detail, nil
}

func (s *Service) MyHistory(ctx context.Context, employeeID string, limit, offset int) ([]HistoryItem, int, error) {
	items, total, err := s.store.ListHistory(ctx, employeeID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		if items[i].TotalScore != nil {
			items[i].Grade = Classify(*items[i].TotalScore)
		}
	}
	return items, total, nil
}

func (s *Service) ListPending(ctx context.Context, limit, offset int) ([]PendingItem, int, error) {
	return s.store.ListPending(ctx, limit, offset)
}

// Recompute rebuilds one period rollup from the current assessment set.
// Idempotent; zero qualifying assessments leave any existing row untouched.
func (s *Service) Recompute(ctx context.Context, employeeID, kpiID, periodLabel string) (PeriodResult, bool, error) {
	if _, _, err := PeriodWindow(periodLabel); err != nil {
		return PeriodResult{}, false, &ValidationError{Issues: []string{err.Error()}}
	}
	return s.store.RecomputePeriod(ctx, employeeID, kpiID, periodLabel)
}

// normalizeAnswers drops answers for questions outside the schema and checks
// each remaining answer against its question's type and range. The surviving
// answers carry exactly one populated value side.
func normalizeAnswers(answers []AnswerInput, questions []kpi.Question) ([]AnswerInput, error) {
	byID := make(map[string]kpi.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	var out []AnswerInput
	var issues []string
	for _, answer := range answers {
		question, ok := byID[answer.QuestionID]
		if !ok {
			continue
		}

		switch question.AnswerType {
		case kpi.AnswerScale1To5:
			if answer.Text != "" {
				issues = append(issues, fmt.Sprintf("question %q expects a numeric value", question.Prompt))
				continue
			}
			if answer.Numeric != nil && (*answer.Numeric < 1 || *answer.Numeric > 5) {
				issues = append(issues, fmt.Sprintf("question %q expects a value between 1 and 5", question.Prompt))
				continue
			}
		case kpi.AnswerScale0To100:
			if answer.Text != "" {
				issues = append(issues, fmt.Sprintf("question %q expects a numeric value", question.Prompt))
				continue
			}
			if answer.Numeric != nil && (*answer.Numeric < 0 || *answer.Numeric > 100) {
				issues = append(issues, fmt.Sprintf("question %q expects a value between 0 and 100", question.Prompt))
				continue
			}
		case kpi.AnswerFreeText:
			if answer.Numeric != nil {
				issues = append(issues, fmt.Sprintf("question %q expects a text value", question.Prompt))
				continue
			}
		}
		out = append(out, answer)
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}
	return out, nil
}

func filterToSchema(answers []AnswerInput, questions []kpi.Question) []AnswerInput {
	byID := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		byID[q.ID] = struct{}{}
	}
	var out []AnswerInput
	for _, answer := range answers {
		if _, ok := byID[answer.QuestionID]; ok {
			out = append(out, answer)
		}
	}
	return out
}

// missingMandatoryPrompts returns the prompts of mandatory questions absent
// from the answer set, in schema order.
func missingMandatoryPrompts(answers []AnswerInput, questions []kpi.Question) []string {
	answered := make(map[string]struct{}, len(answers))
	for _, answer := range answers {
		answered[answer.QuestionID] = struct{}{}
	}

	var missing []string
	for _, question := range questions {
		if !question.Mandatory {
			continue
		}
		if _, ok := answered[question.ID]; !ok {
			missing = append(missing, question.Prompt)
		}
	}
	return missing
}
