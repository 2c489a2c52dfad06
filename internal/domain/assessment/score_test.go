package assessment

import (
	"math"
	"testing"

	"kpitrack/internal/domain/kpi"
)

func floatPtr(v float64) *float64 { return &v }

func question(id string, answerType kpi.AnswerType, weight int, mandatory bool) kpi.Question {
	return kpi.Question{ID: id, Prompt: "prompt " + id, AnswerType: answerType, Weight: weight, Mandatory: mandatory}
}

func TestScoreSingleScaleQuestion(t *testing.T) {
	questions := []kpi.Question{question("q1", kpi.AnswerScale1To5, 100, true)}

	got := Score([]AnswerInput{{QuestionID: "q1", Numeric: floatPtr(5)}}, questions)
	if got != 100 {
		t.Fatalf("Score(5 on scale_1_5) = %v, want 100", got)
	}

	got = Score([]AnswerInput{{QuestionID: "q1", Numeric: floatPtr(1)}}, questions)
	if got != 20 {
		t.Fatalf("Score(1 on scale_1_5) = %v, want 20", got)
	}
}

func TestScoreFreeTextExcludedFromDenominator(t *testing.T) {
	questions := []kpi.Question{
		question("q1", kpi.AnswerScale0To100, 10, true),
		question("q2", kpi.AnswerFreeText, 90, false),
	}
	answers := []AnswerInput{
		{QuestionID: "q1", Numeric: floatPtr(73)},
		{QuestionID: "q2", Text: "went fine"},
	}

	if got := Score(answers, questions); got != 73 {
		t.Fatalf("Score = %v, want 73 (free_text weight must not dilute the denominator)", got)
	}
}

func TestScoreWeightedAverage(t *testing.T) {
	questions := []kpi.Question{
		question("q1", kpi.AnswerScale1To5, 60, true),
		question("q2", kpi.AnswerScale0To100, 40, true),
	}
	answers := []AnswerInput{
		{QuestionID: "q1", Numeric: floatPtr(4)}, // 80
		{QuestionID: "q2", Numeric: floatPtr(50)},
	}

	want := (80.0*60 + 50.0*40) / 100
	if got := Score(answers, questions); math.Abs(got-want) > 1e-9 {
		t.Fatalf("Score = %v, want %v", got, want)
	}
}

func TestScoreIgnoresUnknownQuestionsAndMissingValues(t *testing.T) {
	questions := []kpi.Question{question("q1", kpi.AnswerScale1To5, 50, true)}
	answers := []AnswerInput{
		{QuestionID: "q1", Numeric: floatPtr(3)},
		{QuestionID: "ghost", Numeric: floatPtr(5)},
		{QuestionID: "q1", Numeric: nil},
	}

	if got := Score(answers, questions); got != 60 {
		t.Fatalf("Score = %v, want 60", got)
	}
}

func TestScoreAllFreeTextIsZero(t *testing.T) {
	questions := []kpi.Question{question("q1", kpi.AnswerFreeText, 100, true)}
	answers := []AnswerInput{{QuestionID: "q1", Text: "no numbers here"}}

	if got := Score(answers, questions); got != 0 {
		t.Fatalf("Score = %v, want 0 for an all free_text schema", got)
	}
}

func TestScoreStaysInBounds(t *testing.T) {
	questions := []kpi.Question{
		question("q1", kpi.AnswerScale1To5, 7, true),
		question("q2", kpi.AnswerScale0To100, 13, true),
		question("q3", kpi.AnswerScale1To5, 29, true),
	}
	cases := [][]AnswerInput{
		{{QuestionID: "q1", Numeric: floatPtr(5)}, {QuestionID: "q2", Numeric: floatPtr(100)}, {QuestionID: "q3", Numeric: floatPtr(5)}},
		{{QuestionID: "q1", Numeric: floatPtr(1)}, {QuestionID: "q2", Numeric: floatPtr(0)}, {QuestionID: "q3", Numeric: floatPtr(1)}},
		{{QuestionID: "q1", Numeric: floatPtr(2.5)}, {QuestionID: "q3", Numeric: floatPtr(4)}},
	}
	for i, answers := range cases {
		got := Score(answers, questions)
		if got < 0 || got > 100 {
			t.Fatalf("case %d: Score = %v, want within [0, 100]", i, got)
		}
	}
}
