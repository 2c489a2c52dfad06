package kpihandler

import (
	"strings"
	"testing"

	"kpitrack/internal/domain/kpi"
)

func validPayload() kpiRequest {
	return kpiRequest{
		DivisionID: "div-1",
		Name:       "Delivery Quality",
		Period:     "monthly",
		Weight:     100,
		Questions: []kpi.QuestionInput{
			{Prompt: "On-time delivery", AnswerType: kpi.AnswerScale1To5, Weight: 60, Position: 1, Mandatory: true},
			{Prompt: "Highlights", AnswerType: kpi.AnswerFreeText, Weight: 0, Position: 2},
		},
	}
}

func TestValidateAcceptsWellFormedPayload(t *testing.T) {
	h := &Handler{}
	if v := h.validate(validPayload()); v.HasIssues() {
		t.Fatalf("expected no issues, got %v", v.Issues())
	}
}

func TestValidateEnforcesNameLength(t *testing.T) {
	h := &Handler{}

	short := validPayload()
	short.Name = "KPI"
	if v := h.validate(short); !v.HasIssues() {
		t.Fatal("expected issue for a 3-character name")
	}

	long := validPayload()
	long.Name = strings.Repeat("x", 201)
	if v := h.validate(long); !v.HasIssues() {
		t.Fatal("expected issue for a 201-character name")
	}

	edge := validPayload()
	edge.Name = strings.Repeat("x", 200)
	if v := h.validate(edge); v.HasIssues() {
		t.Fatalf("expected 200-character name to pass, got %v", v.Issues())
	}
}

func TestValidateEnforcesWeightRange(t *testing.T) {
	h := &Handler{}

	for _, weight := range []int{0, -5, 101} {
		payload := validPayload()
		payload.Weight = weight
		if v := h.validate(payload); !v.HasIssues() {
			t.Fatalf("expected issue for kpi weight %d", weight)
		}
	}

	payload := validPayload()
	payload.Questions[0].Weight = 101
	if v := h.validate(payload); !v.HasIssues() {
		t.Fatal("expected issue for question weight 101")
	}

	payload = validPayload()
	payload.Questions[0].Weight = 0
	if v := h.validate(payload); !v.HasIssues() {
		t.Fatal("expected issue for scored question weight 0")
	}
}

func TestValidateAllowsZeroWeightFreeText(t *testing.T) {
	h := &Handler{}
	payload := validPayload()
	if v := h.validate(payload); v.HasIssues() {
		t.Fatalf("free text question with weight 0 should pass, got %v", v.Issues())
	}
}
