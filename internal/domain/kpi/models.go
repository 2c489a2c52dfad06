package kpi

import "time"

type KPI struct {
	ID          string     `json:"id"`
	DivisionID  string     `json:"divisionId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Period      Period     `json:"period"`
	Weight      int        `json:"weight"`
	Active      bool       `json:"active"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Questions   []Question `json:"questions,omitempty"`
}

type Question struct {
	ID         string     `json:"id"`
	KPIID      string     `json:"kpiId"`
	Prompt     string     `json:"prompt"`
	AnswerType AnswerType `json:"answerType"`
	Weight     int        `json:"weight"`
	Position   int        `json:"position"`
	Mandatory  bool       `json:"mandatory"`
}

// QuestionInput is the create/update payload shape for one question.
type QuestionInput struct {
	Prompt     string     `json:"prompt"`
	AnswerType AnswerType `json:"answerType"`
	Weight     int        `json:"weight"`
	Position   int        `json:"position"`
	Mandatory  bool       `json:"mandatory"`
}
