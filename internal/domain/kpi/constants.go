package kpi

// AnswerType is the closed set of question answer kinds. The score
// calculator switches over it exhaustively; free-text answers never
// contribute to the numeric score.
type AnswerType string

const (
	AnswerScale1To5   AnswerType = "scale_1_5"
	AnswerScale0To100 AnswerType = "scale_0_100"
	AnswerFreeText    AnswerType = "free_text"
)

func ValidAnswerType(value string) bool {
	switch AnswerType(value) {
	case AnswerScale1To5, AnswerScale0To100, AnswerFreeText:
		return true
	}
	return false
}

// Period is a KPI's aggregation granularity.
type Period string

const (
	PeriodMonthly   Period = "monthly"
	PeriodQuarterly Period = "quarterly"
	PeriodYearly    Period = "yearly"
)

func ValidPeriod(value string) bool {
	switch Period(value) {
	case PeriodMonthly, PeriodQuarterly, PeriodYearly:
		return true
	}
	return false
}
