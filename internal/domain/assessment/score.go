package assessment

import "kpitrack/internal/domain/kpi"

// Score computes the weighted average of the submitted answers on a 0-100
// scale. Free-text questions contribute nothing and their weight is excluded
// from the denominator; answers referencing questions outside the schema and
// answers without a numeric value are ignored.
func Score(answers []AnswerInput, questions []kpi.Question) float64 {
	byID := make(map[string]kpi.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	var weightedSum, weightSum float64
	for _, answer := range answers {
		question, ok := byID[answer.QuestionID]
		if !ok || answer.Numeric == nil {
			continue
		}

		var normalized float64
		switch question.AnswerType {
		case kpi.AnswerScale1To5:
			normalized = *answer.Numeric / 5 * 100
		case kpi.AnswerScale0To100:
			normalized = *answer.Numeric
		case kpi.AnswerFreeText:
			continue
		default:
			continue
		}

		weightedSum += normalized * float64(question.Weight)
		weightSum += float64(question.Weight)
	}

	if weightSum <= 0 {
		return 0
	}
	return weightedSum / weightSum
}
