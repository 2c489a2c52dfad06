package assessment

// BuildPeriodResult folds the total scores of every qualifying assessment in
// a period into the derived rollup. Returns false when no assessments
// qualify; callers then leave any existing PeriodResult untouched.
func BuildPeriodResult(employeeID, kpiID, periodLabel string, scores []float64) (PeriodResult, bool) {
	if len(scores) == 0 {
		return PeriodResult{}, false
	}

	var sum float64
	for _, score := range scores {
		sum += score
	}
	avg := sum / float64(len(scores))

	return PeriodResult{
		EmployeeID: employeeID,
		KPIID:      kpiID,
		Period:     periodLabel,
		AvgScore:   avg,
		TotalScore: sum,
		Count:      len(scores),
		Grade:      Classify(avg),
	}, true
}
