package assessment

import "testing"

func TestBuildPeriodResult(t *testing.T) {
	result, ok := BuildPeriodResult("emp-1", "kpi-1", "2024-03", []float64{80, 90})
	if !ok {
		t.Fatal("expected a result for two scores")
	}
	if result.AvgScore != 85 || result.TotalScore != 170 || result.Count != 2 {
		t.Fatalf("got avg=%v total=%v count=%d, want 85/170/2", result.AvgScore, result.TotalScore, result.Count)
	}
	if result.Grade != "B+" {
		t.Fatalf("grade = %q, want B+", result.Grade)
	}
	if result.EmployeeID != "emp-1" || result.KPIID != "kpi-1" || result.Period != "2024-03" {
		t.Fatalf("identity fields not carried through: %+v", result)
	}
}

func TestBuildPeriodResultEmpty(t *testing.T) {
	if _, ok := BuildPeriodResult("emp-1", "kpi-1", "2024-03", nil); ok {
		t.Fatal("expected ok=false for zero qualifying assessments")
	}
}

func TestBuildPeriodResultDeterministic(t *testing.T) {
	scores := []float64{72.5, 88, 91.25}
	first, _ := BuildPeriodResult("emp-1", "kpi-1", "2024-Q1", scores)
	second, _ := BuildPeriodResult("emp-1", "kpi-1", "2024-Q1", scores)
	if first != second {
		t.Fatalf("same inputs produced different rollups: %+v vs %+v", first, second)
	}
}
