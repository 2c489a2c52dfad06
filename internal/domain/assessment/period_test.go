package assessment

import (
	"testing"
	"time"

	"kpitrack/internal/domain/kpi"
)

func TestPeriodLabel(t *testing.T) {
	date := time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC)

	if got := PeriodLabel(date, kpi.PeriodMonthly); got != "2024-03" {
		t.Fatalf("monthly label = %q, want 2024-03", got)
	}
	if got := PeriodLabel(date, kpi.PeriodQuarterly); got != "2024-Q1" {
		t.Fatalf("quarterly label = %q, want 2024-Q1", got)
	}
	if got := PeriodLabel(date, kpi.PeriodYearly); got != "2024" {
		t.Fatalf("yearly label = %q, want 2024", got)
	}

	december := time.Date(2024, time.December, 31, 23, 59, 59, 0, time.UTC)
	if got := PeriodLabel(december, kpi.PeriodQuarterly); got != "2024-Q4" {
		t.Fatalf("quarterly label = %q, want 2024-Q4", got)
	}
}

func TestPeriodWindow(t *testing.T) {
	cases := []struct {
		label string
		start time.Time
		end   time.Time
	}{
		{"2024-03", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-12", time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-Q2", time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)},
		{"2024-Q4", time.Date(2024, 10, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"2024", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, c := range cases {
		start, end, err := PeriodWindow(c.label)
		if err != nil {
			t.Fatalf("PeriodWindow(%q) error: %v", c.label, err)
		}
		if !start.Equal(c.start) || !end.Equal(c.end) {
			t.Fatalf("PeriodWindow(%q) = [%v, %v), want [%v, %v)", c.label, start, end, c.start, c.end)
		}
	}
}

func TestPeriodWindowRejectsMalformedLabels(t *testing.T) {
	for _, label := range []string{"", "banana", "2024-13", "2024-00", "2024-Q5", "2024-Q0", "-03", "0-01"} {
		if _, _, err := PeriodWindow(label); err == nil {
			t.Fatalf("PeriodWindow(%q) succeeded, want error", label)
		}
	}
}

func TestPeriodLabelRoundTripsThroughWindow(t *testing.T) {
	date := time.Date(2024, time.August, 20, 14, 30, 0, 0, time.UTC)
	for _, granularity := range []kpi.Period{kpi.PeriodMonthly, kpi.PeriodQuarterly, kpi.PeriodYearly} {
		label := PeriodLabel(date, granularity)
		start, end, err := PeriodWindow(label)
		if err != nil {
			t.Fatalf("PeriodWindow(%q) error: %v", label, err)
		}
		if date.Before(start) || !date.Before(end) {
			t.Fatalf("date %v outside its own %s window [%v, %v)", date, granularity, start, end)
		}
	}
}
