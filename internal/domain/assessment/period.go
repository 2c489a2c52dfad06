package assessment

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"kpitrack/internal/domain/kpi"
)

// PeriodLabel buckets a date by the KPI's granularity: 2024-01, 2024-Q1 or
// 2024.
func PeriodLabel(date time.Time, granularity kpi.Period) string {
	year, month, _ := date.Date()
	switch granularity {
	case kpi.PeriodQuarterly:
		quarter := (int(month)-1)/3 + 1
		return fmt.Sprintf("%d-Q%d", year, quarter)
	case kpi.PeriodYearly:
		return strconv.Itoa(year)
	default:
		return fmt.Sprintf("%d-%02d", year, int(month))
	}
}

// PeriodWindow parses a period label into its half-open window
// [start, next period start).
func PeriodWindow(label string) (time.Time, time.Time, error) {
	parts := strings.SplitN(label, "-", 2)
	year, err := strconv.Atoi(parts[0])
	if err != nil || year <= 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid period label %q", label)
	}

	if len(parts) == 1 {
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0), nil
	}

	if strings.HasPrefix(parts[1], "Q") {
		quarter, err := strconv.Atoi(strings.TrimPrefix(parts[1], "Q"))
		if err != nil || quarter < 1 || quarter > 4 {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid period label %q", label)
		}
		start := time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 3, 0), nil
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid period label %q", label)
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0), nil
}
