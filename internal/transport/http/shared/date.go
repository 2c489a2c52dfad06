package shared

import (
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// ParseDate reads fill dates from request payloads. Plain YYYY-MM-DD is the
// documented form; full RFC3339 timestamps are accepted as well since browser
// clients tend to send those.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(dateLayout, value)
}
