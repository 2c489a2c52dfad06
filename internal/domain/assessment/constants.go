package assessment

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusReviewed  = "reviewed"
)

// ReadPolicy names which assessment statuses a read path considers.
// The period aggregator uses PolicySubmittedToDate so a rollup never loses
// a row when review flips its status; dashboard-style reports use
// PolicyReviewedOnly. One write path, two read policies.
type ReadPolicy string

const (
	PolicySubmittedToDate ReadPolicy = "submitted_to_date"
	PolicyReviewedOnly    ReadPolicy = "reviewed_only"
)

func (p ReadPolicy) Statuses() []string {
	switch p {
	case PolicyReviewedOnly:
		return []string{StatusReviewed}
	default:
		return []string{StatusSubmitted, StatusReviewed}
	}
}
