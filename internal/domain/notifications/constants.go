package notifications

const (
	TypeAssessmentSubmitted = "assessment_submitted"
	TypeAssessmentReviewed  = "assessment_reviewed"
	TypeKPIAssigned         = "kpi_assigned"
)
