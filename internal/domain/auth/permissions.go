package auth

const (
	RoleAdmin    = "admin"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

const (
	PermDivisionsRead        = "core.divisions.read"
	PermDivisionsWrite       = "core.divisions.write"
	PermUsersRead            = "core.users.read"
	PermUsersWrite           = "core.users.write"
	PermKPIRead              = "kpi.read"
	PermKPIWrite             = "kpi.write"
	PermAssessmentsSubmit    = "assessments.submit"
	PermAssessmentsReview    = "assessments.review"
	PermAssessmentsRecompute = "assessments.recompute"
	PermReportsRead          = "reports.read"
	PermNotificationsRead    = "notifications.read"
	PermAuditRead            = "audit.read"
)

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermKPIRead,
		PermAssessmentsSubmit,
		PermNotificationsRead,
	},
	RoleManager: {
		PermDivisionsRead,
		PermUsersRead,
		PermKPIRead,
		PermKPIWrite,
		PermAssessmentsSubmit,
		PermAssessmentsReview,
		PermReportsRead,
		PermNotificationsRead,
	},
	RoleAdmin: {
		PermDivisionsRead,
		PermDivisionsWrite,
		PermUsersRead,
		PermUsersWrite,
		PermKPIRead,
		PermKPIWrite,
		PermAssessmentsSubmit,
		PermAssessmentsReview,
		PermAssessmentsRecompute,
		PermReportsRead,
		PermNotificationsRead,
		PermAuditRead,
	},
}

// RoleHasPermission consults the static role map; roles are a closed set.
func RoleHasPermission(role, permission string) bool {
	for _, candidate := range RolePermissions[role] {
		if candidate == permission {
			return true
		}
	}
	return false
}

func ValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}
