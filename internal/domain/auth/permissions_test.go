package auth

import "testing"

func TestRolePermissionsNotEmpty(t *testing.T) {
	for role, perms := range RolePermissions {
		if len(perms) == 0 {
			t.Fatalf("role %s has no permissions", role)
		}
	}
}

func TestRoleHasPermission(t *testing.T) {
	if !RoleHasPermission(RoleEmployee, PermAssessmentsSubmit) {
		t.Fatal("employees must be able to submit assessments")
	}
	if RoleHasPermission(RoleEmployee, PermAssessmentsReview) {
		t.Fatal("employees must not be able to review assessments")
	}
	if !RoleHasPermission(RoleManager, PermAssessmentsReview) {
		t.Fatal("managers must be able to review assessments")
	}
	if RoleHasPermission(RoleManager, PermAssessmentsRecompute) {
		t.Fatal("recompute is admin-only")
	}
	if RoleHasPermission("unknown", PermKPIRead) {
		t.Fatal("unknown role must have no permissions")
	}
}

func TestEveryRoleIsValid(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleManager, RoleEmployee} {
		if !ValidRole(role) {
			t.Fatalf("role %s not present in RolePermissions", role)
		}
	}
	if ValidRole("superuser") {
		t.Fatal("unexpected role accepted")
	}
}
