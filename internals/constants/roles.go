package constants

import "fmt"

// Role values stored on users_profile.role
const (
	RoleMember      = "member"
	RoleAdmin       = "admin"
	RoleChefDEquipe = "chef_d_equipe"
)

// Error message templates for role gating
const (
	ErrOnlyAdminsCanAccess = "Only admins may access %s."
	ErrOnlyStaffCanAccess  = "Only staff may access %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorStaff(feature string) string {
	return fmt.Sprintf(ErrOnlyStaffCanAccess, feature)
}

// ==========================
// Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleMember,
		RoleAdmin,
		RoleChefDEquipe,
	}

	AdminOnly = []string{
		RoleAdmin,
	}

	TeamLeadAndAbove = []string{
		RoleChefDEquipe,
		RoleAdmin,
	}
)

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}
