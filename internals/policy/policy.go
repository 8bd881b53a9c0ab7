package policy

// Capability predicates. Each is a flat rule list evaluated first-match;
// the admin rule always comes first.

// CanUploadFiles gates adding documents to a project.
func CanUploadFiles(a Actor, p ProjectRef) bool {
	if a.IsAdmin() {
		return true
	}
	if !a.Authenticated {
		return false
	}
	if a.ID == p.CreatedBy {
		return true
	}
	if p.HasMember(a.ID) {
		return true
	}
	if a.IsChefDEquipe() && a.ID == p.CreatedBy {
		return true
	}
	return false
}

// CanEditProject gates metadata updates.
func CanEditProject(a Actor, p ProjectRef) bool {
	if a.IsAdmin() {
		return true
	}
	if !a.Authenticated {
		return false
	}
	if a.ID == p.CreatedBy {
		return true
	}
	if a.IsChefDEquipe() && a.ID == p.CreatedBy {
		return true
	}
	return false
}

// CanDeleteProject gates direct destroy. For non-admins the project must
// not be validated; a validated project only leaves through an approved
// deletion request.
func CanDeleteProject(a Actor, p ProjectRef) bool {
	if a.IsAdmin() {
		return true
	}
	if !a.Authenticated {
		return false
	}
	if a.ID == p.CreatedBy && !p.IsValidated {
		return true
	}
	if a.IsChefDEquipe() && a.ID == p.CreatedBy && !p.IsValidated {
		return true
	}
	return false
}

// CanRequestDeletion is the exact complement of CanDeleteProject on
// is_validated for non-admin creators.
func CanRequestDeletion(a Actor, p ProjectRef) bool {
	if a.IsAdmin() {
		return true
	}
	if !a.Authenticated {
		return false
	}
	if a.ID == p.CreatedBy && p.IsValidated {
		return true
	}
	if a.IsChefDEquipe() && a.ID == p.CreatedBy && p.IsValidated {
		return true
	}
	return false
}

// CanMutateMembers is deliberately coarse: any authenticated caller may
// add or remove members (the default action fallthrough).
func CanMutateMembers(a Actor, p ProjectRef) bool {
	if a.IsAdmin() {
		return true
	}
	return a.Authenticated
}

// CanEditDocument gates document metadata updates.
func CanEditDocument(a Actor, d DocumentRef) bool {
	if a.IsAdmin() {
		return true
	}
	if !a.Authenticated {
		return false
	}
	if a.ID == d.Project.CreatedBy {
		return true
	}
	if a.ID == d.UploadedBy {
		return true
	}
	if a.IsChefDEquipe() && a.ID == d.Project.CreatedBy {
		return true
	}
	return false
}

// CanDeleteDocument shares the edit rule set.
func CanDeleteDocument(a Actor, d DocumentRef) bool {
	return CanEditDocument(a, d)
}

// CanViewDocument: membership grants visibility only to public
// documents; a private document is visible to its uploader, the project
// creator, or an admin.
func CanViewDocument(a Actor, d DocumentRef) bool {
	if a.IsAdmin() {
		return true
	}
	if !a.Authenticated {
		return false
	}
	if d.IsPublic && d.Project.HasMember(a.ID) {
		return true
	}
	if a.ID == d.Project.CreatedBy {
		return true
	}
	if a.ID == d.UploadedBy {
		return true
	}
	return false
}

// CanReviewDeletion gates approve/reject on deletion requests. Strictly
// admin or platform superuser, independent of project roles.
func CanReviewDeletion(a Actor) bool {
	return a.IsAdmin()
}

// CanManageUsers gates role updates and other admin user operations.
func CanManageUsers(a Actor) bool {
	return a.IsAdmin()
}

// CanEditSiteContent is staff-gated, matching the platform flag rather
// than the profile role.
func CanEditSiteContent(a Actor) bool {
	if a.IsAdmin() {
		return true
	}
	return a.Authenticated && a.IsStaff
}
