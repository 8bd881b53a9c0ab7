package policy

import (
	"testing"

	"github.com/google/uuid"

	"laboissim_backend/internals/constants"
)

func member(id uuid.UUID) Actor {
	return Actor{ID: id, Role: constants.RoleMember, Authenticated: true}
}

func chef(id uuid.UUID) Actor {
	return Actor{ID: id, Role: constants.RoleChefDEquipe, Authenticated: true}
}

func admin(id uuid.UUID) Actor {
	return Actor{ID: id, Role: constants.RoleAdmin, Authenticated: true}
}

func superuser(id uuid.UUID) Actor {
	return Actor{ID: id, Role: constants.RoleMember, IsSuperuser: true, Authenticated: true}
}

func TestAdminAlwaysWins(t *testing.T) {
	creator := uuid.New()
	p := ProjectRef{ID: uuid.New(), CreatedBy: creator, IsValidated: true}
	d := DocumentRef{ID: uuid.New(), UploadedBy: creator, IsPublic: false, Project: p}

	for name, a := range map[string]Actor{
		"role admin": admin(uuid.New()),
		"superuser":  superuser(uuid.New()),
	} {
		checks := map[string]bool{
			"upload":       CanUploadFiles(a, p),
			"edit":         CanEditProject(a, p),
			"delete":       CanDeleteProject(a, p),
			"request":      CanRequestDeletion(a, p),
			"members":      CanMutateMembers(a, p),
			"doc edit":     CanEditDocument(a, d),
			"doc delete":   CanDeleteDocument(a, d),
			"doc view":     CanViewDocument(a, d),
			"review":       CanReviewDeletion(a),
			"manage users": CanManageUsers(a),
			"site content": CanEditSiteContent(a),
		}
		for op, allowed := range checks {
			if !allowed {
				t.Errorf("%s: %s should be permitted", name, op)
			}
		}
	}
}

func TestDeleteRequestComplementOnValidated(t *testing.T) {
	creator := uuid.New()
	a := member(creator)

	unvalidated := ProjectRef{ID: uuid.New(), CreatedBy: creator, IsValidated: false}
	if !CanDeleteProject(a, unvalidated) {
		t.Error("creator should delete an unvalidated project directly")
	}
	if CanRequestDeletion(a, unvalidated) {
		t.Error("creator should not request deletion of an unvalidated project")
	}

	validated := unvalidated
	validated.IsValidated = true
	if CanDeleteProject(a, validated) {
		t.Error("creator should not delete a validated project directly")
	}
	if !CanRequestDeletion(a, validated) {
		t.Error("creator should request deletion of a validated project")
	}
}

func TestChefDEquipeNeedsOwnership(t *testing.T) {
	creator := uuid.New()
	other := chef(uuid.New())
	p := ProjectRef{ID: uuid.New(), CreatedBy: creator, IsValidated: false}

	if CanEditProject(other, p) {
		t.Error("chef_d_equipe who is not the creator must not edit")
	}
	if CanDeleteProject(other, p) {
		t.Error("chef_d_equipe who is not the creator must not delete")
	}

	owning := chef(creator)
	if !CanEditProject(owning, p) {
		t.Error("chef_d_equipe creator should edit")
	}
	if !CanDeleteProject(owning, p) {
		t.Error("chef_d_equipe creator should delete an unvalidated project")
	}
}

func TestUploadRequiresMembershipOrOwnership(t *testing.T) {
	creator := uuid.New()
	teamMember := uuid.New()
	outsider := member(uuid.New())
	p := ProjectRef{ID: uuid.New(), CreatedBy: creator, Members: []uuid.UUID{teamMember}}

	if CanUploadFiles(outsider, p) {
		t.Error("outsider must not upload")
	}
	if !CanUploadFiles(member(teamMember), p) {
		t.Error("member should upload")
	}
	if !CanUploadFiles(member(creator), p) {
		t.Error("creator should upload")
	}
	if CanUploadFiles(Anonymous, p) {
		t.Error("anonymous must not upload")
	}
}

func TestPrivateDocumentVisibility(t *testing.T) {
	creator := uuid.New()
	uploader := uuid.New()
	teamMember := uuid.New()
	p := ProjectRef{ID: uuid.New(), CreatedBy: creator, Members: []uuid.UUID{teamMember, uploader}}

	private := DocumentRef{ID: uuid.New(), UploadedBy: uploader, IsPublic: false, Project: p}
	if CanViewDocument(member(teamMember), private) {
		t.Error("membership alone must not grant visibility to a private document")
	}
	if !CanViewDocument(member(uploader), private) {
		t.Error("uploader should view own private document")
	}
	if !CanViewDocument(member(creator), private) {
		t.Error("project creator should view a private document")
	}

	public := private
	public.IsPublic = true
	if !CanViewDocument(member(teamMember), public) {
		t.Error("member should view a public document")
	}
	if CanViewDocument(member(uuid.New()), public) {
		t.Error("non-member should not view via membership rule")
	}
}

func TestMembershipMutationIsAuthenticatedOnly(t *testing.T) {
	p := ProjectRef{ID: uuid.New(), CreatedBy: uuid.New()}
	if CanMutateMembers(Anonymous, p) {
		t.Error("anonymous must not mutate members")
	}
	if !CanMutateMembers(member(uuid.New()), p) {
		t.Error("any authenticated user may mutate members")
	}
}

func TestReviewDeletionIsAdminOnly(t *testing.T) {
	if CanReviewDeletion(member(uuid.New())) {
		t.Error("member must not review deletion requests")
	}
	if CanReviewDeletion(chef(uuid.New())) {
		t.Error("chef_d_equipe must not review deletion requests")
	}
	staff := Actor{ID: uuid.New(), Role: constants.RoleMember, IsStaff: true, Authenticated: true}
	if CanReviewDeletion(staff) {
		t.Error("staff flag alone must not review deletion requests")
	}
}
