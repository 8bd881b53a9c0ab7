// Package policy is the authorization engine: pure predicates over a
// typed actor and small resource snapshots. No storage access and no
// logging happen here; decisions are reported through an AuditSink by
// the callers.
package policy

import (
	"github.com/google/uuid"

	"laboissim_backend/internals/constants"
)

// Actor is the normalized per-request identity. It is built once (by
// the auth middleware, or by a service from a user row + profile) and
// passed down; predicates never probe the database.
type Actor struct {
	ID            uuid.UUID
	IsStaff       bool
	IsSuperuser   bool
	Role          string
	Authenticated bool
}

// Anonymous is the actor for unauthenticated reads.
var Anonymous = Actor{}

// IsAdmin is the "admin always wins" check: a platform superuser counts
// as admin regardless of the stored role.
func (a Actor) IsAdmin() bool {
	return a.Authenticated && (a.IsSuperuser || a.Role == constants.RoleAdmin)
}

func (a Actor) IsChefDEquipe() bool {
	return a.Authenticated && a.Role == constants.RoleChefDEquipe
}

// ProjectRef is the slice of project state the predicates need.
type ProjectRef struct {
	ID          uuid.UUID
	CreatedBy   uuid.UUID
	IsValidated bool
	Members     []uuid.UUID
}

func (p ProjectRef) HasMember(id uuid.UUID) bool {
	for _, m := range p.Members {
		if m == id {
			return true
		}
	}
	return false
}

// DocumentRef is the slice of document state the predicates need,
// including the owning project's creator and members.
type DocumentRef struct {
	ID         uuid.UUID
	UploadedBy uuid.UUID
	IsPublic   bool
	Project    ProjectRef
}
