// Package access decides whether a user may act on a project or design.
package access

import (
	"github.com/amansoomro062/codesign/internal/modules/model"
	"github.com/google/uuid"
)

type Member struct {
	UserID uuid.UUID
	Role   model.Role
}

// Resource is the access-relevant view of a project or design. Owners pass
// every check; members pass when their role is at least the required one.
type Resource struct {
	Owners  []uuid.UUID
	Members []Member
}

// CanAccess is a pure predicate with no side effects.
func CanAccess(principal uuid.UUID, res Resource, min model.Role) bool {
	if principal == uuid.Nil {
		return false
	}
	for _, o := range res.Owners {
		if o == principal {
			return true
		}
	}
	for _, m := range res.Members {
		if m.UserID == principal {
			return m.Role.AtLeast(min)
		}
	}
	return false
}

func ForProject(p *model.Project) Resource {
	members := make([]Member, 0, len(p.Collaborators))
	for _, c := range p.Collaborators {
		members = append(members, Member{UserID: c.UserID, Role: c.Role})
	}
	return Resource{Owners: []uuid.UUID{p.OwnerID}, Members: members}
}

// ForDesign derives design access from the parent project only: the design
// creator and the project owner are owners, the project collaborators are
// members. The design's own collaborator list is not consulted.
func ForDesign(d *model.Design, parent *model.Project) Resource {
	res := ForProject(parent)
	if d.CreatorID != parent.OwnerID {
		res.Owners = append(res.Owners, d.CreatorID)
	}
	return res
}

// IsProjectOwner reports exclusive ownership, used for deletes.
func IsProjectOwner(principal uuid.UUID, p *model.Project) bool {
	return principal != uuid.Nil && p.OwnerID == principal
}

// CanDeleteDesign allows the design creator and the project owner.
func CanDeleteDesign(principal uuid.UUID, d *model.Design, parent *model.Project) bool {
	return principal != uuid.Nil && (d.CreatorID == principal || parent.OwnerID == principal)
}
