// Package ownership resolves who owns a package and what a given
// caller may do with it.
package ownership

import (
	"fmt"

	"stowage.sh/core/rbac"
	"stowage.sh/core/registry/db"
	"stowage.sh/core/registry/models"
)

type Resolver struct {
	enforcer *rbac.Enforcer
}

func NewResolver(enforcer *rbac.Enforcer) *Resolver {
	return &Resolver{enforcer: enforcer}
}

// ResolveOwners reads the current owner set of a package. The Execer
// lets callers read under their own transaction when the answer has to
// be consistent with other reads.
func (r *Resolver) ResolveOwners(e db.Execer, packageID int64) ([]models.Owner, error) {
	return db.GetOwners(e, packageID)
}

// EffectiveRights computes the caller's permission level against an
// owner set: Full for an individual owner, Publish for a member of an
// owning group, None otherwise. Full and Publish never combine; an
// individual owner wins regardless of group memberships.
func (r *Resolver) EffectiveRights(requester models.Requester, owners []models.Owner) (models.Rights, error) {
	best := models.RightsNone
	for _, owner := range owners {
		switch owner.Kind {
		case models.OwnerKindUser:
			if owner.Account == requester.Account {
				return models.RightsFull, nil
			}
		case models.OwnerKindGroup:
			member, err := r.enforcer.IsGroupMember(owner.Account, requester.Account)
			if err != nil {
				return models.RightsNone, fmt.Errorf("failed to check group membership: %w", err)
			}
			if member {
				best = models.RightsPublish
			}
		}
	}

	return best, nil
}
