// Package authz decides whether a viewer may mutate an owned entity. The
// decision is made in exactly one place so handlers and services cannot
// disagree about who owns what.
package authz

import (
	"context"
	"fmt"

	"inkwell/internal/models"
	"inkwell/internal/observability"
)

// Action names a mutation being attempted on an owned entity.
type Action string

const (
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Decision is the outcome of an ownership check. Unauthenticated and NotOwner
// are distinct outcomes so the transport layer can challenge for credentials
// in one case and refuse in the other.
type Decision string

const (
	DecisionAllowed               Decision = "allowed"
	DecisionDeniedUnauthenticated Decision = "denied_unauthenticated"
	DecisionDeniedNotOwner        Decision = "denied_not_owner"
)

// DenialMode selects how a denial is surfaced at the HTTP boundary.
type DenialMode string

const (
	// DenialForbidden answers 401 or 403 depending on the decision.
	DenialForbidden DenialMode = "forbidden"
	// DenialRedirect answers 303 See Other, pointing an unauthenticated
	// viewer at login and a non-owner back at the entity.
	DenialRedirect DenialMode = "redirect"
)

// Policy is resolved once at startup and never re-derived per request.
type Policy struct {
	StaffOverride bool
	DenialMode    DenialMode
}

// Ownable is anything with a single owning account.
type Ownable interface {
	OwnerID() uint
}

// StaffChecker reports whether the given account has staff standing.
type StaffChecker func(ctx context.Context, viewerID uint) (bool, error)

// Authorizer applies one Policy to ownership checks.
type Authorizer struct {
	policy  Policy
	isStaff StaffChecker
}

// New builds an Authorizer. isStaff is only consulted when the policy enables
// the staff override; it may be nil otherwise.
func New(policy Policy, isStaff StaffChecker) *Authorizer {
	return &Authorizer{policy: policy, isStaff: isStaff}
}

// Policy returns the policy the authorizer was built with.
func (a *Authorizer) Policy() Policy {
	return a.policy
}

// Decide evaluates viewer against entity. Viewer ID 0 means anonymous.
// Ownership is compared by account ID, never by name or role.
func (a *Authorizer) Decide(ctx context.Context, viewerID uint, entity Ownable) (Decision, error) {
	if viewerID == 0 {
		return DecisionDeniedUnauthenticated, nil
	}
	if viewerID == entity.OwnerID() {
		return DecisionAllowed, nil
	}
	if a.policy.StaffOverride && a.isStaff != nil {
		staff, err := a.isStaff(ctx, viewerID)
		if err != nil {
			return DecisionDeniedNotOwner, models.NewInternalError(err)
		}
		if staff {
			return DecisionAllowed, nil
		}
	}
	return DecisionDeniedNotOwner, nil
}

// Authorize evaluates the viewer and converts a denial into the matching
// application error. entityName feeds metrics and error messages.
func (a *Authorizer) Authorize(ctx context.Context, viewerID uint, entity Ownable, action Action, entityName string) error {
	decision, err := a.Decide(ctx, viewerID, entity)
	observability.AuthzDecisions.WithLabelValues(entityName, string(action), string(decision)).Inc()
	if err != nil {
		return err
	}

	switch decision {
	case DecisionAllowed:
		return nil
	case DecisionDeniedUnauthenticated:
		return models.NewUnauthenticatedError("Authentication required")
	default:
		return models.NewForbiddenError(fmt.Sprintf("Only the author may %s this %s", action, entityName))
	}
}
