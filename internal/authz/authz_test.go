package authz

import (
	"context"
	"errors"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ownedThing struct {
	owner uint
}

func (o ownedThing) OwnerID() uint { return o.owner }

func staffSet(ids ...uint) StaffChecker {
	set := map[uint]bool{}
	for _, id := range ids {
		set[id] = true
	}
	return func(_ context.Context, viewerID uint) (bool, error) {
		return set[viewerID], nil
	}
}

func TestDecide(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		policy   Policy
		viewerID uint
		owner    uint
		want     Decision
	}{
		{
			name:     "anonymous viewer",
			policy:   Policy{DenialMode: DenialForbidden},
			viewerID: 0,
			owner:    1,
			want:     DecisionDeniedUnauthenticated,
		},
		{
			name:     "owner",
			policy:   Policy{DenialMode: DenialForbidden},
			viewerID: 1,
			owner:    1,
			want:     DecisionAllowed,
		},
		{
			name:     "authenticated non-owner",
			policy:   Policy{DenialMode: DenialForbidden},
			viewerID: 2,
			owner:    1,
			want:     DecisionDeniedNotOwner,
		},
		{
			name:     "staff without override is still denied",
			policy:   Policy{StaffOverride: false, DenialMode: DenialForbidden},
			viewerID: 9,
			owner:    1,
			want:     DecisionDeniedNotOwner,
		},
		{
			name:     "staff with override is allowed",
			policy:   Policy{StaffOverride: true, DenialMode: DenialForbidden},
			viewerID: 9,
			owner:    1,
			want:     DecisionAllowed,
		},
		{
			name:     "override enabled but viewer is not staff",
			policy:   Policy{StaffOverride: true, DenialMode: DenialForbidden},
			viewerID: 2,
			owner:    1,
			want:     DecisionDeniedNotOwner,
		},
		{
			name: "anonymous is never granted the staff override",
			// viewer 0 must short-circuit before any staff lookup
			policy:   Policy{StaffOverride: true, DenialMode: DenialForbidden},
			viewerID: 0,
			owner:    1,
			want:     DecisionDeniedUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := New(tt.policy, staffSet(9))
			got, err := a.Decide(ctx, tt.viewerID, ownedThing{owner: tt.owner})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecideStaffLookupError(t *testing.T) {
	a := New(Policy{StaffOverride: true, DenialMode: DenialForbidden},
		func(context.Context, uint) (bool, error) {
			return false, errors.New("db down")
		})

	got, err := a.Decide(context.Background(), 2, ownedThing{owner: 1})
	assert.Equal(t, DecisionDeniedNotOwner, got)
	assert.True(t, models.IsCode(err, models.CodeInternal))
}

func TestAuthorizeErrorMapping(t *testing.T) {
	ctx := context.Background()
	a := New(Policy{DenialMode: DenialForbidden}, nil)

	err := a.Authorize(ctx, 0, ownedThing{owner: 1}, ActionEdit, "post")
	assert.True(t, models.IsCode(err, models.CodeUnauthenticated))

	err = a.Authorize(ctx, 2, ownedThing{owner: 1}, ActionDelete, "post")
	assert.True(t, models.IsCode(err, models.CodeForbidden))

	err = a.Authorize(ctx, 1, ownedThing{owner: 1}, ActionEdit, "post")
	assert.NoError(t, err)
}

func TestPolicyIsFixedAtConstruction(t *testing.T) {
	policy := Policy{StaffOverride: true, DenialMode: DenialRedirect}
	a := New(policy, staffSet())
	assert.Equal(t, policy, a.Policy())
}
