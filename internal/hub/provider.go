package hub

import (
	"context"
	"errors"
)

// Provider is the external capability collaborator ("hub"). It answers
// whether the caller holds a capability over a user or an org unit, and which
// offices the caller currently occupies. A zero office or any transport-level
// failure is treated as capability denied; the engine never retries.
type Provider interface {
	// ResolveToken maps an opaque bearer credential to a member ID.
	ResolveToken(ctx context.Context, token string) (int64, error)

	// HasOverUser returns the ID of the office granting the caller any of
	// the given roles over the target user, or ErrDenied.
	HasOverUser(ctx context.Context, userID int64, roles ...Role) (int64, error)

	// HasOverOrgUnit is HasOverUser scoped to an org unit instead.
	HasOverOrgUnit(ctx context.Context, orgUnit int64, roles ...Role) (int64, error)

	// Offices lists the IDs of the offices the caller currently holds.
	Offices(ctx context.Context) ([]int64, error)
}

var (
	ErrDenied          = errors.New("capability_denied")
	ErrUnauthenticated = errors.New("unauthenticated")
)

// RootOrgUnit is the organization-wide unit broad listing capabilities are
// checked against.
const RootOrgUnit int64 = 1
