package creator

import (
	"dropforge/pkg/domain"
	dErrors "dropforge/pkg/domain-errors"
)

// Creator is the aggregate root for a creator identity.
//
// Invariants:
//   - Account is unique across all creators and never changes
//   - ID is assigned once by the registry, starting at 1 (0 means absent)
//   - Deactivation is one-way: there is no reactivation operation
//   - Counters only grow
//
// Deactivation is an immediate enforcement boundary: an inactive creator's
// drops stop minting even though the drop records themselves are untouched.
// The mint engine checks Active at mint time rather than cascading state into
// every drop.
type Creator struct {
	ID                domain.CreatorID `json:"id"`
	Account           domain.Account   `json:"account"`
	HandleFingerprint domain.Hash      `json:"handle_fingerprint"`
	Active            bool             `json:"active"`
	DropsCreated      uint64           `json:"drops_created"`
	UnitsMinted       uint64           `json:"units_minted"`
	RegisteredAt      uint64           `json:"registered_at"`
}

// CanDeactivate checks the one-way transition to inactive.
func (c *Creator) CanDeactivate() error {
	if !c.Active {
		return dErrors.NewKind(dErrors.CodeFailedPrecondition, dErrors.KindCreatorInactive, "creator is already inactive")
	}
	return nil
}

// ApplyDeactivation transitions the creator to inactive. Call CanDeactivate
// first.
func (c *Creator) ApplyDeactivation() {
	c.Active = false
}

// RequireOwner verifies that actor is the creator's registered account.
func (c *Creator) RequireOwner(actor domain.Account) error {
	if actor != c.Account {
		return dErrors.NewKind(dErrors.CodeUnauthorized, dErrors.KindNotOwner, "actor is not the creator's account")
	}
	return nil
}

// NewCreator builds a fresh record; the store assigns the ID.
func NewCreator(account domain.Account, handle domain.Hash, height uint64) (*Creator, error) {
	if account.IsZero() {
		return nil, dErrors.NewKind(dErrors.CodeInvalidInput, dErrors.KindZeroAddress, "creator account is required")
	}
	return &Creator{
		Account:           account,
		HandleFingerprint: handle,
		Active:            true,
		RegisteredAt:      height,
	}, nil
}
