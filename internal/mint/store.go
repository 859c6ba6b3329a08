package mint

import (
	"context"

	"dropforge/pkg/domain"
)

// Store keeps the per-wallet mint bookkeeping the drop record does not carry:
// wallet counts, ordinal ownership, and each wallet's minted-drop index.
// Writers hold the drop lock, so increments never race for one drop.
type Store interface {
	// WalletCount returns how many units the wallet has minted from the drop.
	WalletCount(ctx context.Context, id domain.DropID, wallet domain.Account) (uint64, error)
	// AddWalletCount adds quantity to the wallet's count and returns the new
	// value.
	AddWalletCount(ctx context.Context, id domain.DropID, wallet domain.Account, quantity uint64) (uint64, error)
	// RecordOwnership assigns quantity sequential ordinals starting at
	// firstOrdinal to the wallet.
	RecordOwnership(ctx context.Context, id domain.DropID, firstOrdinal, quantity uint64, wallet domain.Account) error
	// OwnerOf resolves the wallet that minted one ordinal.
	// Returns sentinel.ErrNotFound for an unminted ordinal.
	OwnerOf(ctx context.Context, id domain.DropID, ordinal uint64) (domain.Account, error)
	// AppendMintedDrop records the drop in the wallet's minted-drop index.
	// Called only on the wallet's first mint from the drop.
	AppendMintedDrop(ctx context.Context, wallet domain.Account, id domain.DropID) error
	// MintedDrops lists the drops the wallet has minted from, in first-mint
	// order.
	MintedDrops(ctx context.Context, wallet domain.Account) ([]domain.DropID, error)
}
