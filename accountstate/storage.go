package accountstate

import (
	"context"

	"duskdag.dev/node/block"
	"duskdag.dev/node/dag"
	"duskdag.dev/node/hashid"
)

// VersionedNonce is the persisted nonce entry written at a given
// topoheight, mirroring VersionedBalance's shape for nonces.
type VersionedNonce struct {
	Nonce              uint64
	PreviousTopoheight *uint64
}

// AccountAsset pairs a balance entry with the asset it belongs to, the
// unit Storage.LoadAccountBalances returns for one account.
type AccountAsset struct {
	Asset      hashid.Hash
	Topoheight uint64
	Balance    VersionedBalance
}

// Storage is the persisted, single-writer/multi-reader backing store
// consumed by CachedState. It extends dag.DifficultyProvider, since
// block ordering and balance storage share the same backing engine in
// practice.
type Storage interface {
	dag.DifficultyProvider

	HasNonce(ctx context.Context, key block.PublicKey) (bool, error)
	LastNonce(ctx context.Context, key block.PublicKey) (topoheight uint64, nonce VersionedNonce, err error)
	SetNonceAtTopoheight(ctx context.Context, key block.PublicKey, topoheight uint64, nonce uint64) error

	// LoadAccountBalances returns every asset the account has a balance
	// version for, each tagged with the topoheight its latest version was
	// written at. A brand-new account returns an empty slice, not an
	// error (see DESIGN.md Open Question 1: a whole-account fetch rather
	// than per-asset enumeration).
	LoadAccountBalances(ctx context.Context, key block.PublicKey) ([]AccountAsset, error)

	SetLastBalanceTo(ctx context.Context, key block.PublicKey, asset hashid.Hash, topoheight uint64, balance VersionedBalance) error
}
