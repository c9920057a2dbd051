package accountstate

import (
	"context"
	"sync"

	"duskdag.dev/node/block"
	"duskdag.dev/node/hashid"
)

// CachedState is the write-through staging layer over Storage that
// feeds balance ciphertexts and nonces to transaction verification. It
// is single-owner for the duration of one verification batch — it is
// not shared across tasks.
type CachedState struct {
	topoheight uint64
	balances   map[block.PublicKey]*Updatable[*CachedAccount]
	nonces     map[block.PublicKey]*Updatable[uint64]
}

// NewCachedState creates an empty cache for a verification batch fixed
// at baseTopoheight.
func NewCachedState(baseTopoheight uint64) *CachedState {
	return &CachedState{
		topoheight: baseTopoheight,
		balances:   make(map[block.PublicKey]*Updatable[*CachedAccount]),
		nonces:     make(map[block.PublicKey]*Updatable[uint64]),
	}
}

// Topoheight is the base topoheight this cache was hydrated at.
func (s *CachedState) Topoheight() uint64 { return s.topoheight }

func (s *CachedState) accountOrDefault(key block.PublicKey) *Updatable[*CachedAccount] {
	u, ok := s.balances[key]
	if ok {
		return u
	}
	fresh := NewUpdatable(newCachedAccount())
	s.balances[key] = &fresh
	return &fresh
}

// GetBalance returns the account's effective ciphertext for asset. An
// absent account, or a present account with no entry for asset, yields
// encrypted zero (the default ciphertext). It never fetches from
// storage: hydration must precede verification via InitFromStorageForTx.
func (s *CachedState) GetBalance(key block.PublicKey, asset hashid.Hash) Ciphertext {
	u, ok := s.balances[key]
	if !ok {
		return ZeroCiphertext
	}
	account := u.Value()
	assetU, ok := account.assets[asset]
	if !ok {
		return ZeroCiphertext
	}
	cv := assetU.Value()
	return cv.EffectiveBalance()
}

// UpdateBalance inserts the account and asset entries (default) if
// missing, then sets OutputBalance := newCt. Dirty bits propagate
// through every Updatable wrapper touched: the outer account wrapper,
// and the inner per-asset wrapper.
func (s *CachedState) UpdateBalance(key block.PublicKey, asset hashid.Hash, newCt Ciphertext) {
	accountU := s.accountOrDefault(key)
	account := accountU.Value()
	assetU := account.getOrDefault(asset)

	cv := assetU.Modify()
	cv.UpdateBalance(newCt)

	// The outer account wrapper is dirty whenever any asset beneath it
	// changed; the pointer value itself does not change, but the wrapper
	// must still flip since ApplyUpdates tests the outer bit as a fast
	// negative before re-scanning inner entries.
	accountU.Modify()
}

// GetAccountNonce returns the cached nonce, or 0 if absent (a brand-new
// account).
func (s *CachedState) GetAccountNonce(key block.PublicKey) uint64 {
	u, ok := s.nonces[key]
	if !ok {
		return 0
	}
	return u.Value()
}

// UpdateAccountNonce upserts the cached nonce; it always marks the entry
// dirty, even if the new value equals the old one.
func (s *CachedState) UpdateAccountNonce(key block.PublicKey, newNonce uint64) {
	u, ok := s.nonces[key]
	if !ok {
		fresh := NewUpdatable(newNonce)
		fresh.Modify()
		s.nonces[key] = &fresh
		return
	}
	u.Set(newNonce)
}

// InitFromStorageForTx hydrates every account named in
// tx.GetModifiedAccounts() from storage at the cache's base topoheight,
// installing non-dirty Updatable entries. Fetches run concurrently;
// completion order is irrelevant, but a failure from storage for any
// account aborts hydration and surfaces an error.
func (s *CachedState) InitFromStorageForTx(ctx context.Context, storage Storage, tx *block.Transaction) error {
	accounts := tx.GetModifiedAccounts()

	type result struct {
		key      block.PublicKey
		balances []AccountAsset
		hasNonce bool
		topo     uint64
		nonce    VersionedNonce
		err      error
	}

	results := make([]result, len(accounts))
	var wg sync.WaitGroup
	for i, key := range accounts {
		wg.Add(1)
		go func(i int, key block.PublicKey) {
			defer wg.Done()
			r := result{key: key}
			bals, err := storage.LoadAccountBalances(ctx, key)
			if err != nil {
				r.err = err
				results[i] = r
				return
			}
			r.balances = bals

			has, err := storage.HasNonce(ctx, key)
			if err != nil {
				r.err = err
				results[i] = r
				return
			}
			r.hasNonce = has
			if has {
				topo, nonce, err := storage.LastNonce(ctx, key)
				if err != nil {
					r.err = err
					results[i] = r
					return
				}
				r.topo = topo
				r.nonce = nonce
			}
			results[i] = r
		}(i, key)
	}
	wg.Wait()

	for _, r := range results {
		if r.err != nil {
			return r.err
		}
	}

	for _, r := range results {
		accountU := s.accountOrDefault(r.key)
		account := accountU.Value()
		for _, ab := range r.balances {
			topo := ab.Topoheight
			account.installFromStorage(ab.Asset, ab.Balance, &topo)
		}
		if r.hasNonce {
			fresh := NewUpdatable(r.nonce.Nonce)
			s.nonces[r.key] = &fresh
		}
	}
	return nil
}

// ApplyUpdates commits every dirty account/asset and every dirty nonce
// to storage at the given topoheight. It is all-or-nothing only at the
// caller's discretion: CachedState does not roll back on partial
// storage failure, and returns the first error encountered. Accounts
// and nonces are iterated in arbitrary (map) order.
func (s *CachedState) ApplyUpdates(ctx context.Context, storage Storage, topoheight uint64) error {
	for key, accountU := range s.balances {
		if !accountU.IsModified() {
			continue
		}
		account := accountU.Value()
		for _, asset := range account.dirtyAssets() {
			assetU := account.assets[asset]
			cv := assetU.Value()
			vb := cv.ToVersionedBalance()
			if err := storage.SetLastBalanceTo(ctx, key, asset, topoheight, vb); err != nil {
				return err
			}
		}
	}

	for key, nonceU := range s.nonces {
		if !nonceU.IsModified() {
			continue
		}
		if err := storage.SetNonceAtTopoheight(ctx, key, topoheight, nonceU.Value()); err != nil {
			return err
		}
	}
	return nil
}
