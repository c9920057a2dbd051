package accountstate

import "duskdag.dev/node/hashid"

// CachedAccount maps an asset hash to its staged, dirty-tracked balance.
type CachedAccount struct {
	assets map[hashid.Hash]*Updatable[CachedVersionedBalance]
}

func newCachedAccount() *CachedAccount {
	return &CachedAccount{assets: make(map[hashid.Hash]*Updatable[CachedVersionedBalance])}
}

// getOrDefault returns the Updatable wrapper for asset, inserting a
// non-dirty default (encrypted zero) entry if absent. It never marks
// the returned wrapper dirty by itself.
func (a *CachedAccount) getOrDefault(asset hashid.Hash) *Updatable[CachedVersionedBalance] {
	u, ok := a.assets[asset]
	if ok {
		return u
	}
	fresh := NewUpdatable(defaultCachedVersionedBalance())
	a.assets[asset] = &fresh
	return &fresh
}

// installFromStorage installs a hydrated, non-dirty entry for asset,
// overwriting whatever (if anything) was there — used only during
// InitFromStorageForTx, before any verification writes occur.
func (a *CachedAccount) installFromStorage(asset hashid.Hash, vb VersionedBalance, topoheight *uint64) {
	cached := CachedVersionedBalance{
		FinalBalance:       vb.FinalBalance.Clone(),
		PreviousTopoheight: topoheight,
	}
	if vb.OutputBalance != nil {
		cp := vb.OutputBalance.Clone()
		cached.OutputBalance = &cp
	}
	fresh := NewUpdatable(cached)
	a.assets[asset] = &fresh
}

// dirtyAssets returns the asset hashes whose Updatable wrapper is dirty,
// for the commit path.
func (a *CachedAccount) dirtyAssets() []hashid.Hash {
	out := make([]hashid.Hash, 0, len(a.assets))
	for asset, u := range a.assets {
		if u.IsModified() {
			out = append(out, asset)
		}
	}
	return out
}
