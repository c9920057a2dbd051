package accountstate

// VersionedBalance is the persisted, append-only form of an account's
// balance for one asset at one topoheight. PreviousTopoheight links
// this version back to the prior version of the same (account, asset)
// pair, forming a per-account versioned chain keyed by the topoheight
// at which each version was committed.
type VersionedBalance struct {
	FinalBalance       Ciphertext
	OutputBalance      *Ciphertext
	PreviousTopoheight *uint64
}

// CachedVersionedBalance is the in-memory staging form consumed by
// verification. Convention: EffectiveBalance returns OutputBalance if
// present, else FinalBalance; UpdateBalance sets OutputBalance and never
// overwrites FinalBalance during verification.
type CachedVersionedBalance struct {
	OutputBalance      *Ciphertext
	FinalBalance       Ciphertext
	PreviousTopoheight *uint64
}

// EffectiveBalance returns the ciphertext that should be read when
// evaluating "current balance".
func (b *CachedVersionedBalance) EffectiveBalance() Ciphertext {
	if b.OutputBalance != nil {
		return *b.OutputBalance
	}
	return b.FinalBalance
}

// UpdateBalance sets OutputBalance; it never touches FinalBalance.
func (b *CachedVersionedBalance) UpdateBalance(ct Ciphertext) {
	cp := ct.Clone()
	b.OutputBalance = &cp
}

// ToVersionedBalance projects the cached entry into its persisted form
// at commit time.
func (b *CachedVersionedBalance) ToVersionedBalance() VersionedBalance {
	var out *Ciphertext
	if b.OutputBalance != nil {
		cp := b.OutputBalance.Clone()
		out = &cp
	}
	return VersionedBalance{
		FinalBalance:       b.FinalBalance.Clone(),
		OutputBalance:      out,
		PreviousTopoheight: b.PreviousTopoheight,
	}
}

// defaultCachedVersionedBalance is the entry installed for an asset the
// cache has never seen: encrypted zero, no pending output, no prior
// version.
func defaultCachedVersionedBalance() CachedVersionedBalance {
	return CachedVersionedBalance{FinalBalance: ZeroCiphertext}
}
