package protocolrules

import (
	"duskdag.dev/node/hashid"
	"duskdag.dev/node/nodeerr"
)

// SeenSet tracks hashes already propagated to or received from a
// single peer, so the same object is never relayed twice.
type SeenSet struct {
	hashes map[hashid.Hash]struct{}
}

// NewSeenSet returns an empty tracker.
func NewSeenSet() *SeenSet {
	return &SeenSet{hashes: make(map[hashid.Hash]struct{})}
}

// CheckTransactionNotTracked rejects a tx hash already in the set;
// otherwise it is recorded and nil is returned.
func (s *SeenSet) CheckTransactionNotTracked(h hashid.Hash) error {
	if _, ok := s.hashes[h]; ok {
		return nodeerr.New(nodeerr.AlreadyTrackedTx, "protocolrules: transaction already tracked for this peer")
	}
	s.hashes[h] = struct{}{}
	return nil
}

// CheckBlockNotTracked rejects a block hash already in the set;
// otherwise it is recorded and nil is returned.
func (s *SeenSet) CheckBlockNotTracked(h hashid.Hash) error {
	if _, ok := s.hashes[h]; ok {
		return nodeerr.New(nodeerr.AlreadyTrackedBlock, "protocolrules: block already tracked for this peer")
	}
	s.hashes[h] = struct{}{}
	return nil
}

// CheckStableHeightFloor rejects a propagated block whose height is
// beneath the locally known stable height: such a block can no longer
// affect the canonical chain and relaying it is wasted or abusive.
func CheckStableHeightFloor(blockHeight, stableHeight uint64) error {
	if blockHeight < stableHeight {
		return nodeerr.New(nodeerr.BlockPropagatedUnderStableHeight, "protocolrules: block height below stable height")
	}
	return nil
}
