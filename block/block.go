// Package block holds the BlockDAG's content types: Block and
// Transaction.
package block

import (
	"duskdag.dev/node/hashid"
)

// TipsLimit bounds the number of parent hashes a block may cite.
const TipsLimit = 16

// PublicKey identifies a miner or account. Its concrete encoding (key
// scheme, compression) is an external collaborator's concern; here it
// is only ever compared and copied.
type PublicKey [32]byte

// Block carries a set of parent hashes ("tips"), a height, a miner
// public key, and an ordered list of transactions.
//
// Invariant: Height == max(parent heights) + 1 when len(Tips) >= 1,
// else 0 (the genesis case). This invariant is established by
// dag.CalculateHeightAtTips and is not re-derived here; Block simply
// carries whatever height its constructor computed.
type Block struct {
	Tips         []hashid.Hash
	Height       uint64
	Miner        PublicKey
	Transactions []*Transaction
}

// Hash returns the block's content identifier. The exact preimage
// layout (header serialization) is deliberately left to wireformat's
// encoder; Hash here is a thin convenience over a caller-supplied
// canonical encoding.
func Hash(canonicalBytes []byte) hashid.Hash {
	return hashid.Sum256(canonicalBytes)
}

// ValidateTipCount checks the 1..=TIPS_LIMIT invariant on Tips. The
// genesis block is the sole exception: it has zero parents and height 0.
func (b *Block) ValidateTipCount() bool {
	if len(b.Tips) == 0 {
		return b.Height == 0
	}
	return len(b.Tips) <= TipsLimit
}
