// Package hashid defines the block/transaction content identifier and the
// cumulative-difficulty metric used to order the DAG.
package hashid

import (
	"bytes"
	"crypto/sha3"
	"encoding/hex"
	"fmt"
	"math/big"
)

// HashSize is the fixed width of a content identifier.
const HashSize = 32

// Hash is an opaque 32-byte content identifier, totally ordered
// lexicographically.
type Hash [HashSize]byte

// Zero is the default, all-zero hash.
var Zero Hash

// Sum256 hashes b and returns its identifier.
func Sum256(b []byte) Hash {
	return Hash(sha3.Sum256(b))
}

// Compare returns -1, 0 or 1 as h is lexicographically less than, equal
// to, or greater than other.
func (h Hash) Compare(other Hash) int {
	return bytes.Compare(h[:], other[:])
}

// Less reports whether h sorts strictly before other.
func (h Hash) Less(other Hash) bool {
	return h.Compare(other) < 0
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// HashFromHex parses a 64-character hex string into a Hash.
func HashFromHex(s string) (Hash, error) {
	var h Hash
	b, err := hex.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("hashid: invalid hex: %w", err)
	}
	if len(b) != HashSize {
		return h, fmt.Errorf("hashid: expected %d bytes, got %d", HashSize, len(b))
	}
	copy(h[:], b)
	return h, nil
}

// Difficulty is an unsigned, totally ordered, arbitrary-precision
// integer used both as a single block's difficulty target and as the
// running cumulative difficulty of a DAG path. A plain uint64 cannot
// safely accumulate work across an unbounded DAG history, so this
// wraps math/big.
type Difficulty struct {
	v *big.Int
}

// NewDifficulty wraps a non-negative value. A nil or negative value is
// normalized to zero.
func NewDifficulty(v *big.Int) Difficulty {
	if v == nil || v.Sign() < 0 {
		return Difficulty{v: new(big.Int)}
	}
	return Difficulty{v: new(big.Int).Set(v)}
}

// DifficultyFromUint64 builds a Difficulty from a plain integer.
func DifficultyFromUint64(v uint64) Difficulty {
	return Difficulty{v: new(big.Int).SetUint64(v)}
}

// Big returns the underlying big.Int. Callers must not mutate it.
func (d Difficulty) Big() *big.Int {
	if d.v == nil {
		return new(big.Int)
	}
	return d.v
}

// Add returns d + other.
func (d Difficulty) Add(other Difficulty) Difficulty {
	return NewDifficulty(new(big.Int).Add(d.Big(), other.Big()))
}

// Compare returns -1, 0 or 1 as d is less than, equal to, or greater
// than other.
func (d Difficulty) Compare(other Difficulty) int {
	return d.Big().Cmp(other.Big())
}

func (d Difficulty) String() string {
	return d.Big().String()
}
