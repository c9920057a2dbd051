// Package cryptoiface declares the narrow external-collaborator
// interfaces transaction cryptography sits behind: signature
// verification and ciphertext arithmetic. Neither the concrete
// signature scheme nor the concrete homomorphic encryption scheme is
// this package's concern; callers depend only on these interfaces, so
// a production backend can be swapped in without touching verification
// or account-state code.
package cryptoiface

import (
	"duskdag.dev/node/accountstate"
	"duskdag.dev/node/block"
)

// Verifier checks signatures over a transaction digest against a
// miner's or account's public key.
type Verifier interface {
	// Verify reports whether sig is a valid signature by pubkey over
	// digest.
	Verify(pubkey block.PublicKey, sig []byte, digest [32]byte) bool
}

// CiphertextArithmetic performs the additively-homomorphic operations
// account-state balance updates need, without ever decrypting.
type CiphertextArithmetic interface {
	// Add returns the ciphertext encrypting dec(a)+dec(b).
	Add(a, b accountstate.Ciphertext) accountstate.Ciphertext
	// Sub returns the ciphertext encrypting dec(a)-dec(b).
	Sub(a, b accountstate.Ciphertext) accountstate.Ciphertext
}

// Hasher produces the 32-byte digest a Verifier checks a signature
// against. The concrete hash function is an external collaborator's
// concern.
type Hasher interface {
	Sum256(data []byte) [32]byte
}
