package cryptoiface

import (
	"crypto/ed25519"
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	"duskdag.dev/node/accountstate"
	"duskdag.dev/node/block"
)

// DevStub is a development-only backend. It verifies real ed25519
// signatures and hashes with SHA3-256, but its ciphertext arithmetic
// is plaintext addition and subtraction (clamped at zero) on 8-byte
// big-endian values, not a homomorphic encryption scheme — it exists
// to unblock testing of the verification and
// account-state code paths, not to hold confidential balances.
type DevStub struct{}

func (DevStub) Verify(pubkey block.PublicKey, sig []byte, digest [32]byte) bool {
	if len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pubkey[:]), digest[:], sig)
}

func (DevStub) Sum256(data []byte) [32]byte {
	h := sha3.New256()
	_, _ = h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func (DevStub) Add(a, b accountstate.Ciphertext) accountstate.Ciphertext {
	return devCombine(a, b, 1)
}

func (DevStub) Sub(a, b accountstate.Ciphertext) accountstate.Ciphertext {
	return devCombine(a, b, -1)
}

func devPlain(c accountstate.Ciphertext) uint64 {
	b := c.Bytes()
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func devCombine(a, b accountstate.Ciphertext, sign int64) accountstate.Ciphertext {
	va, vb := int64(devPlain(a)), int64(devPlain(b))
	sum := va + sign*vb
	if sum < 0 {
		sum = 0
	}
	out := make([]byte, 8)
	binary.BigEndian.PutUint64(out, uint64(sum))
	return accountstate.NewCiphertext(out)
}
