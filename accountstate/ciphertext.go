package accountstate

import "bytes"

// Ciphertext is an opaque additively-homomorphic encrypted integer
// representing a confidential balance. The concrete scheme (ElGamal or
// otherwise) is an external collaborator's concern; this package only
// ever clones, compares, and stores it.
//
// The zero value represents encrypted zero.
type Ciphertext struct {
	bytes []byte
}

// ZeroCiphertext is the default ciphertext, representing encrypted zero.
var ZeroCiphertext = Ciphertext{}

// NewCiphertext wraps opaque ciphertext bytes produced by the external
// crypto collaborator.
func NewCiphertext(b []byte) Ciphertext {
	if len(b) == 0 {
		return ZeroCiphertext
	}
	cp := make([]byte, len(b))
	copy(cp, b)
	return Ciphertext{bytes: cp}
}

// Bytes returns the opaque encoding. Callers must not mutate it.
func (c Ciphertext) Bytes() []byte { return c.bytes }

// Clone returns an independent copy.
func (c Ciphertext) Clone() Ciphertext {
	return NewCiphertext(c.bytes)
}

// Equal reports structural equality.
func (c Ciphertext) Equal(other Ciphertext) bool {
	return bytes.Equal(c.bytes, other.bytes)
}
