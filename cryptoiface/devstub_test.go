package cryptoiface

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"duskdag.dev/node/accountstate"
	"duskdag.dev/node/block"
)

func TestDevStubVerifiesRealSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("key gen: %v", err)
	}
	var pk block.PublicKey
	copy(pk[:], pub)

	s := DevStub{}
	digest := s.Sum256([]byte("hello"))
	sig := ed25519.Sign(priv, digest[:])

	if !s.Verify(pk, sig, digest) {
		t.Fatal("valid signature rejected")
	}
	sig[0] ^= 0xff
	if s.Verify(pk, sig, digest) {
		t.Fatal("corrupted signature accepted")
	}
}

func TestDevStubCiphertextArithmetic(t *testing.T) {
	s := DevStub{}
	a := s.Add(accountstate.ZeroCiphertext, encodeU64(5))
	b := s.Add(a, encodeU64(3))
	if devPlain(b) != 8 {
		t.Fatalf("got %d, want 8", devPlain(b))
	}
	c := s.Sub(b, encodeU64(3))
	if devPlain(c) != 5 {
		t.Fatalf("got %d, want 5", devPlain(c))
	}
}

func encodeU64(v uint64) accountstate.Ciphertext {
	out := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return accountstate.NewCiphertext(out)
}
