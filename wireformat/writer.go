// Package wireformat is the node's deterministic binary codec:
// fixed-width integer writers, bool/hash/string helpers, Option[T]
// encoding, length-bounded containers, and the flat HashSet[Hash]
// layout. The reader keeps a position cursor and bounds-checks before
// every read; this package picks big-endian fixed-width integers and
// fixed u16 container lengths rather than little-endian CompactSize
// varints, as a deliberate, documented choice.
package wireformat

import (
	"encoding/binary"

	"duskdag.dev/node/hashid"
)

// MaxItems bounds every length-prefixed container.
const MaxItems = 1024

// WriteDifficulty writes a hashid.Difficulty as a u16-length-prefixed
// big-endian byte string (its magnitude only; Difficulty is never
// negative).
func (w *Writer) WriteDifficulty(d hashid.Difficulty) {
	w.WriteBytes(d.Big().Bytes())
}

// Writer appends a deterministic binary encoding to an internal buffer.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len reports how many bytes have been written so far.
func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) WriteU16(v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *Writer) WriteU32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *Writer) WriteU64(v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	w.buf = append(w.buf, tmp[:]...)
}

func (w *Writer) WriteU128(hi, lo uint64) {
	w.WriteU64(hi)
	w.WriteU64(lo)
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteU8(1)
	} else {
		w.WriteU8(0)
	}
}

func (w *Writer) WriteHash(h hashid.Hash) {
	w.buf = append(w.buf, h[:]...)
}

// WriteBytesFixed writes raw bytes with no length prefix, for fixed-size
// [u8; N] arrays.
func (w *Writer) WriteBytesFixed(b []byte) {
	w.buf = append(w.buf, b...)
}

func (w *Writer) WriteString(s string) {
	w.WriteU16(uint16(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteBytes writes a u16-length-prefixed byte slice.
func (w *Writer) WriteBytes(b []byte) {
	w.WriteU16(uint16(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteOptionU64 writes an Option[u64]: present flag, then the value
// if present.
func WriteOptionU64(w *Writer, v *uint64) {
	w.WriteBool(v != nil)
	if v != nil {
		w.WriteU64(*v)
	}
}

// WriteHashVec writes a u16-length-prefixed ordered list of hashes —
// the general container form, distinct from WriteHashSetFlat's special
// top-level-blob layout. It does not check the count against MaxItems;
// ReadHashVec rejects a count above MaxItems.
func (w *Writer) WriteHashVec(hashes []hashid.Hash) {
	w.WriteU16(uint16(len(hashes)))
	for _, h := range hashes {
		w.WriteHash(h)
	}
}

// WriteHashSetFlat writes a HashSet[Hash] using the special flat
// layout: no length prefix, the entire buffer is 32-byte chunks. This
// layout is only valid as the top-level payload of a dedicated blob
// (e.g. the persisted tip set); it must not be embedded inside another
// container, since there would be no way to know where it ends.
func WriteHashSetFlat(hashes []hashid.Hash) []byte {
	out := make([]byte, 0, len(hashes)*hashid.HashSize)
	for _, h := range hashes {
		out = append(out, h[:]...)
	}
	return out
}
