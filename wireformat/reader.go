package wireformat

import (
	"encoding/binary"
	"math/big"

	"duskdag.dev/node/hashid"
	"duskdag.dev/node/nodeerr"
)

// Reader consumes a deterministic binary encoding produced by Writer,
// tracking a cursor and bounds-checking before every read (the idiom
// grounded on consensus/wire_read.go).
type Reader struct {
	buf []byte
	off int
}

// NewReader wraps b for sequential reads.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.off
}

// AtEnd reports whether every byte has been consumed. Decoders must
// check this after a full variant parse: residual bytes are
// InvalidPacketNotFullRead.
func (r *Reader) AtEnd() bool {
	return r.off == len(r.buf)
}

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return nodeerr.New(nodeerr.InvalidSize, "wireformat: truncated read")
	}
	return nil
}

func (r *Reader) ReadU8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.off]
	r.off++
	return v, nil
}

func (r *Reader) ReadU16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.buf[r.off : r.off+2])
	r.off += 2
	return v, nil
}

func (r *Reader) ReadU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.off : r.off+4])
	r.off += 4
	return v, nil
}

func (r *Reader) ReadU64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.buf[r.off : r.off+8])
	r.off += 8
	return v, nil
}

func (r *Reader) ReadU128() (hi, lo uint64, err error) {
	hi, err = r.ReadU64()
	if err != nil {
		return 0, 0, err
	}
	lo, err = r.ReadU64()
	if err != nil {
		return 0, 0, err
	}
	return hi, lo, nil
}

func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadU8()
	if err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, nodeerr.New(nodeerr.InvalidValue, "wireformat: bool must be 0 or 1")
	}
}

func (r *Reader) ReadHash() (hashid.Hash, error) {
	var h hashid.Hash
	if err := r.need(hashid.HashSize); err != nil {
		return h, err
	}
	copy(h[:], r.buf[r.off:r.off+hashid.HashSize])
	r.off += hashid.HashSize
	return h, nil
}

// ReadBytesFixed reads exactly n raw bytes, for fixed-size [u8; N] arrays.
func (r *Reader) ReadBytesFixed(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, r.buf[r.off:r.off+n])
	r.off += n
	return out, nil
}

func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadU16()
	if err != nil {
		return "", err
	}
	if err := r.need(int(n)); err != nil {
		return "", err
	}
	s := string(r.buf[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}

// ReadBytes reads a u16-length-prefixed byte slice.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	return r.ReadBytesFixed(int(n))
}

func (r *Reader) ReadOptionU64() (*uint64, error) {
	present, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	v, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ReadContainerLen reads a u16 item count and enforces MaxItems,
// returning InvalidSize on overflow.
func (r *Reader) ReadContainerLen() (int, error) {
	n, err := r.ReadU16()
	if err != nil {
		return 0, err
	}
	if int(n) > MaxItems {
		return 0, nodeerr.New(nodeerr.InvalidSize, "wireformat: container exceeds MAX_ITEMS")
	}
	return int(n), nil
}

// ReadHashVec reads a length-prefixed (u16, capped at MaxItems) ordered
// list of hashes.
func (r *Reader) ReadHashVec() ([]hashid.Hash, error) {
	n, err := r.ReadContainerLen()
	if err != nil {
		return nil, err
	}
	out := make([]hashid.Hash, 0, n)
	for i := 0; i < n; i++ {
		h, err := r.ReadHash()
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

// ReadHashSet reads a length-prefixed (u16, capped at MaxItems) set of
// hashes, rejecting duplicates.
func (r *Reader) ReadHashSet() (map[hashid.Hash]struct{}, error) {
	n, err := r.ReadContainerLen()
	if err != nil {
		return nil, err
	}
	out := make(map[hashid.Hash]struct{}, n)
	for i := 0; i < n; i++ {
		h, err := r.ReadHash()
		if err != nil {
			return nil, err
		}
		if _, dup := out[h]; dup {
			return nil, nodeerr.New(nodeerr.InvalidValue, "wireformat: duplicate element in set")
		}
		out[h] = struct{}{}
	}
	return out, nil
}

// ReadDifficulty reads a hashid.Difficulty encoded by WriteDifficulty.
func (r *Reader) ReadDifficulty() (hashid.Difficulty, error) {
	b, err := r.ReadBytes()
	if err != nil {
		return hashid.Difficulty{}, err
	}
	return hashid.NewDifficulty(new(big.Int).SetBytes(b)), nil
}

// ReadHashSetFlat decodes the flat HashSet[Hash] layout: the
// entire remaining buffer (or, if called standalone, the entire input)
// is interpreted as 32-byte chunks with no length prefix. A
// non-multiple-of-32 length is InvalidSize. Duplicate elements are
// rejected, matching the general set-serializer rule.
func ReadHashSetFlat(b []byte) (map[hashid.Hash]struct{}, error) {
	if len(b)%hashid.HashSize != 0 {
		return nil, nodeerr.New(nodeerr.InvalidSize, "wireformat: hash set blob length not a multiple of 32")
	}
	n := len(b) / hashid.HashSize
	out := make(map[hashid.Hash]struct{}, n)
	for i := 0; i < n; i++ {
		var h hashid.Hash
		copy(h[:], b[i*hashid.HashSize:(i+1)*hashid.HashSize])
		if _, dup := out[h]; dup {
			return nil, nodeerr.New(nodeerr.InvalidValue, "wireformat: duplicate hash in set")
		}
		out[h] = struct{}{}
	}
	return out, nil
}
