package accountstate

import (
	"encoding/binary"
	"fmt"

	"duskdag.dev/node/hashid"
)

// Binary layouts below put fixed-width fields first, and give each
// variable-width field a u16 length prefix.

// encodeVersionedNonce: topoheight u64le | has_prev u8 | prev_topoheight u64le | nonce u64le
func encodeVersionedNonce(topoheight uint64, vn VersionedNonce) []byte {
	out := make([]byte, 8+1+8+8)
	binary.LittleEndian.PutUint64(out[0:8], topoheight)
	if vn.PreviousTopoheight != nil {
		out[8] = 1
		binary.LittleEndian.PutUint64(out[9:17], *vn.PreviousTopoheight)
	}
	binary.LittleEndian.PutUint64(out[17:25], vn.Nonce)
	return out
}

func decodeVersionedNonce(b []byte) (uint64, VersionedNonce) {
	if len(b) != 25 {
		return 0, VersionedNonce{}
	}
	topoheight := binary.LittleEndian.Uint64(b[0:8])
	var prev *uint64
	if b[8] == 1 {
		p := binary.LittleEndian.Uint64(b[9:17])
		prev = &p
	}
	nonce := binary.LittleEndian.Uint64(b[17:25])
	return topoheight, VersionedNonce{Nonce: nonce, PreviousTopoheight: prev}
}

// encodeVersionedBalance:
// topoheight u64le | has_prev u8 | prev_topoheight u64le |
// final_len u16le | final_bytes | has_output u8 | output_len u16le | output_bytes
func encodeVersionedBalance(topoheight uint64, vb VersionedBalance) []byte {
	finalBytes := vb.FinalBalance.Bytes()
	out := make([]byte, 0, 8+1+8+2+len(finalBytes)+1+2+32)
	var tmp8 [8]byte

	binary.LittleEndian.PutUint64(tmp8[:], topoheight)
	out = append(out, tmp8[:]...)

	if vb.PreviousTopoheight != nil {
		out = append(out, 1)
		binary.LittleEndian.PutUint64(tmp8[:], *vb.PreviousTopoheight)
		out = append(out, tmp8[:]...)
	} else {
		out = append(out, 0)
		out = append(out, make([]byte, 8)...)
	}

	var tmp2 [2]byte
	binary.LittleEndian.PutUint16(tmp2[:], uint16(len(finalBytes)))
	out = append(out, tmp2[:]...)
	out = append(out, finalBytes...)

	if vb.OutputBalance != nil {
		out = append(out, 1)
		ob := vb.OutputBalance.Bytes()
		binary.LittleEndian.PutUint16(tmp2[:], uint16(len(ob)))
		out = append(out, tmp2[:]...)
		out = append(out, ob...)
	} else {
		out = append(out, 0)
		out = append(out, 0, 0)
	}
	return out
}

func decodeVersionedBalance(b []byte) (uint64, VersionedBalance, error) {
	const headLen = 8 + 1 + 8 + 2
	if len(b) < headLen {
		return 0, VersionedBalance{}, fmt.Errorf("accountstate: versioned balance: truncated header")
	}
	off := 0
	topoheight := binary.LittleEndian.Uint64(b[off : off+8])
	off += 8
	hasPrev := b[off]
	off++
	prevTopo := binary.LittleEndian.Uint64(b[off : off+8])
	off += 8
	finalLen := int(binary.LittleEndian.Uint16(b[off : off+2]))
	off += 2
	if len(b) < off+finalLen+1+2 {
		return 0, VersionedBalance{}, fmt.Errorf("accountstate: versioned balance: truncated final balance")
	}
	finalBytes := b[off : off+finalLen]
	off += finalLen

	hasOutput := b[off]
	off++
	outLen := int(binary.LittleEndian.Uint16(b[off : off+2]))
	off += 2
	if len(b) != off+outLen {
		return 0, VersionedBalance{}, fmt.Errorf("accountstate: versioned balance: trailing bytes")
	}

	vb := VersionedBalance{FinalBalance: NewCiphertext(finalBytes)}
	if hasPrev == 1 {
		p := prevTopo
		vb.PreviousTopoheight = &p
	}
	if hasOutput == 1 {
		ct := NewCiphertext(b[off : off+outLen])
		vb.OutputBalance = &ct
	}
	return topoheight, vb, nil
}

// encodeAssetList/decodeAssetList store a flat, length-prefix-free
// HashSet[Hash]: the entire buffer is 32-byte chunks, no count prefix.
// This is the same layout wireformat.WriteHashSetFlat uses for the
// persisted tip set, reused here as the account-asset index.
func encodeAssetList(assets []hashid.Hash) []byte {
	out := make([]byte, 0, len(assets)*hashid.HashSize)
	for _, a := range assets {
		out = append(out, a[:]...)
	}
	return out
}

func decodeAssetList(b []byte) ([]hashid.Hash, error) {
	if len(b)%hashid.HashSize != 0 {
		return nil, fmt.Errorf("accountstate: asset list: length %d not a multiple of %d", len(b), hashid.HashSize)
	}
	n := len(b) / hashid.HashSize
	out := make([]hashid.Hash, n)
	for i := 0; i < n; i++ {
		copy(out[i][:], b[i*hashid.HashSize:(i+1)*hashid.HashSize])
	}
	return out, nil
}
