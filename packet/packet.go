// Package packet implements the node's wire envelope: a length-prefixed,
// tagged frame around one of thirteen packet variants, several of which
// piggyback a Ping heartbeat so that every round-trip also carries a
// gossip update.
package packet

import (
	"duskdag.dev/node/nodeerr"
	"duskdag.dev/node/wireformat"
)

// Tag identifies a packet variant on the wire. Assignments are fixed
// and must never be renumbered once deployed.
type Tag uint8

const (
	TagHandshake               Tag = 0
	TagTransactionPropagation  Tag = 1
	TagBlockPropagation        Tag = 2
	TagChainRequest            Tag = 3
	TagChainResponse           Tag = 4
	TagPing                    Tag = 5
	TagObjectRequest           Tag = 6
	TagObjectResponse          Tag = 7
	TagNotifyInventoryRequest  Tag = 8
	TagNotifyInventoryResponse Tag = 9
	TagBootstrapChainRequest   Tag = 10
	TagBootstrapChainResponse  Tag = 11
	TagPeerDisconnected        Tag = 12
)

// Packet is any of the thirteen tagged variants.
type Packet interface {
	Tag() Tag
	encodeBody(w *wireformat.Writer)
}

// EncodeEnvelope frames p as [u32 total_length][u8 tag][body]. total_length
// includes the tag byte.
func EncodeEnvelope(p Packet) []byte {
	body := wireformat.NewWriter()
	p.encodeBody(body)

	out := wireformat.NewWriter()
	out.WriteU32(uint32(1 + body.Len()))
	out.WriteU8(uint8(p.Tag()))
	out.WriteBytesFixed(body.Bytes())
	return out.Bytes()
}

// DecodeEnvelope reads one framed packet from buf. A parse error on the
// tag or body yields InvalidPacket; a declared length that the buffer
// cannot satisfy yields InvalidPacketSize; residual bytes after a
// successful variant parse yield InvalidPacketNotFullRead.
func DecodeEnvelope(buf []byte) (Packet, error) {
	r := wireformat.NewReader(buf)
	length, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, nodeerr.New(nodeerr.InvalidPacket, "packet: zero-length envelope has no tag byte")
	}
	if r.Remaining() < int(length) {
		return nil, nodeerr.New(nodeerr.InvalidPacketSize, "packet: declared length exceeds buffer")
	}
	framed, err := r.ReadBytesFixed(int(length))
	if err != nil {
		return nil, err
	}

	tag := Tag(framed[0])
	decode, ok := decoders[tag]
	if !ok {
		return nil, nodeerr.New(nodeerr.InvalidPacket, "packet: unknown tag")
	}

	body := wireformat.NewReader(framed[1:])
	p, err := decode(body)
	if err != nil {
		return nil, nodeerr.Wrap(nodeerr.InvalidPacket, "packet: body decode failed", err)
	}
	if !body.AtEnd() {
		return nil, nodeerr.New(nodeerr.InvalidPacketNotFullRead, "packet: trailing bytes after variant body")
	}
	return p, nil
}

var decoders = map[Tag]func(*wireformat.Reader) (Packet, error){}

func register(tag Tag, fn func(*wireformat.Reader) (Packet, error)) {
	decoders[tag] = fn
}
