package packet

import (
	"duskdag.dev/node/ping"
	"duskdag.dev/node/wireformat"
)

// PingPacket is the standalone Ping variant (tag 5), distinct from the
// Ping piggybacked inside a Wrapped[T] payload.
type PingPacket struct {
	Payload ping.Payload
}

func (PingPacket) Tag() Tag { return TagPing }

func (p PingPacket) encodeBody(w *wireformat.Writer) {
	ping.Encode(w, p.Payload)
}

func decodePing(r *wireformat.Reader) (Packet, error) {
	payload, err := ping.Decode(r)
	if err != nil {
		return nil, err
	}
	return PingPacket{Payload: payload}, nil
}

func init() {
	register(TagPing, decodePing)
}
