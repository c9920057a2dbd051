// Package ping implements the gossip heartbeat sent as a standalone Ping
// packet and piggybacked on the wrapped application packets: a compact
// peer-state summary plus a bounded peer-list for topology discovery.
package ping

import (
	"net/netip"

	"duskdag.dev/node/hashid"
	"duskdag.dev/node/nodeerr"
	"duskdag.dev/node/wireformat"
)

// PeerListLimit bounds the number of addresses a single Ping may carry.
// The wire count is a single byte, so this can never exceed 255.
const PeerListLimit = 255

// Payload is the gossip heartbeat: the sender's chain tip summary and
// an optional batch of peer addresses to advertise.
type Payload struct {
	TopHash              hashid.Hash
	Topoheight           uint64
	Height               uint64
	PrunedTopoheight     *uint64
	CumulativeDifficulty hashid.Difficulty
	PeerList             []netip.AddrPort
}

// Encode writes p using the node's big-endian wire codec.
func Encode(w *wireformat.Writer, p Payload) {
	w.WriteHash(p.TopHash)
	w.WriteU64(p.Topoheight)
	w.WriteU64(p.Height)
	wireformat.WriteOptionU64(w, p.PrunedTopoheight)
	w.WriteDifficulty(p.CumulativeDifficulty)

	w.WriteU8(uint8(len(p.PeerList)))
	for _, addr := range p.PeerList {
		a4 := addr.Addr().As4()
		w.WriteBytesFixed(a4[:])
		w.WriteU16(addr.Port())
	}
}

// Decode reads a Payload, enforcing PeerListLimit and rejecting
// pruned_topoheight == 0 (0 is reserved to mean "no pruning").
func Decode(r *wireformat.Reader) (Payload, error) {
	var p Payload
	var err error

	p.TopHash, err = r.ReadHash()
	if err != nil {
		return p, err
	}
	p.Topoheight, err = r.ReadU64()
	if err != nil {
		return p, err
	}
	p.Height, err = r.ReadU64()
	if err != nil {
		return p, err
	}
	p.PrunedTopoheight, err = r.ReadOptionU64()
	if err != nil {
		return p, err
	}
	if p.PrunedTopoheight != nil && *p.PrunedTopoheight == 0 {
		return p, nodeerr.New(nodeerr.InvalidValue, "ping: pruned_topoheight must not be zero")
	}
	p.CumulativeDifficulty, err = r.ReadDifficulty()
	if err != nil {
		return p, err
	}

	count, err := r.ReadU8()
	if err != nil {
		return p, err
	}
	if int(count) > PeerListLimit {
		return p, nodeerr.New(nodeerr.InvalidValue, "ping: peer list exceeds PeerListLimit")
	}
	p.PeerList = make([]netip.AddrPort, 0, count)
	for i := 0; i < int(count); i++ {
		raw, err := r.ReadBytesFixed(4)
		if err != nil {
			return p, err
		}
		port, err := r.ReadU16()
		if err != nil {
			return p, err
		}
		var a4 [4]byte
		copy(a4[:], raw)
		p.PeerList = append(p.PeerList, netip.AddrPortFrom(netip.AddrFrom4(a4), port))
	}
	return p, nil
}
