package peer

import (
	"net/netip"
	"sync"
	"time"

	"duskdag.dev/node/hashid"
)

// Summary is the peer-state fields updated on every Ping: the sender's
// claimed chain tip and pruning position. It is guarded by Peer's
// state lock, distinct from the peer-list lock, per the node's
// fine-grained locking policy.
type Summary struct {
	TopHash              hashid.Hash
	Topoheight           uint64
	Height               uint64
	PrunedTopoheight     *uint64
	CumulativeDifficulty hashid.Difficulty
}

// Peer is one connected node's locally-held state: connection
// direction, misbehavior score, cached chain-tip summary, and the set
// of addresses it has told us about.
type Peer struct {
	// ConnectionAddr is the observed remote address of this connection
	// (the TCP peer address, for both inbound and outbound peers).
	ConnectionAddr netip.AddrPort
	// OutgoingAddr is the address this node dialed to reach the peer,
	// the zero value if the connection is purely inbound.
	OutgoingAddr netip.AddrPort
	Role         Direction

	Ban BanScore

	stateMu sync.Mutex
	summary Summary

	rateMu         sync.Mutex
	lastPingAt     time.Time
	lastPeerListAt time.Time

	PeerList *PeerSet
}

// New constructs a Peer for a connection whose observed remote address
// is connectionAddr and whose dialed-out address is outgoingAddr (the
// zero value if this is a purely inbound connection).
func New(connectionAddr, outgoingAddr netip.AddrPort, role Direction) *Peer {
	return &Peer{
		ConnectionAddr: connectionAddr,
		OutgoingAddr:   outgoingAddr,
		Role:           role,
		PeerList:       NewPeerSet(),
	}
}

// Summary returns a copy of the cached chain-tip summary.
func (p *Peer) Summary() Summary {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	return p.summary
}

// SetSummary overwrites the cached chain-tip summary.
func (p *Peer) SetSummary(s Summary) {
	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	p.summary = s
}

// LastPingAt and MarkPinged implement the ping-gossip rate limit: a
// minimum interval must elapse between accepted Pings from this peer.
func (p *Peer) LastPingAt() time.Time {
	p.rateMu.Lock()
	defer p.rateMu.Unlock()
	return p.lastPingAt
}

func (p *Peer) MarkPinged(at time.Time) {
	p.rateMu.Lock()
	defer p.rateMu.Unlock()
	p.lastPingAt = at
}

// LastPeerListAt and MarkPeerListUpdated implement the equivalent rate
// limit for non-empty peer-list merges within a Ping.
func (p *Peer) LastPeerListAt() time.Time {
	p.rateMu.Lock()
	defer p.rateMu.Unlock()
	return p.lastPeerListAt
}

func (p *Peer) MarkPeerListUpdated(at time.Time) {
	p.rateMu.Lock()
	defer p.rateMu.Unlock()
	p.lastPeerListAt = at
}
