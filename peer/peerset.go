package peer

import (
	"net/netip"
	"sync"
)

// PeerSet is one peer's view of the addresses it knows about, each
// tagged with the direction it was learned from. It is guarded by its
// own lock, separate from the peer's summary-state lock, so a long
// peer-list merge never stalls a concurrent state read.
type PeerSet struct {
	mu    sync.Mutex
	known map[netip.AddrPort]Direction
}

// NewPeerSet returns an empty set.
func NewPeerSet() *PeerSet {
	return &PeerSet{known: make(map[netip.AddrPort]Direction)}
}

// Contains reports whether addr is already known.
func (s *PeerSet) Contains(addr netip.AddrPort) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.known[addr]
	return ok
}

// Insert records addr with direction dir, overwriting any prior entry.
func (s *PeerSet) Insert(addr netip.AddrPort, dir Direction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.known[addr] = dir
}

// UpdateAllowIn merges an inbound report for addr. An address not yet
// in the set is inserted as In and UpdateAllowIn returns true. If the
// address is already recorded as In or Both, the peer reported a
// duplicate inbound connection — this is a lie, and UpdateAllowIn
// returns false without mutating the set. If it was recorded only as
// Out, it is upgraded to Both and UpdateAllowIn returns true.
func (s *PeerSet) UpdateAllowIn(addr netip.AddrPort) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.known[addr]
	if !ok {
		s.known[addr] = DirectionIn
		return true
	}
	if cur.HasIn() {
		return false
	}
	s.known[addr] = DirectionBoth
	return true
}

// Snapshot returns a copy of the known address -> direction map.
func (s *PeerSet) Snapshot() map[netip.AddrPort]Direction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[netip.AddrPort]Direction, len(s.known))
	for k, v := range s.known {
		out[k] = v
	}
	return out
}

// Len reports how many addresses are currently known.
func (s *PeerSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.known)
}
