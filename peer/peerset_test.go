package peer

import (
	"net/netip"
	"testing"
)

func addr(s string) netip.AddrPort {
	a, err := netip.ParseAddrPort(s)
	if err != nil {
		panic(err)
	}
	return a
}

func TestPeerSetInsertsUnknownAddressAsIn(t *testing.T) {
	s := NewPeerSet()
	a := addr("1.2.3.4:5000")
	if !s.UpdateAllowIn(a) {
		t.Fatal("expected first report of an address to succeed")
	}
	if !s.Contains(a) {
		t.Fatal("expected address to be recorded")
	}
}

func TestPeerSetUpgradesOutToBoth(t *testing.T) {
	s := NewPeerSet()
	a := addr("1.2.3.4:5000")
	s.Insert(a, DirectionOut)
	if !s.UpdateAllowIn(a) {
		t.Fatal("expected upgrade from Out to Both to succeed")
	}
	if s.Snapshot()[a] != DirectionBoth {
		t.Fatalf("expected Both, got %v", s.Snapshot()[a])
	}
}

func TestPeerSetRejectsDuplicateIn(t *testing.T) {
	s := NewPeerSet()
	a := addr("1.2.3.4:5000")
	s.Insert(a, DirectionIn)
	if s.UpdateAllowIn(a) {
		t.Fatal("expected duplicate In report to be rejected")
	}
}
