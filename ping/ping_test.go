package ping

import (
	"net/netip"
	"testing"

	"duskdag.dev/node/hashid"
	"duskdag.dev/node/nodeerr"
	"duskdag.dev/node/peer"
	"duskdag.dev/node/wireformat"
)

func addr(s string) netip.AddrPort {
	a, err := netip.ParseAddrPort(s)
	if err != nil {
		panic(err)
	}
	return a
}

func u64(v uint64) *uint64 { return &v }

func TestPayloadRoundTrip(t *testing.T) {
	p := Payload{
		TopHash:              hashid.Hash{1, 2, 3},
		Topoheight:           7,
		Height:               7,
		PrunedTopoheight:     nil,
		CumulativeDifficulty: hashid.DifficultyFromUint64(0),
		PeerList:             nil,
	}
	w := wireformat.NewWriter()
	Encode(w, p)
	r := wireformat.NewReader(w.Bytes())
	got, err := Decode(r)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.TopHash != p.TopHash || got.Topoheight != p.Topoheight || got.Height != p.Height {
		t.Fatalf("roundtrip mismatch: %+v vs %+v", got, p)
	}
	if !r.AtEnd() {
		t.Fatal("expected reader fully drained")
	}
}

func TestDecodeRejectsOversizePeerList(t *testing.T) {
	w := wireformat.NewWriter()
	w.WriteHash(hashid.Hash{})
	w.WriteU64(0)
	w.WriteU64(0)
	w.WriteBool(false)
	w.WriteDifficulty(hashid.DifficultyFromUint64(0))
	w.WriteU8(255) // claims 255 entries but writes none
	r := wireformat.NewReader(w.Bytes())
	if _, err := Decode(r); err == nil {
		t.Fatal("expected truncated-read error from the claimed entries")
	}
}

func TestDecodeRejectsZeroPrunedTopoheight(t *testing.T) {
	w := wireformat.NewWriter()
	w.WriteHash(hashid.Hash{})
	w.WriteU64(0)
	w.WriteU64(0)
	zero := uint64(0)
	wireformat.WriteOptionU64(w, &zero)
	w.WriteDifficulty(hashid.DifficultyFromUint64(0))
	w.WriteU8(0)
	r := wireformat.NewReader(w.Bytes())
	if _, err := Decode(r); !nodeerr.Is(err, nodeerr.InvalidValue) {
		t.Fatalf("expected InvalidValue, got %v", err)
	}
}

func TestUpdatePeerRejectsUnPruning(t *testing.T) {
	a := addr("9.9.9.9:1")
	p := peer.New(a, a, peer.DirectionOut)
	p.SetSummary(peer.Summary{PrunedTopoheight: u64(10)})

	payload := Payload{Topoheight: 20, PrunedTopoheight: nil}
	err := UpdatePeer(p, payload, nil)
	if !nodeerr.Is(err, nodeerr.InvalidProtocolRules) {
		t.Fatalf("expected InvalidProtocolRules, got %v", err)
	}
	if p.Summary().PrunedTopoheight == nil || *p.Summary().PrunedTopoheight != 10 {
		t.Fatal("peer state must be unchanged after rejection")
	}
}

func TestUpdatePeerRejectsOwnAddressEcho(t *testing.T) {
	self := addr("1.2.3.4:5000")
	p := peer.New(self, self, peer.DirectionOut)

	payload := Payload{Topoheight: 1, PeerList: []netip.AddrPort{self}}
	err := UpdatePeer(p, payload, nil)
	if !nodeerr.Is(err, nodeerr.InvalidProtocolRules) {
		t.Fatalf("expected InvalidProtocolRules, got %v", err)
	}
}

func TestUpdatePeerRejectsOwnConnectionAddressEcho(t *testing.T) {
	conn := addr("1.2.3.4:5000")
	out := addr("8.8.8.8:9000")
	p := peer.New(conn, out, peer.DirectionOut)

	payload := Payload{Topoheight: 1, PeerList: []netip.AddrPort{conn}}
	err := UpdatePeer(p, payload, nil)
	if !nodeerr.Is(err, nodeerr.InvalidProtocolRules) {
		t.Fatalf("expected InvalidProtocolRules, got %v", err)
	}
}

func TestUpdatePeerRejectsDuplicateInboundReport(t *testing.T) {
	a := addr("9.9.9.9:1")
	p := peer.New(a, a, peer.DirectionOut)
	other := addr("5.6.7.8:4444")
	p.PeerList.Insert(other, peer.DirectionIn)

	payload := Payload{Topoheight: 1, PeerList: []netip.AddrPort{other}}
	err := UpdatePeer(p, payload, nil)
	if !nodeerr.Is(err, nodeerr.InvalidProtocolRules) {
		t.Fatalf("expected InvalidProtocolRules, got %v", err)
	}
}

func TestUpdatePeerMergesNewAddress(t *testing.T) {
	a := addr("9.9.9.9:1")
	p := peer.New(a, a, peer.DirectionOut)
	other := addr("5.6.7.8:4444")

	payload := Payload{Topoheight: 1, PeerList: []netip.AddrPort{other}}
	if err := UpdatePeer(p, payload, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.PeerList.Contains(other) {
		t.Fatal("expected new address to be merged in")
	}
}
