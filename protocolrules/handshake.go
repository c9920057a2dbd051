// Package protocolrules factors the node's wire-level protocol
// invariants into small functions over an incoming message plus local
// peer state. Every violation is reported as a typed nodeerr so the
// caller can close the offending peer; none of these functions panic.
// The plain Check* functions are pure; SeenSet and ObjectTracker also
// record what they check in their own per-peer state.
package protocolrules

import (
	"net/netip"

	"duskdag.dev/node/hashid"
	"duskdag.dev/node/nodeerr"
)

// CheckHandshakeFirst enforces that Handshake is the first packet on a
// connection: any other packet before the handshake completes is
// ExpectedHandshake.
func CheckHandshakeFirst(handshakeComplete bool, isHandshakePacket bool) error {
	if !handshakeComplete && !isHandshakePacket {
		return nodeerr.New(nodeerr.ExpectedHandshake, "protocolrules: packet received before handshake")
	}
	return nil
}

// CheckNetworkID enforces that both sides agree on the network.
func CheckNetworkID(received, expected hashid.Hash) error {
	if received != expected {
		return nodeerr.New(nodeerr.InvalidNetworkID, "protocolrules: network id mismatch")
	}
	return nil
}

// CheckPeerIDNotDuplicate rejects a handshake whose peer id is already
// in use by another connection.
func CheckPeerIDNotDuplicate(inUse map[hashid.Hash]struct{}, id hashid.Hash) error {
	if _, ok := inUse[id]; ok {
		return nodeerr.New(nodeerr.PeerIDAlreadyUsed, "protocolrules: peer id already in use")
	}
	return nil
}

// CheckAddressNotConnected rejects a handshake from an address this
// node already has an active connection to.
func CheckAddressNotConnected(connected map[netip.AddrPort]struct{}, addr netip.AddrPort) error {
	if _, ok := connected[addr]; ok {
		return nodeerr.New(nodeerr.PeerAlreadyConnected, "protocolrules: address already connected")
	}
	return nil
}
