package protocolrules

import (
	"time"

	"duskdag.dev/node/nodeerr"
)

// CheckPingInterval enforces the minimum spacing between accepted
// Pings from a single peer.
func CheckPingInterval(last time.Time, now time.Time, minInterval time.Duration) error {
	if last.IsZero() {
		return nil
	}
	if now.Sub(last) < minInterval {
		return nodeerr.New(nodeerr.PeerInvalidPingCountdown, "protocolrules: ping received before minimum interval elapsed")
	}
	return nil
}

// CheckPeerListInterval enforces the minimum spacing between accepted
// non-empty peer-list merges from a single peer.
func CheckPeerListInterval(last time.Time, now time.Time, minInterval time.Duration) error {
	if last.IsZero() {
		return nil
	}
	if now.Sub(last) < minInterval {
		return nodeerr.New(nodeerr.PeerInvalidPeerListCountdown, "protocolrules: peer list update received before minimum interval elapsed")
	}
	return nil
}
