package ping

import (
	"duskdag.dev/node/nodeerr"
	"duskdag.dev/node/peer"
)

// Notifier receives the RPC-facing events UpdatePeer emits when a peer
// state change succeeds. A no-op implementation is valid when no RPC
// subscriber is listening.
type Notifier interface {
	PeerStateUpdated(p *peer.Peer, s peer.Summary)
	PeerPeerListUpdated(p *peer.Peer, payload Payload)
}

// UpdatePeer applies a received Ping to p's cached state, enforcing
// pruned-state monotonicity and peer-list merge rules. On any
// rejection, p's state is left unchanged and the offending peer should
// be closed by the caller.
func UpdatePeer(p *peer.Peer, payload Payload, notifier Notifier) error {
	prior := p.Summary()

	if prior.PrunedTopoheight != nil && payload.PrunedTopoheight == nil {
		return nodeerr.New(nodeerr.InvalidProtocolRules, "ping: peer cannot un-prune")
	}
	if payload.PrunedTopoheight != nil {
		if *payload.PrunedTopoheight > payload.Topoheight {
			return nodeerr.New(nodeerr.InvalidProtocolRules, "ping: pruned_topoheight exceeds topoheight")
		}
		if prior.PrunedTopoheight != nil && *payload.PrunedTopoheight < *prior.PrunedTopoheight {
			return nodeerr.New(nodeerr.InvalidProtocolRules, "ping: pruned_topoheight decreased")
		}
	}

	if len(payload.PeerList) > 0 {
		for _, a := range payload.PeerList {
			if (p.OutgoingAddr.IsValid() && a == p.OutgoingAddr) || (p.ConnectionAddr.IsValid() && a == p.ConnectionAddr) {
				return nodeerr.New(nodeerr.InvalidProtocolRules, "ping: peer listed its own connection or outgoing address")
			}
		}
		// Reject duplicate inbound reports before merging anything, so a
		// rejected Ping leaves the peer list untouched.
		known := p.PeerList.Snapshot()
		for _, a := range payload.PeerList {
			if d, ok := known[a]; ok && d.HasIn() {
				return nodeerr.New(nodeerr.InvalidProtocolRules, "ping: duplicate inbound report for known address")
			}
			known[a] = peer.DirectionIn
		}
		for _, a := range payload.PeerList {
			if p.PeerList.Contains(a) {
				if !p.PeerList.UpdateAllowIn(a) {
					return nodeerr.New(nodeerr.InvalidProtocolRules, "ping: duplicate inbound report for known address")
				}
			} else {
				p.PeerList.Insert(a, peer.DirectionIn)
			}
		}
	}

	newSummary := peer.Summary{
		TopHash:              payload.TopHash,
		Topoheight:           payload.Topoheight,
		Height:               payload.Height,
		PrunedTopoheight:     payload.PrunedTopoheight,
		CumulativeDifficulty: payload.CumulativeDifficulty,
	}
	p.SetSummary(newSummary)

	if notifier != nil {
		notifier.PeerStateUpdated(p, newSummary)
		if len(payload.PeerList) > 0 {
			notifier.PeerPeerListUpdated(p, payload)
		}
	}
	return nil
}
