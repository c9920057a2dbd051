package protocolrules

import (
	"duskdag.dev/node/hashid"
	"duskdag.dev/node/nodeerr"
	"duskdag.dev/node/packet"
)

// CheckChainResponseRequested rejects a ChainResponse that doesn't
// correspond to any outstanding ChainRequest from this peer.
func CheckChainResponseRequested(hasOutstandingRequest bool) error {
	if !hasOutstandingRequest {
		return nodeerr.New(nodeerr.UnrequestedChainResponse, "protocolrules: chain response with no outstanding request")
	}
	return nil
}

// CheckChainResponseSize rejects a response whose header count exceeds
// the configured maximum.
func CheckChainResponseSize(headerCount, max int) error {
	if headerCount > max {
		return nodeerr.New(nodeerr.InvalidChainResponseSize, "protocolrules: chain response exceeds configured maximum")
	}
	return nil
}

// ObjectTracker records outstanding ObjectRequests by hash, keyed so a
// matching ObjectResponse can be validated and a duplicate request on
// the same hash rejected.
type ObjectTracker struct {
	outstanding map[hashid.Hash]packet.ObjectKind
}

// NewObjectTracker returns an empty tracker.
func NewObjectTracker() *ObjectTracker {
	return &ObjectTracker{outstanding: make(map[hashid.Hash]packet.ObjectKind)}
}

// RecordRequest registers an outstanding request, or rejects it if one
// for the same hash is already outstanding.
func (t *ObjectTracker) RecordRequest(hash hashid.Hash, kind packet.ObjectKind) error {
	if _, ok := t.outstanding[hash]; ok {
		return nodeerr.New(nodeerr.ObjectAlreadyRequested, "protocolrules: object already requested")
	}
	t.outstanding[hash] = kind
	return nil
}

// CheckResponse validates an incoming ObjectResponse against the
// tracked request for its hash, then clears the tracked entry whether
// or not the response is accepted.
func (t *ObjectTracker) CheckResponse(hash hashid.Hash, kind packet.ObjectKind) error {
	wantKind, ok := t.outstanding[hash]
	if !ok {
		return nodeerr.New(nodeerr.ObjectNotRequested, "protocolrules: unsolicited object response")
	}
	delete(t.outstanding, hash)
	if wantKind != kind {
		return nodeerr.New(nodeerr.InvalidObjectResponseType, "protocolrules: object response kind mismatch")
	}
	return nil
}
