package packet

import (
	"duskdag.dev/node/hashid"
	"duskdag.dev/node/wireformat"
)

// Handshake must be the first packet on any connection. NetworkID
// distinguishes incompatible networks (mismatch => InvalidNetworkID);
// PeerID is the sender's self-reported identity (a duplicate already
// seen elsewhere => PeerIdAlreadyUsed, enforced by protocolrules, not
// here).
type Handshake struct {
	NetworkID  hashid.Hash
	PeerID     hashid.Hash
	TopHash    hashid.Hash
	Topoheight uint64
	Height     uint64
}

func (Handshake) Tag() Tag { return TagHandshake }

func (h Handshake) encodeBody(w *wireformat.Writer) {
	w.WriteHash(h.NetworkID)
	w.WriteHash(h.PeerID)
	w.WriteHash(h.TopHash)
	w.WriteU64(h.Topoheight)
	w.WriteU64(h.Height)
}

func decodeHandshake(r *wireformat.Reader) (Packet, error) {
	var h Handshake
	var err error
	if h.NetworkID, err = r.ReadHash(); err != nil {
		return nil, err
	}
	if h.PeerID, err = r.ReadHash(); err != nil {
		return nil, err
	}
	if h.TopHash, err = r.ReadHash(); err != nil {
		return nil, err
	}
	if h.Topoheight, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if h.Height, err = r.ReadU64(); err != nil {
		return nil, err
	}
	return h, nil
}

func init() {
	register(TagHandshake, decodeHandshake)
}
