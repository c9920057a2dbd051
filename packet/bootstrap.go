package packet

import (
	"duskdag.dev/node/nodeerr"
	"duskdag.dev/node/wireformat"
)

// Bootstrap stages a fast-sync handshake progresses through, in order.
type BootstrapStep uint8

const (
	BootstrapStepChainInfo BootstrapStep = iota
	BootstrapStepAccounts
	BootstrapStepBlocks
	BootstrapStepDone
)

func (s BootstrapStep) valid() bool {
	return s <= BootstrapStepDone
}

// BootstrapChainRequest asks for the next bootstrap stage's data.
// Decoding rejects a step value beyond BootstrapStepDone with
// InvalidBootstrapStep; no check in this module compares a step with
// the one the responder last sent.
type BootstrapChainRequest struct {
	Step BootstrapStep
}

func (BootstrapChainRequest) Tag() Tag { return TagBootstrapChainRequest }

func (p BootstrapChainRequest) encodeBody(w *wireformat.Writer) {
	w.WriteU8(uint8(p.Step))
}

func decodeBootstrapChainRequest(r *wireformat.Reader) (Packet, error) {
	s, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	step := BootstrapStep(s)
	if !step.valid() {
		return nil, nodeerr.New(nodeerr.InvalidBootstrapStep, "packet: unknown bootstrap step")
	}
	return BootstrapChainRequest{Step: step}, nil
}

// BootstrapChainResponse carries one stage's raw payload.
type BootstrapChainResponse struct {
	Step BootstrapStep
	Data []byte
}

func (BootstrapChainResponse) Tag() Tag { return TagBootstrapChainResponse }

func (p BootstrapChainResponse) encodeBody(w *wireformat.Writer) {
	w.WriteU8(uint8(p.Step))
	w.WriteBytes(p.Data)
}

func decodeBootstrapChainResponse(r *wireformat.Reader) (Packet, error) {
	s, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	step := BootstrapStep(s)
	if !step.valid() {
		return nil, nodeerr.New(nodeerr.InvalidBootstrapStep, "packet: unknown bootstrap step")
	}
	data, err := r.ReadBytes()
	if err != nil {
		return nil, err
	}
	return BootstrapChainResponse{Step: step, Data: data}, nil
}

// PeerDisconnected notifies RPC subscribers (or a peer, for courtesy
// close) that a peer connection ended.
type PeerDisconnected struct {
	Reason string
}

func (PeerDisconnected) Tag() Tag { return TagPeerDisconnected }

func (p PeerDisconnected) encodeBody(w *wireformat.Writer) {
	w.WriteString(p.Reason)
}

func decodePeerDisconnected(r *wireformat.Reader) (Packet, error) {
	reason, err := r.ReadString()
	if err != nil {
		return nil, err
	}
	return PeerDisconnected{Reason: reason}, nil
}

func init() {
	register(TagBootstrapChainRequest, decodeBootstrapChainRequest)
	register(TagBootstrapChainResponse, decodeBootstrapChainResponse)
	register(TagPeerDisconnected, decodePeerDisconnected)
}
