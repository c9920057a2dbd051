package packet

import (
	"duskdag.dev/node/hashid"
	"duskdag.dev/node/nodeerr"
	"duskdag.dev/node/wireformat"
)

// ObjectKind discriminates what an ObjectRequest/ObjectResponse refers
// to.
type ObjectKind uint8

const (
	ObjectKindBlock       ObjectKind = 0
	ObjectKindTransaction ObjectKind = 1
)

// ObjectRequest asks a peer for the full body of a previously
// propagated or inventoried hash.
type ObjectRequest struct {
	Kind ObjectKind
	Hash hashid.Hash
}

func (ObjectRequest) Tag() Tag { return TagObjectRequest }

func (p ObjectRequest) encodeBody(w *wireformat.Writer) {
	w.WriteU8(uint8(p.Kind))
	w.WriteHash(p.Hash)
}

func decodeObjectRequest(r *wireformat.Reader) (Packet, error) {
	k, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	h, err := r.ReadHash()
	if err != nil {
		return nil, err
	}
	return ObjectRequest{Kind: ObjectKind(k), Hash: h}, nil
}

// ObjectResponse answers an ObjectRequest. Found=false with an empty
// Data means the object is unknown (ObjectNotFound is raised by the
// requester's matching logic, not by decoding).
type ObjectResponse struct {
	Kind  ObjectKind
	Hash  hashid.Hash
	Found bool
	Data  []byte
}

func (ObjectResponse) Tag() Tag { return TagObjectResponse }

func (p ObjectResponse) encodeBody(w *wireformat.Writer) {
	w.WriteU8(uint8(p.Kind))
	w.WriteHash(p.Hash)
	w.WriteBool(p.Found)
	w.WriteBytes(p.Data)
}

func decodeObjectResponse(r *wireformat.Reader) (Packet, error) {
	k, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	h, err := r.ReadHash()
	if err != nil {
		return nil, err
	}
	found, err := r.ReadBool()
	if err != nil {
		return nil, err
	}
	data, err := r.ReadBytes()
	if err != nil {
		return nil, err
	}
	if !found && len(data) != 0 {
		return nil, nodeerr.New(nodeerr.InvalidObjectResponse, "packet: not-found response carries a body")
	}
	return ObjectResponse{Kind: ObjectKind(k), Hash: h, Found: found, Data: data}, nil
}

func init() {
	register(TagObjectRequest, decodeObjectRequest)
	register(TagObjectResponse, decodeObjectResponse)
}
