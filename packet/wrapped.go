package packet

import (
	"duskdag.dev/node/ping"
	"duskdag.dev/node/wireformat"
)

// Wrapped composes an inner payload with a piggybacked Ping: the two
// are serialized back-to-back, payload first. This is composition, not
// inheritance — any new wrapped variant is just a new tag plus a
// constructor, never a new base type.
type Wrapped[T any] struct {
	Payload T
	Ping    ping.Payload
}

func encodeWrapped[T any](w *wireformat.Writer, v Wrapped[T], encodeInner func(*wireformat.Writer, T)) {
	encodeInner(w, v.Payload)
	ping.Encode(w, v.Ping)
}

func decodeWrapped[T any](r *wireformat.Reader, decodeInner func(*wireformat.Reader) (T, error)) (Wrapped[T], error) {
	var out Wrapped[T]
	payload, err := decodeInner(r)
	if err != nil {
		return out, err
	}
	p, err := ping.Decode(r)
	if err != nil {
		return out, err
	}
	out.Payload = payload
	out.Ping = p
	return out, nil
}
