package packet

import (
	"duskdag.dev/node/hashid"
	"duskdag.dev/node/wireformat"
)

func encodeHash(w *wireformat.Writer, h hashid.Hash) { w.WriteHash(h) }

func decodeHash(r *wireformat.Reader) (hashid.Hash, error) { return r.ReadHash() }

// TransactionPropagation announces a transaction by hash; the receiver
// pulls the body via ObjectRequest if it doesn't already have it.
// BlockPropagation announces a block by hash under the same
// pull-on-miss model. Both wrap the same Wrapped[hashid.Hash] shape,
// so each gets its own named struct rather than a type alias, which
// would force both onto a single Tag() method.
type TransactionPropagation struct{ Wrapped[hashid.Hash] }
type BlockPropagation struct{ Wrapped[hashid.Hash] }

func (TransactionPropagation) Tag() Tag { return TagTransactionPropagation }
func (p TransactionPropagation) encodeBody(w *wireformat.Writer) {
	encodeWrapped(w, p.Wrapped, encodeHash)
}

func (BlockPropagation) Tag() Tag { return TagBlockPropagation }
func (p BlockPropagation) encodeBody(w *wireformat.Writer) {
	encodeWrapped(w, p.Wrapped, encodeHash)
}

func decodeTransactionPropagation(r *wireformat.Reader) (Packet, error) {
	w, err := decodeWrapped(r, decodeHash)
	if err != nil {
		return nil, err
	}
	return TransactionPropagation{w}, nil
}

func decodeBlockPropagation(r *wireformat.Reader) (Packet, error) {
	w, err := decodeWrapped(r, decodeHash)
	if err != nil {
		return nil, err
	}
	return BlockPropagation{w}, nil
}

func init() {
	register(TagTransactionPropagation, decodeTransactionPropagation)
	register(TagBlockPropagation, decodeBlockPropagation)
}
