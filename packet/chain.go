package packet

import (
	"duskdag.dev/node/hashid"
	"duskdag.dev/node/nodeerr"
	"duskdag.dev/node/wireformat"
)

// MaxLocatorHashes bounds ChainRequest's locator.
const MaxLocatorHashes = 64

// MaxChainResponseHeaders bounds ChainResponse's header batch; a larger
// response size is a protocol violation (InvaliChainResponseSize).
// Decoding reads the count through ReadContainerLen, which already
// rejects any count above wireformat.MaxItems (1024) with InvalidSize,
// so on the wire no response above 1024 headers gets this far.
const MaxChainResponseHeaders = 2000

// ChainLocator is a sparse set of known block hashes, closest-first,
// used to find the common ancestor with a peer.
type ChainLocator struct {
	Hashes []hashid.Hash
}

func (l ChainLocator) encode(w *wireformat.Writer) {
	w.WriteHashVec(l.Hashes)
}

func decodeChainLocator(r *wireformat.Reader) (ChainLocator, error) {
	hashes, err := r.ReadHashVec()
	if err != nil {
		return ChainLocator{}, err
	}
	if len(hashes) > MaxLocatorHashes {
		return ChainLocator{}, nodeerr.New(nodeerr.InvalidSize, "packet: chain locator exceeds MaxLocatorHashes")
	}
	return ChainLocator{Hashes: hashes}, nil
}

// ChainRequest asks a peer for block headers following the locator.
type ChainRequest struct {
	Wrapped[ChainLocator]
}

func (ChainRequest) Tag() Tag { return TagChainRequest }
func (p ChainRequest) encodeBody(w *wireformat.Writer) {
	encodeWrapped(w, p.Wrapped, func(w *wireformat.Writer, l ChainLocator) { l.encode(w) })
}

func decodeChainRequest(r *wireformat.Reader) (Packet, error) {
	w, err := decodeWrapped(r, decodeChainLocator)
	if err != nil {
		return nil, err
	}
	return ChainRequest{w}, nil
}

// HeaderSummary is the minimal per-block information a ChainResponse
// carries: enough for the requester to extend its local DAG view
// without fetching full bodies yet.
type HeaderSummary struct {
	Hash   hashid.Hash
	Tips   []hashid.Hash
	Height uint64
}

// ChainResponse answers a ChainRequest with a bounded batch of headers.
// It is not wrapped: a response with no outstanding request is rejected
// by protocolrules (UnrequestedChainResponse), independent of framing.
type ChainResponse struct {
	Headers []HeaderSummary
}

func (ChainResponse) Tag() Tag { return TagChainResponse }

func (p ChainResponse) encodeBody(w *wireformat.Writer) {
	w.WriteU16(uint16(len(p.Headers)))
	for _, h := range p.Headers {
		w.WriteHash(h.Hash)
		w.WriteHashVec(h.Tips)
		w.WriteU64(h.Height)
	}
}

func decodeChainResponse(r *wireformat.Reader) (Packet, error) {
	n, err := r.ReadContainerLen()
	if err != nil {
		return nil, err
	}
	if n > MaxChainResponseHeaders {
		return nil, nodeerr.New(nodeerr.InvalidChainResponseSize, "packet: chain response exceeds MaxChainResponseHeaders")
	}
	headers := make([]HeaderSummary, 0, n)
	for i := 0; i < n; i++ {
		hash, err := r.ReadHash()
		if err != nil {
			return nil, err
		}
		tips, err := r.ReadHashVec()
		if err != nil {
			return nil, err
		}
		height, err := r.ReadU64()
		if err != nil {
			return nil, err
		}
		headers = append(headers, HeaderSummary{Hash: hash, Tips: tips, Height: height})
	}
	return ChainResponse{Headers: headers}, nil
}

func init() {
	register(TagChainRequest, decodeChainRequest)
	register(TagChainResponse, decodeChainResponse)
}
