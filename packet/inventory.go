package packet

import (
	"duskdag.dev/node/hashid"
	"duskdag.dev/node/nodeerr"
	"duskdag.dev/node/wireformat"
)

// InventoryRequest asks for one page of a peer's known-object
// inventory.
type InventoryRequest struct {
	PageID uint64
}

func (r InventoryRequest) encode(w *wireformat.Writer) { w.WriteU64(r.PageID) }

func decodeInventoryRequest(r *wireformat.Reader) (InventoryRequest, error) {
	pageID, err := r.ReadU64()
	if err != nil {
		return InventoryRequest{}, err
	}
	return InventoryRequest{PageID: pageID}, nil
}

// NotifyInventoryRequest is the wrapped pagination request (tag 8).
type NotifyInventoryRequest struct {
	Wrapped[InventoryRequest]
}

func (NotifyInventoryRequest) Tag() Tag { return TagNotifyInventoryRequest }
func (p NotifyInventoryRequest) encodeBody(w *wireformat.Writer) {
	encodeWrapped(w, p.Wrapped, func(w *wireformat.Writer, v InventoryRequest) { v.encode(w) })
}

func decodeNotifyInventoryRequest(r *wireformat.Reader) (Packet, error) {
	w, err := decodeWrapped(r, decodeInventoryRequest)
	if err != nil {
		return nil, err
	}
	return NotifyInventoryRequest{w}, nil
}

// NotifyInventoryResponse answers a paginated inventory request.
// NextPageID is nil once the requester has reached the final page; a
// PageID that doesn't match any known page is InvalidInventoryPagination,
// enforced by the handler, not decoding.
type NotifyInventoryResponse struct {
	PageID     uint64
	NextPageID *uint64
	Items      []hashid.Hash
}

func (NotifyInventoryResponse) Tag() Tag { return TagNotifyInventoryResponse }

func (p NotifyInventoryResponse) encodeBody(w *wireformat.Writer) {
	w.WriteU64(p.PageID)
	wireformat.WriteOptionU64(w, p.NextPageID)
	w.WriteHashVec(p.Items)
}

func decodeNotifyInventoryResponse(r *wireformat.Reader) (Packet, error) {
	pageID, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	next, err := r.ReadOptionU64()
	if err != nil {
		return nil, err
	}
	items, err := r.ReadHashVec()
	if err != nil {
		return nil, err
	}
	if next != nil && *next <= pageID {
		return nil, nodeerr.New(nodeerr.InvalidInventoryPagination, "packet: next_page_id must advance past page_id")
	}
	return NotifyInventoryResponse{PageID: pageID, NextPageID: next, Items: items}, nil
}

func init() {
	register(TagNotifyInventoryRequest, decodeNotifyInventoryRequest)
	register(TagNotifyInventoryResponse, decodeNotifyInventoryResponse)
}
