package block

import "duskdag.dev/node/hashid"

// AssetHash identifies a fungible asset (the chain's native asset and
// any others registered on it).
type AssetHash = hashid.Hash

// Transfer moves an encrypted amount of a single asset to a recipient.
// ExtraData is opaque application payload; its interpretation is left
// to callers.
type Transfer struct {
	Recipient PublicKey
	Asset     AssetHash
	Amount    []byte // opaque ciphertext bytes; arithmetic is out of scope
	ExtraData []byte
}

// TransactionPayload is the minimal payload variant the core requires:
// a list of transfers. Other payload kinds (contract calls, burns,
// ...) are out of scope for the core.
type TransactionPayload struct {
	Transfers []Transfer
}

// Transaction carries an owner public key, nonce, fee, and a payload.
type Transaction struct {
	Owner   PublicKey
	Nonce   uint64
	Fee     uint64
	Payload TransactionPayload
}

// GetModifiedAccounts yields every account whose balance this
// transaction will touch: the owner (who pays the fee and whose nonce
// advances) and every transfer recipient. Order is the owner first,
// then recipients in transfer order, with duplicates removed so that
// CachedState.InitFromStorageForTx does not hydrate an account twice.
func (tx *Transaction) GetModifiedAccounts() []PublicKey {
	seen := make(map[PublicKey]struct{}, len(tx.Payload.Transfers)+1)
	out := make([]PublicKey, 0, len(tx.Payload.Transfers)+1)

	add := func(pk PublicKey) {
		if _, ok := seen[pk]; ok {
			return
		}
		seen[pk] = struct{}{}
		out = append(out, pk)
	}

	add(tx.Owner)
	for _, tr := range tx.Payload.Transfers {
		add(tr.Recipient)
	}
	return out
}
