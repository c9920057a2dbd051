package packet

import (
	"testing"

	"duskdag.dev/node/hashid"
	"duskdag.dev/node/nodeerr"
	"duskdag.dev/node/ping"
)

func TestEnvelopeRoundTripPingZeroValue(t *testing.T) {
	p := PingPacket{Payload: ping.Payload{
		TopHash:              hashid.Hash{},
		Topoheight:           0,
		Height:               0,
		PrunedTopoheight:     nil,
		CumulativeDifficulty: hashid.DifficultyFromUint64(0),
		PeerList:             nil,
	}}

	enc := EncodeEnvelope(p)
	// 32 (hash) + 8 (topoheight) + 8 (height) + 1 (option flag) +
	// 2 (u16 length prefix, zero-length difficulty magnitude) + 1 (peer count) = 52
	wantBodyLen := 52
	if len(enc) != 4+1+wantBodyLen {
		t.Fatalf("expected length 4+1+%d=%d, got %d", wantBodyLen, 4+1+wantBodyLen, len(enc))
	}

	decoded, err := DecodeEnvelope(enc)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	got, ok := decoded.(PingPacket)
	if !ok {
		t.Fatalf("expected PingPacket, got %T", decoded)
	}
	if got.Payload.TopHash != p.Payload.TopHash || got.Payload.Topoheight != p.Payload.Topoheight {
		t.Fatalf("roundtrip mismatch: %+v vs %+v", got.Payload, p.Payload)
	}
}

func TestEnvelopeLengthInvariant(t *testing.T) {
	p := Handshake{NetworkID: hashid.Hash{1}, PeerID: hashid.Hash{2}, TopHash: hashid.Hash{3}, Topoheight: 5, Height: 5}
	enc := EncodeEnvelope(p)
	if len(enc) != 4+1+(32+32+32+8+8) {
		t.Fatalf("unexpected encoded length: %d", len(enc))
	}
}

func TestDecodeEnvelopeTruncationErrors(t *testing.T) {
	p := Handshake{NetworkID: hashid.Hash{1}, PeerID: hashid.Hash{2}}
	enc := EncodeEnvelope(p)
	if _, err := DecodeEnvelope(enc[:len(enc)-1]); err == nil {
		t.Fatal("expected an error for a truncated envelope")
	}
}

func TestDecodeEnvelopeRejectsTrailingBytes(t *testing.T) {
	p := Handshake{NetworkID: hashid.Hash{1}, PeerID: hashid.Hash{2}}
	enc := EncodeEnvelope(p)
	// Inflate the declared length so the body reader sees extra bytes
	// beyond what decodeHandshake consumes.
	tampered := append(append([]byte{}, enc...), 0xFF)
	tampered[3] = byte(len(tampered) - 4) // low byte of the u32 length field
	if _, err := DecodeEnvelope(tampered); !nodeerr.Is(err, nodeerr.InvalidPacketNotFullRead) {
		t.Fatalf("expected InvalidPacketNotFullRead, got %v", err)
	}
}

func TestWrappedTransactionPropagationRoundTrip(t *testing.T) {
	txHash := hashid.Hash{9, 9, 9}
	p := TransactionPropagation{Wrapped[hashid.Hash]{
		Payload: txHash,
		Ping: ping.Payload{
			TopHash:              hashid.Hash{1},
			CumulativeDifficulty: hashid.DifficultyFromUint64(42),
		},
	}}
	enc := EncodeEnvelope(p)
	decoded, err := DecodeEnvelope(enc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok := decoded.(TransactionPropagation)
	if !ok {
		t.Fatalf("expected TransactionPropagation, got %T", decoded)
	}
	if got.Payload != txHash {
		t.Fatalf("expected payload hash %v, got %v", txHash, got.Payload)
	}
	if got.Ping.CumulativeDifficulty.Compare(hashid.DifficultyFromUint64(42)) != 0 {
		t.Fatalf("expected piggybacked ping difficulty 42, got %v", got.Ping.CumulativeDifficulty)
	}
}

func TestDecodeEnvelopeUnknownTag(t *testing.T) {
	enc := []byte{0, 0, 0, 1, 255}
	if _, err := DecodeEnvelope(enc); !nodeerr.Is(err, nodeerr.InvalidPacket) {
		t.Fatalf("expected InvalidPacket, got %v", err)
	}
}
