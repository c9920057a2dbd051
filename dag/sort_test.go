package dag

import (
	"context"
	"testing"

	"duskdag.dev/node/hashid"
	"duskdag.dev/node/nodeerr"
)

type mockProvider struct {
	heights map[hashid.Hash]uint64
	diffs   map[hashid.Hash]hashid.Difficulty
	failAll bool
}

func (m *mockProvider) HeightForBlockHash(_ context.Context, h hashid.Hash) (uint64, error) {
	if m.failAll {
		return 0, errAlwaysFails
	}
	return m.heights[h], nil
}

func (m *mockProvider) CumulativeDifficultyForBlockHash(_ context.Context, h hashid.Hash) (hashid.Difficulty, error) {
	if m.failAll {
		return hashid.Difficulty{}, errAlwaysFails
	}
	return m.diffs[h], nil
}

type sentinelErr struct{}

func (sentinelErr) Error() string { return "mock: unexpected call" }

var errAlwaysFails error = sentinelErr{}

func hashFromByte(b byte) hashid.Hash {
	var h hashid.Hash
	h[0] = b
	return h
}

func TestSortTipsEmptyIsExpectedTips(t *testing.T) {
	_, err := SortTips(context.Background(), &mockProvider{}, nil)
	if !nodeerr.Is(err, nodeerr.ExpectedTips) {
		t.Fatalf("expected ExpectedTips, got %v", err)
	}
}

func TestSortTipsSingleSkipsLookup(t *testing.T) {
	h := hashFromByte(0x07)
	out, err := SortTips(context.Background(), &mockProvider{failAll: true}, []hashid.Hash{h})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 1 || out[0] != h {
		t.Fatalf("expected [%v], got %v", h, out)
	}
}

func TestSortTipsTieBreakOnHash(t *testing.T) {
	h1 := hashFromByte(0x01)
	h2 := hashFromByte(0x02)
	p := &mockProvider{
		diffs: map[hashid.Hash]hashid.Difficulty{
			h1: hashid.DifficultyFromUint64(100),
			h2: hashid.DifficultyFromUint64(100),
		},
	}
	out, err := SortTips(context.Background(), p, []hashid.Hash{h1, h2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 || out[0] != h2 || out[1] != h1 {
		t.Fatalf("expected [h2, h1], got %v", out)
	}
}

func TestCalculateHeightAtTips(t *testing.T) {
	a, b := hashFromByte(0xAA), hashFromByte(0xBB)
	p := &mockProvider{
		heights: map[hashid.Hash]uint64{a: 5, b: 7},
	}
	height, err := CalculateHeightAtTips(context.Background(), p, []hashid.Hash{a, b})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if height != 8 {
		t.Fatalf("expected 8, got %d", height)
	}

	height, err = CalculateHeightAtTips(context.Background(), p, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if height != 0 {
		t.Fatalf("expected 0, got %d", height)
	}
}

func TestSortDescendingByCumulativeDifficultyDeterministic(t *testing.T) {
	scores := []TipScore{
		{Hash: hashFromByte(0x03), Difficulty: hashid.DifficultyFromUint64(10)},
		{Hash: hashFromByte(0x01), Difficulty: hashid.DifficultyFromUint64(50)},
		{Hash: hashFromByte(0x02), Difficulty: hashid.DifficultyFromUint64(50)},
	}
	SortDescendingByCumulativeDifficulty(scores)
	if scores[0].Difficulty.Compare(scores[1].Difficulty) < 0 {
		t.Fatalf("not sorted descending: %+v", scores)
	}
	// Ties broken by higher hash first.
	if scores[0].Hash != hashFromByte(0x02) || scores[1].Hash != hashFromByte(0x01) {
		t.Fatalf("tie-break order wrong: %+v", scores)
	}

	scoresCopy := append([]TipScore(nil), scores...)
	SortDescendingByCumulativeDifficulty(scoresCopy)
	for i := range scores {
		if scores[i] != scoresCopy[i] {
			t.Fatalf("sort is not idempotent/deterministic at %d", i)
		}
	}
}

func TestFindBestTipByCumulativeDifficulty(t *testing.T) {
	h1 := hashFromByte(0x01)
	h2 := hashFromByte(0x02)
	p := &mockProvider{
		diffs: map[hashid.Hash]hashid.Difficulty{
			h1: hashid.DifficultyFromUint64(5),
			h2: hashid.DifficultyFromUint64(9),
		},
	}
	best, err := FindBestTipByCumulativeDifficulty(context.Background(), p, []hashid.Hash{h1, h2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if best != h2 {
		t.Fatalf("expected h2 as best tip, got %v", best)
	}
}
