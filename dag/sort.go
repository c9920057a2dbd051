package dag

import (
	"context"
	"sort"

	"duskdag.dev/node/hashid"
	"duskdag.dev/node/nodeerr"
)

// TipScore pairs a tip hash with its cumulative difficulty, the unit
// sort_tips and sort_descending_by_cumulative_difficulty operate on.
type TipScore struct {
	Hash       hashid.Hash
	Difficulty hashid.Difficulty
}

// SortDescendingByCumulativeDifficulty orders scores in place so that
// higher cumulative difficulty comes first; on equal difficulty, the
// higher hash (lexicographically) comes first. The tie-break is part of
// the consensus contract: it must be deterministic across
// implementations, so this is a total order over (difficulty, hash).
func SortDescendingByCumulativeDifficulty(scores []TipScore) {
	sort.Slice(scores, func(i, j int) bool {
		c := scores[i].Difficulty.Compare(scores[j].Difficulty)
		if c != 0 {
			return c > 0
		}
		return scores[j].Hash.Less(scores[i].Hash)
	})
}

// SortTips orders tips by cumulative difficulty (descending, hash
// tie-break) and returns the resulting hash order.
//
// An empty tip set is an error (ExpectedTips): there is no well-defined
// order for zero tips. A single tip is returned verbatim without any
// storage lookup — this is observable via a DifficultyProvider mock that
// fails on any call.
func SortTips(ctx context.Context, provider DifficultyProvider, tips []hashid.Hash) ([]hashid.Hash, error) {
	if len(tips) == 0 {
		return nil, nodeerr.New(nodeerr.ExpectedTips, "sort_tips: empty tip set")
	}
	if len(tips) == 1 {
		out := make([]hashid.Hash, 1)
		out[0] = tips[0]
		return out, nil
	}

	scores := make([]TipScore, len(tips))
	for i, h := range tips {
		d, err := provider.CumulativeDifficultyForBlockHash(ctx, h)
		if err != nil {
			return nil, err
		}
		scores[i] = TipScore{Hash: h, Difficulty: d}
	}
	SortDescendingByCumulativeDifficulty(scores)

	if len(scores) >= 2 {
		a, b := scores[0], scores[1]
		c := a.Difficulty.Compare(b.Difficulty)
		ordered := c > 0 || (c == 0 && !a.Hash.Less(b.Hash))
		if !ordered {
			return nil, nodeerr.New(nodeerr.InvalidValue, "sort_tips: internal ordering invariant violated")
		}
	}

	out := make([]hashid.Hash, len(scores))
	for i, s := range scores {
		out[i] = s.Hash
	}
	return out, nil
}

// CalculateHeightAtTips returns max(HeightForBlockHash(t) for t in tips) + 1
// when tips is non-empty, or 0 for the genesis case.
func CalculateHeightAtTips(ctx context.Context, provider DifficultyProvider, tips []hashid.Hash) (uint64, error) {
	if len(tips) == 0 {
		return 0, nil
	}
	var maxHeight uint64
	for i, t := range tips {
		h, err := provider.HeightForBlockHash(ctx, t)
		if err != nil {
			return 0, err
		}
		if i == 0 || h > maxHeight {
			maxHeight = h
		}
	}
	return maxHeight + 1, nil
}

// FindBestTipByCumulativeDifficulty returns the best tip among competing
// parents: the first element of the sort_tips order. Same failure modes
// and tie-breaking rules as SortTips.
func FindBestTipByCumulativeDifficulty(ctx context.Context, provider DifficultyProvider, tips []hashid.Hash) (hashid.Hash, error) {
	sorted, err := SortTips(ctx, provider, tips)
	if err != nil {
		return hashid.Hash{}, err
	}
	return sorted[0], nil
}
