// Package dag implements BlockDAG tip ordering: selecting the best tip
// among competing parents and computing block heights in the presence
// of multiple tips.
package dag

import (
	"context"

	"duskdag.dev/node/hashid"
)

// DifficultyProvider exposes height and cumulative-difficulty lookups
// keyed by block hash. Storage extends this interface; DAG ordering
// only ever needs this narrower view.
type DifficultyProvider interface {
	HeightForBlockHash(ctx context.Context, hash hashid.Hash) (uint64, error)
	CumulativeDifficultyForBlockHash(ctx context.Context, hash hashid.Hash) (hashid.Difficulty, error)
}
