package validation

import (
	"context"

	"github.com/ironpeak/mimblecore/pkg/block"
	"github.com/ironpeak/mimblecore/pkg/mwcrypto"
	"github.com/ironpeak/mimblecore/pkg/mwtx"
	"github.com/ironpeak/mimblecore/pkg/types"
)

// ReadSnapshot is the read-only view of the output set each worker consults.
// internal/utxo.Store implements this directly.
type ReadSnapshot interface {
	// OutputExists reports whether an unspent output with the given hash is
	// present in the set (check_input_is_utxo's underlying lookup).
	OutputExists(hash types.Hash) (bool, error)
	// IsDuplicateOutput reports whether an output with the same commitment
	// and features already exists (check_not_duplicate_txo).
	IsDuplicateOutput(commitment mwcrypto.Commitment, features mwtx.OutputFeatures) (bool, error)
}

// ReadSnapshotProvider hands out independent ReadSnapshot handles, one per
// worker, per §5's "global read-snapshot vs per-worker snapshots" contract.
// A provider whose underlying storage is already safe for concurrent reads
// (as internal/utxo.Store is, backed by badger) may return the same handle
// every time.
type ReadSnapshotProvider interface {
	Snapshot() (ReadSnapshot, error)
}

// MmrRoots is the set of four roots the database recomputes after applying
// a block's body to the current tip.
type MmrRoots struct {
	OutputRoot     types.Hash
	KernelRoot     types.Hash
	InputRoot      types.Hash
	RangeProofRoot types.Hash
}

// MmrCalculator recomputes the post-application MMR roots for a candidate
// block. It is consumed, never implemented, by internal/validation; the
// concrete implementation lives in internal/utxo.
type MmrCalculator interface {
	CalculateMmrRoots(ctx context.Context, blk *block.Block) (*block.Block, MmrRoots, error)
}
