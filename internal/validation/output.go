package validation

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ironpeak/mimblecore/pkg/mwcrypto"
	"github.com/ironpeak/mimblecore/pkg/mwtx"
)

// OutputValidationData is the join product OutputValidator hands back,
// already re-ordered to match the pre-sharding output sequence.
type OutputValidationData struct {
	Outputs               []*mwtx.TransactionOutput
	AggregateSenderOffset mwcrypto.PubKey
	CommitmentSum         mwcrypto.Commitment
	CoinbaseIndex         int
}

// OutputValidator shards outputs across W worker goroutines for
// metadata-signature and range-proof verification, the one component whose
// per-item checks are expensive enough to parallelise (§4.D).
type OutputValidator struct {
	snapshots        ReadSnapshotProvider
	rangeProof       RangeProofVerifier
	bypassRangeProof bool
	concurrency      int
}

func NewOutputValidator(snapshots ReadSnapshotProvider, rangeProof RangeProofVerifier, bypassRangeProof bool, concurrency int) *OutputValidator {
	return &OutputValidator{
		snapshots:        snapshots,
		rangeProof:       rangeProof,
		bypassRangeProof: bypassRangeProof,
		concurrency:      concurrency,
	}
}

type indexedOutput struct {
	index  int
	output *mwtx.TransactionOutput
}

type outputWorkerResult struct {
	buffer          []indexedOutput
	aggregateOffset mwcrypto.PubKey
	commitmentSum   mwcrypto.Commitment
	coinbaseIndex   int // -1 means this worker saw no coinbase
}

// Validate shards outputs across min(concurrency, len(outputs)) workers
// sharing one index-tagged queue, then merges partials back into original
// order.
func (v *OutputValidator) Validate(ctx context.Context, outputs []*mwtx.TransactionOutput) (*OutputValidationData, error) {
	if len(outputs) == 0 {
		return nil, newErr(KindNoCoinbase, "block has no outputs")
	}

	workers := v.concurrency
	if workers < 1 {
		workers = 1
	}
	if workers > len(outputs) {
		workers = len(outputs)
	}

	queue := make(chan indexedOutput, len(outputs))
	for i, o := range outputs {
		queue <- indexedOutput{index: i, output: o}
	}
	close(queue)

	results := make([]outputWorkerResult, workers)
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = &ValidationError{Kind: KindWorkerPanic, Detail: fmt.Sprintf("output worker %d: %v", w, r)}
				}
			}()

			snapshot, err := v.snapshots.Snapshot()
			if err != nil {
				return wrapErr(KindDatabaseError, "output validator snapshot", err)
			}

			res := outputWorkerResult{coinbaseIndex: -1}
			for item := range queue {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}

				if item.output.IsCoinbase() {
					if res.coinbaseIndex != -1 {
						return newErr(KindMoreThanOneCoinbase, fmt.Sprintf("output %d", item.index))
					}
					res.coinbaseIndex = item.index
				} else {
					res.aggregateOffset = res.aggregateOffset.Add(item.output.SenderOffsetPublicKey)
				}

				if !item.output.VerifyMetadataSignature() {
					return newErr(KindInvalidSignature, fmt.Sprintf("output %d", item.index))
				}

				if !v.bypassRangeProof {
					if err := v.rangeProof.Verify(item.output); err != nil {
						return newErr(KindInvalidRangeProof, fmt.Sprintf("output %d", item.index))
					}
				}

				if err := checkNotDuplicateTxo(snapshot, item.output); err != nil {
					return err
				}

				res.commitmentSum = res.commitmentSum.Add(item.output.Commitment)
				res.buffer = append(res.buffer, item)
			}
			results[w] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, verr
		}
		return nil, wrapErr(KindWorkerPanic, "output shard", err)
	}

	// Merge: cross-worker coinbase collision (§9) is only caught here, at
	// merge time, not while each worker iterates its own shard.
	aggregateOffset := mwcrypto.ZeroPubKey
	commitmentSum := mwcrypto.IdentityCommitment
	coinbaseIndex := -1
	var merged []indexedOutput
	for _, res := range results {
		aggregateOffset = aggregateOffset.Add(res.aggregateOffset)
		commitmentSum = commitmentSum.Add(res.commitmentSum)
		if res.coinbaseIndex != -1 {
			if coinbaseIndex != -1 {
				return nil, newErr(KindMoreThanOneCoinbase, "coinbase split across workers")
			}
			coinbaseIndex = res.coinbaseIndex
		}
		merged = append(merged, res.buffer...)
	}
	if coinbaseIndex == -1 {
		return nil, newErr(KindNoCoinbase, "")
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].index < merged[j].index })
	ordered := make([]*mwtx.TransactionOutput, len(merged))
	for i, m := range merged {
		ordered[i] = m.output
	}

	return &OutputValidationData{
		Outputs:               ordered,
		AggregateSenderOffset: aggregateOffset,
		CommitmentSum:         commitmentSum,
		CoinbaseIndex:         coinbaseIndex,
	}, nil
}
