package validation

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ironpeak/mimblecore/internal/log"
	"github.com/ironpeak/mimblecore/pkg/block"
	"github.com/ironpeak/mimblecore/pkg/mwtx"
	"github.com/ironpeak/mimblecore/pkg/types"
)

// BodyValidator is the concurrent block-body validator: a pure function of
// a read-only chain snapshot plus one block, returning a canonicalised
// block or a tagged ValidationError. It never mutates the database and
// never calls into internal/consensus — header validation is assumed to
// have already passed.
type BodyValidator struct {
	snapshots        ReadSnapshotProvider
	mmr              MmrCalculator
	rules            ConsensusParams
	factories        CryptoFactories
	bypassRangeProof bool
	concurrency      int
}

// NewBodyValidator constructs the validator. Enabling bypassRangeProof
// skips Bulletproof verification entirely (§4.D, §6) and is logged at Warn
// level here since it is operator-controlled and must be prominently
// surfaced, not buried in debug output.
func NewBodyValidator(snapshots ReadSnapshotProvider, mmr MmrCalculator, rules ConsensusParams, factories CryptoFactories, bypassRangeProof bool, concurrency int) *BodyValidator {
	if bypassRangeProof {
		log.Validation.Warn().Msg("range proof verification is bypassed; this must never be enabled against real value")
	}
	return &BodyValidator{
		snapshots:        snapshots,
		mmr:              mmr,
		rules:            rules,
		factories:        factories,
		bypassRangeProof: bypassRangeProof,
		concurrency:      concurrency,
	}
}

// ValidateBody dissolves the block into header/inputs/outputs/kernels,
// dispatches the three sub-validators in parallel, and runs the final
// balance and MMR-root checks. Cancelling ctx aborts every in-flight
// worker; no partial state is ever returned.
func (v *BodyValidator) ValidateBody(ctx context.Context, blk *block.Block) (*block.Block, error) {
	log.Validation.Debug().
		Uint64("height", blk.Header.Height).
		Int("inputs", len(blk.Body.Inputs)).
		Int("outputs", len(blk.Body.Outputs)).
		Int("kernels", len(blk.Body.Kernels)).
		Msg("validating block body")

	constants := v.rules.ConsensusConstants(blk.Header.Height)
	if err := checkBlockWeight(blk.Body, constants); err != nil {
		return nil, err
	}

	// The only ordering check that cannot run concurrently with sharding:
	// OutputValidator assumes the pre-sharding order is already canonical
	// so that re-sorting by original_index recovers it.
	if !blk.Body.OutputsSorted() {
		return nil, newErr(KindUnsortedOrDuplicateOutput, "")
	}

	blockOutputs := make(map[types.Hash]struct{}, len(blk.Body.Outputs))
	for _, o := range blk.Body.Outputs {
		blockOutputs[o.Hash()] = struct{}{}
	}

	outputValidator := NewOutputValidator(v.snapshots, v.factories.RangeProof, v.bypassRangeProof, v.concurrency)
	inputValidator := NewInputValidator(v.snapshots)
	kernelValidator := NewKernelValidator(v.factories, v.rules)

	var outputData *OutputValidationData
	var inputData *InputValidationData
	var kernelData *KernelValidationData
	var outputErr, inputErr, kernelErr error

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &ValidationError{Kind: KindWorkerPanic, Detail: fmt.Sprintf("output validator: %v", r)}
			}
			outputErr = err
		}()
		outputData, err = outputValidator.Validate(gctx, blk.Body.Outputs)
		return err
	})

	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &ValidationError{Kind: KindWorkerPanic, Detail: fmt.Sprintf("input validator: %v", r)}
			}
			inputErr = err
		}()
		inputData, err = inputValidator.Validate(blk.Header, blockOutputs, blk.Body.Inputs)
		return err
	})

	g.Go(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &ValidationError{Kind: KindWorkerPanic, Detail: fmt.Sprintf("kernel validator: %v", r)}
			}
			kernelErr = err
		}()
		kernelData, err = kernelValidator.Validate(blk.Header, blk.Body.Kernels)
		return err
	})

	// g.Wait's return value only matters for triggering gctx cancellation
	// above; the deterministic error precedence (outputs, then inputs,
	// then kernels, per §4.E/§7) is enforced explicitly below regardless
	// of which goroutine actually finished first.
	_ = g.Wait()

	if err := asValidationError(outputErr); err != nil {
		return nil, err
	}
	if err := asValidationError(inputErr); err != nil {
		return nil, err
	}
	if err := asValidationError(kernelErr); err != nil {
		return nil, err
	}

	coinbaseKernel := kernelData.Kernels[kernelData.CoinbaseIndex]
	coinbaseOutput := outputData.Outputs[outputData.CoinbaseIndex]

	if err := checkCoinbaseReward(v.factories.Commitment, v.rules, blk.Header, kernelData.KernelSum.Fees, coinbaseKernel, coinbaseOutput); err != nil {
		return nil, err
	}
	if err := checkScriptOffset(blk.Header, outputData.AggregateSenderOffset, inputData.AggregateInputKey); err != nil {
		return nil, err
	}
	if err := checkKernelSum(kernelData.KernelSum, outputData.CommitmentSum, inputData.CommitmentSum); err != nil {
		return nil, err
	}

	canonicalBody := mwtx.NewSortedUncheckedAggregateBody(inputData.Inputs, outputData.Outputs, kernelData.Kernels)
	canonical := block.NewBlock(blk.Header, canonicalBody)

	recomputed, roots, err := v.mmr.CalculateMmrRoots(ctx, canonical)
	if err != nil {
		return nil, wrapErr(KindDatabaseError, "calculate_mmr_roots", err)
	}
	if err := checkMmrRoots(blk.Header, roots); err != nil {
		return nil, err
	}

	log.Validation.Debug().Uint64("height", blk.Header.Height).Msg("block body validated")
	return recomputed, nil
}

// asValidationError normalises a sub-validator's error: context
// cancellation is passed through unchanged (the caller already knows why
// it cancelled), *ValidationError is passed through, anything else
// (shouldn't happen once workers always return tagged errors) is wrapped
// as an unexpected worker failure.
func asValidationError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return wrapErr(KindWorkerPanic, "unexpected worker error", err)
}
