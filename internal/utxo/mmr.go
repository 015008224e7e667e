package utxo

import (
	"context"
	"fmt"
	"sort"

	"github.com/ironpeak/mimblecore/internal/validation"
	"github.com/ironpeak/mimblecore/pkg/block"
	"github.com/ironpeak/mimblecore/pkg/crypto"
	"github.com/ironpeak/mimblecore/pkg/types"
)

// MmrCalculator recomputes the four post-application MMR roots the body
// validator cross-checks against the header. It satisfies
// internal/validation.MmrCalculator.
//
// Scope note: persisting a true append-only Merkle Mountain Range across
// the chain's lifetime is outside this module's remit (storage format of
// outputs/kernels is an explicit spec Non-goal). OutputMMRRoot reflects the
// projected output set — existing unspent outputs plus this block's own,
// minus the outputs its inputs spend. KernelMMRRoot, InputMMRRoot and
// RangeProofMMRRoot are computed over this block's own elements, matching
// the commitment a real MMR's latest peak would produce for one newly
// appended block.
type MmrCalculator struct {
	outputs *Store
}

func NewMmrCalculator(outputs *Store) *MmrCalculator {
	return &MmrCalculator{outputs: outputs}
}

func (m *MmrCalculator) CalculateMmrRoots(ctx context.Context, blk *block.Block) (*block.Block, validation.MmrRoots, error) {
	outputRoot, err := m.projectedOutputRoot(blk)
	if err != nil {
		return nil, validation.MmrRoots{}, err
	}

	kernelHashes := make([]types.Hash, len(blk.Body.Kernels))
	for i, k := range blk.Body.Kernels {
		kernelHashes[i] = k.Hash()
	}
	inputHashes := make([]types.Hash, len(blk.Body.Inputs))
	for i, in := range blk.Body.Inputs {
		inputHashes[i] = in.Hash()
	}
	rangeProofHashes := make([]types.Hash, len(blk.Body.Outputs))
	for i, o := range blk.Body.Outputs {
		rangeProofHashes[i] = crypto.Hash(o.RangeProof)
	}

	roots := validation.MmrRoots{
		OutputRoot:     outputRoot,
		KernelRoot:     block.ComputeMerkleRoot(kernelHashes),
		InputRoot:      block.ComputeMerkleRoot(inputHashes),
		RangeProofRoot: block.ComputeMerkleRoot(rangeProofHashes),
	}
	return blk, roots, nil
}

// projectedOutputRoot computes OutputSetRoot as it would read immediately
// after blk were applied: its inputs' spent commitments removed from the
// current set, its own outputs added.
func (m *MmrCalculator) projectedOutputRoot(blk *block.Block) (types.Hash, error) {
	spent := make(map[string]bool, len(blk.Body.Inputs))
	for _, in := range blk.Body.Inputs {
		spent[string(in.Commitment.Bytes())] = true
	}

	var hashes []types.Hash
	err := m.outputs.ForEach(func(o *Output) error {
		if spent[string(o.Commitment.Bytes())] {
			return nil
		}
		hashes = append(hashes, hashOutput(o))
		return nil
	})
	if err != nil {
		return types.Hash{}, fmt.Errorf("project output set: %w", err)
	}
	for _, o := range blk.Body.Outputs {
		hashes = append(hashes, hashOutput(&Output{Commitment: o.Commitment, Features: o.Features}))
	}

	if len(hashes) == 0 {
		return types.Hash{}, nil
	}
	sort.Slice(hashes, func(i, j int) bool { return hashLess(hashes[i], hashes[j]) })
	return block.ComputeMerkleRoot(hashes), nil
}
