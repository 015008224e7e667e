package validation

import "github.com/ironpeak/mimblecore/pkg/mwtx"

// ConsensusConstants is the subset of protocol rules the body validator
// consults: the per-block weight budget and the weight contributed by each
// kind of element.
type ConsensusConstants struct {
	MaxBlockWeight  uint64
	WeightPerInput  uint64
	WeightPerOutput uint64
	WeightPerKernel uint64
}

// Weight returns the weighted cost of counts inputs/outputs/kernels, the
// quantity check_block_weight compares against MaxBlockWeight.
func (c ConsensusConstants) Weight(inputs, outputs, kernels int) uint64 {
	return uint64(inputs)*c.WeightPerInput + uint64(outputs)*c.WeightPerOutput + uint64(kernels)*c.WeightPerKernel
}

// ConsensusParams is the read-only rules object the validator is
// constructed with: weight budgets and the emission schedule.
type ConsensusParams interface {
	ConsensusConstants(height uint64) ConsensusConstants
	CalculateCoinbaseAndFees(height uint64, kernels []*mwtx.TransactionKernel) uint64
}

// DefaultConsensusParams implements ConsensusParams with a fixed weight
// budget and a geometrically decaying emission curve bottoming out at a
// tail emission, the same shape Tari's emission schedule uses.
type DefaultConsensusParams struct {
	MaxBlockWeight  uint64
	WeightPerInput  uint64
	WeightPerOutput uint64
	WeightPerKernel uint64

	InitialEmission uint64
	// DecayNumerator/DecayDenominator scale the reward down each block:
	// reward(h) = reward(h-1) * DecayNumerator / DecayDenominator.
	DecayNumerator   uint64
	DecayDenominator uint64
	TailEmission     uint64
}

// NewDefaultConsensusParams returns the parameters matching the protocol
// constants already in config/genesis.go (block/tx size limits) plus a
// mainnet-shaped emission curve.
func NewDefaultConsensusParams() *DefaultConsensusParams {
	return &DefaultConsensusParams{
		MaxBlockWeight:   2_000_000,
		WeightPerInput:   1,
		WeightPerOutput:  1,
		WeightPerKernel:  1,
		InitialEmission:  5000,
		DecayNumerator:   999_555,
		DecayDenominator: 1_000_000,
		TailEmission:     100,
	}
}

func (p *DefaultConsensusParams) ConsensusConstants(height uint64) ConsensusConstants {
	return ConsensusConstants{
		MaxBlockWeight:  p.MaxBlockWeight,
		WeightPerInput:  p.WeightPerInput,
		WeightPerOutput: p.WeightPerOutput,
		WeightPerKernel: p.WeightPerKernel,
	}
}

// emission returns the block subsidy at the given height.
func (p *DefaultConsensusParams) emission(height uint64) uint64 {
	reward := p.InitialEmission
	for i := uint64(0); i < height; i++ {
		reward = reward * p.DecayNumerator / p.DecayDenominator
		if reward <= p.TailEmission {
			return p.TailEmission
		}
	}
	return reward
}

// CalculateCoinbaseAndFees returns the block subsidy at height plus the sum
// of every kernel's fee, the quantity KernelValidator seeds its running sum
// with before iterating (§4.B).
func (p *DefaultConsensusParams) CalculateCoinbaseAndFees(height uint64, kernels []*mwtx.TransactionKernel) uint64 {
	total := p.emission(height)
	for _, k := range kernels {
		total += k.Fee
	}
	return total
}
