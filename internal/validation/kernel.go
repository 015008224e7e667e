package validation

import (
	"fmt"

	"github.com/ironpeak/mimblecore/pkg/block"
	"github.com/ironpeak/mimblecore/pkg/mwtx"
)

// KernelValidationData is the join product KernelValidator hands back to
// the orchestrator: the kernel sequence (already sorted on input), the
// accumulated balance, and the index of the single coinbase kernel.
type KernelValidationData struct {
	Kernels       []*mwtx.TransactionKernel
	KernelSum     mwtx.KernelSum
	CoinbaseIndex int
}

// KernelValidator sequentially verifies kernel excess signatures and
// accumulates the block's kernel sum. It runs on its own blocking worker
// (signature verification is CPU-bound) alongside InputValidator and
// OutputValidator.
type KernelValidator struct {
	factories CryptoFactories
	rules     ConsensusParams
}

func NewKernelValidator(factories CryptoFactories, rules ConsensusParams) *KernelValidator {
	return &KernelValidator{factories: factories, rules: rules}
}

// Validate checks every kernel in order and accumulates the running balance,
// seeded with commit(total_kernel_offset, coinbase_and_fees(height, kernels)).
func (v *KernelValidator) Validate(header *block.Header, kernels []*mwtx.TransactionKernel) (*KernelValidationData, error) {
	seed := v.rules.CalculateCoinbaseAndFees(header.Height, kernels)
	kernelSum := mwtx.KernelSum{Sum: v.factories.Commitment.Commit(header.TotalKernelOffset, seed)}

	coinbaseIndex := -1
	var maxTimelock uint64

	for i, k := range kernels {
		if !k.VerifySignature() {
			return nil, newErr(KindInvalidSignature, fmt.Sprintf("kernel %d", i))
		}

		if k.IsCoinbase() {
			if coinbaseIndex != -1 {
				return nil, newErr(KindMoreThanOneCoinbase, fmt.Sprintf("kernel %d", i))
			}
			coinbaseIndex = i
		}

		if k.LockHeight > maxTimelock {
			maxTimelock = k.LockHeight
		}
		kernelSum.Fees += k.Fee
		kernelSum.Sum = kernelSum.Sum.Add(k.Excess)
	}

	if maxTimelock > header.Height {
		return nil, newErr(KindMaturityError, fmt.Sprintf("lock_height %d exceeds block height %d", maxTimelock, header.Height))
	}
	if coinbaseIndex == -1 {
		return nil, newErr(KindNoCoinbase, "")
	}

	return &KernelValidationData{Kernels: kernels, KernelSum: kernelSum, CoinbaseIndex: coinbaseIndex}, nil
}
