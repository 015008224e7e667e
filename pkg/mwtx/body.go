package mwtx

import "sort"

// AggregateBody is the transactional payload of a block: its three element
// sequences, each required to be strictly ascending under the type's
// canonical order and free of duplicates once validated.
type AggregateBody struct {
	Inputs  []*TransactionInput  `json:"inputs"`
	Outputs []*TransactionOutput `json:"outputs"`
	Kernels []*TransactionKernel `json:"kernels"`
}

// NewAggregateBody builds a body from the given slices as they are, useful
// for constructing test fixtures or freshly assembled blocks before
// validation. It does not sort them; the *Sorted methods report whether
// they are in canonical order.
func NewAggregateBody(inputs []*TransactionInput, outputs []*TransactionOutput, kernels []*TransactionKernel) *AggregateBody {
	return &AggregateBody{Inputs: inputs, Outputs: outputs, Kernels: kernels}
}

// NewSortedUncheckedAggregateBody rebuilds a body from sequences already
// known to be sorted (e.g. the orchestrator's merged validation results).
// Like NewAggregateBody it stores the slices as given; callers must
// guarantee the ordering invariant themselves.
func NewSortedUncheckedAggregateBody(inputs []*TransactionInput, outputs []*TransactionOutput, kernels []*TransactionKernel) *AggregateBody {
	return &AggregateBody{Inputs: inputs, Outputs: outputs, Kernels: kernels}
}

// InputsSorted reports whether Inputs is strictly ascending with no duplicates.
func (b *AggregateBody) InputsSorted() bool {
	return sort.SliceIsSorted(b.Inputs, func(i, j int) bool { return InputLess(b.Inputs[i], b.Inputs[j]) }) &&
		noAdjacentEqualInputs(b.Inputs)
}

// OutputsSorted reports whether Outputs is strictly ascending with no duplicates.
func (b *AggregateBody) OutputsSorted() bool {
	return sort.SliceIsSorted(b.Outputs, func(i, j int) bool { return OutputLess(b.Outputs[i], b.Outputs[j]) }) &&
		noAdjacentEqualOutputs(b.Outputs)
}

// KernelsSorted reports whether Kernels is strictly ascending with no duplicates.
func (b *AggregateBody) KernelsSorted() bool {
	return sort.SliceIsSorted(b.Kernels, func(i, j int) bool { return KernelLess(b.Kernels[i], b.Kernels[j]) }) &&
		noAdjacentEqualKernels(b.Kernels)
}

func noAdjacentEqualInputs(xs []*TransactionInput) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i-1].Hash() == xs[i].Hash() {
			return false
		}
	}
	return true
}

func noAdjacentEqualOutputs(xs []*TransactionOutput) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i-1].Hash() == xs[i].Hash() {
			return false
		}
	}
	return true
}

func noAdjacentEqualKernels(xs []*TransactionKernel) bool {
	for i := 1; i < len(xs); i++ {
		if xs[i-1].Hash() == xs[i].Hash() {
			return false
		}
	}
	return true
}
