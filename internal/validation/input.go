package validation

import (
	"errors"
	"fmt"

	"github.com/ironpeak/mimblecore/pkg/block"
	"github.com/ironpeak/mimblecore/pkg/mwcrypto"
	"github.com/ironpeak/mimblecore/pkg/mwtx"
	"github.com/ironpeak/mimblecore/pkg/types"
)

// InputValidationData is the join product InputValidator hands back: the
// input sequence and the aggregate script key / commitment sum accumulated
// while iterating. These aggregates are meaningless (they stop at the first
// unresolved input) if any input could not be resolved; the orchestrator never sees that case
// because Validate returns KindUnknownInputs instead.
type InputValidationData struct {
	Inputs            []*mwtx.TransactionInput
	AggregateInputKey mwcrypto.PubKey
	CommitmentSum     mwcrypto.Commitment
}

// InputValidator sequentially checks input ordering, maturity and UTXO
// presence, runs each input's script, and aggregates the script public key
// and commitment sum. It acquires one database snapshot for the whole call.
type InputValidator struct {
	snapshots ReadSnapshotProvider
}

func NewInputValidator(snapshots ReadSnapshotProvider) *InputValidator {
	return &InputValidator{snapshots: snapshots}
}

// Validate walks inputs in order against header and blockOutputs, the set
// of output hashes produced elsewhere in the same block (resolving
// same-block spends that the database snapshot alone wouldn't see yet).
func (v *InputValidator) Validate(header *block.Header, blockOutputs map[types.Hash]struct{}, inputs []*mwtx.TransactionInput) (*InputValidationData, error) {
	snapshot, err := v.snapshots.Snapshot()
	if err != nil {
		return nil, wrapErr(KindDatabaseError, "input validator snapshot", err)
	}

	var notFound []types.Hash
	aggregateKey := mwcrypto.ZeroPubKey
	commitmentSum := mwcrypto.IdentityCommitment
	accumulating := true

	for i, in := range inputs {
		if i > 0 && !mwtx.InputLess(inputs[i-1], in) {
			return nil, newErr(KindUnsortedOrDuplicateInput, fmt.Sprintf("index %d", i))
		}
		if !in.IsMatureAt(header.Height) {
			return nil, newErr(KindInputMaturity, fmt.Sprintf("index %d", i))
		}

		switch err := checkInputIsUTXO(snapshot, in); {
		case err == nil:
			// Present in the snapshot; fall through to accumulation.
		case errors.Is(err, errUnknownInput):
			if _, spentSameBlock := blockOutputs[in.OutputHash]; !spentSameBlock {
				notFound = append(notFound, in.OutputHash)
				// Once any input is unresolved, the aggregates below would
				// no longer mean anything; stop accumulating but keep
				// iterating to collect every missing hash (§9 open
				// question, preserved rather than surfacing script errors
				// eagerly past this point — see DESIGN.md).
				accumulating = false
			}
		default:
			return nil, err
		}

		if accumulating {
			key, err := in.RunAndVerifyScript()
			if err != nil {
				return nil, newErr(KindInvalidScript, fmt.Sprintf("index %d", i))
			}
			aggregateKey = aggregateKey.Add(key)
			commitmentSum = commitmentSum.Add(in.Commitment)
		}
	}

	if len(notFound) > 0 {
		return nil, unknownInputsErr(notFound)
	}

	return &InputValidationData{Inputs: inputs, AggregateInputKey: aggregateKey, CommitmentSum: commitmentSum}, nil
}
