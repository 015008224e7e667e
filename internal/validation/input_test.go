package validation

import (
	"errors"
	"testing"

	"github.com/ironpeak/mimblecore/pkg/mwtx"
	"github.com/ironpeak/mimblecore/pkg/types"
)

func TestInputValidator_HappyPath(t *testing.T) {
	header := testHeader(100)
	snap := newFakeSnapshot()
	spent := makeOutput(t, 10, false, 0)
	snap.addOutput(spent)

	in := makeInput(t, 10, spent.Hash(), 0)
	v := NewInputValidator(&fakeSnapshotProvider{snap: snap})

	data, err := v.Validate(header, nil, []*mwtx.TransactionInput{in})
	if err != nil {
		t.Fatalf("expected known, mature input to pass, got %v", err)
	}
	if len(data.Inputs) != 1 {
		t.Fatalf("expected 1 input in result, got %d", len(data.Inputs))
	}
}

func TestInputValidator_UnsortedOrDuplicate(t *testing.T) {
	header := testHeader(100)
	snap := newFakeSnapshot()
	a := makeOutput(t, 10, false, 0)
	b := makeOutput(t, 10, false, 0)
	snap.addOutput(a)
	snap.addOutput(b)

	inA := makeInput(t, 10, a.Hash(), 0)
	inB := makeInput(t, 10, b.Hash(), 0)
	unsorted := sortInputs([]*mwtx.TransactionInput{inA, inB})
	// Force the opposite order, regardless of the canonical sort.
	reversed := []*mwtx.TransactionInput{unsorted[1], unsorted[0]}

	v := NewInputValidator(&fakeSnapshotProvider{snap: snap})
	_, err := v.Validate(header, nil, reversed)
	if !errors.Is(err, ErrUnsortedOrDuplicateInput) {
		t.Fatalf("expected ErrUnsortedOrDuplicateInput, got %v", err)
	}
}

// S4 variant for inputs: a not-yet-mature input is rejected.
func TestInputValidator_Immature(t *testing.T) {
	header := testHeader(100)
	snap := newFakeSnapshot()
	spent := makeOutput(t, 10, false, 200)
	snap.addOutput(spent)

	in := makeInput(t, 10, spent.Hash(), 200)
	v := NewInputValidator(&fakeSnapshotProvider{snap: snap})

	_, err := v.Validate(header, nil, []*mwtx.TransactionInput{in})
	if !errors.Is(err, ErrInputMaturity) {
		t.Fatalf("expected ErrInputMaturity, got %v", err)
	}
}

// S6: an input referencing neither the database nor the block's own
// outputs is rejected with the set of hashes that could not be resolved.
func TestInputValidator_UnknownInput(t *testing.T) {
	header := testHeader(100)
	snap := newFakeSnapshot()
	v := NewInputValidator(&fakeSnapshotProvider{snap: snap})

	var missing types.Hash
	missing[0] = 0xAB
	in := makeInput(t, 10, missing, 0)

	_, err := v.Validate(header, nil, []*mwtx.TransactionInput{in})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Kind != KindUnknownInputs {
		t.Fatalf("expected KindUnknownInputs, got %v", err)
	}
	if len(verr.Hashes) != 1 || verr.Hashes[0] != missing {
		t.Fatalf("expected unresolved hash to be reported, got %v", verr.Hashes)
	}
}

// S5: an input spending an output created earlier in the same block is
// accepted even though the output is absent from the database snapshot.
func TestInputValidator_SameBlockSpend(t *testing.T) {
	header := testHeader(100)
	snap := newFakeSnapshot() // deliberately empty: output only exists in-block
	newOutput := makeOutput(t, 10, false, 0)
	blockOutputs := map[types.Hash]struct{}{newOutput.Hash(): {}}

	in := makeInput(t, 10, newOutput.Hash(), 0)
	v := NewInputValidator(&fakeSnapshotProvider{snap: snap})

	data, err := v.Validate(header, blockOutputs, []*mwtx.TransactionInput{in})
	if err != nil {
		t.Fatalf("expected same-block spend to pass, got %v", err)
	}
	if len(data.Inputs) != 1 {
		t.Fatalf("expected 1 input in result, got %d", len(data.Inputs))
	}
}

func TestInputValidator_InvalidScript(t *testing.T) {
	header := testHeader(100)
	snap := newFakeSnapshot()
	spent := makeOutput(t, 10, false, 0)
	snap.addOutput(spent)

	in := makeInput(t, 10, spent.Hash(), 0)
	in.ScriptSignature = append([]byte(nil), in.ScriptSignature...)
	in.ScriptSignature[0] ^= 0xFF // corrupt the signature

	v := NewInputValidator(&fakeSnapshotProvider{snap: snap})
	_, err := v.Validate(header, nil, []*mwtx.TransactionInput{in})
	if !errors.Is(err, ErrInvalidScript) {
		t.Fatalf("expected ErrInvalidScript, got %v", err)
	}
}
