package validation

import (
	"context"
	"sort"
	"testing"

	"github.com/ironpeak/mimblecore/pkg/block"
	"github.com/ironpeak/mimblecore/pkg/crypto"
	"github.com/ironpeak/mimblecore/pkg/mwcrypto"
	"github.com/ironpeak/mimblecore/pkg/mwtx"
	"github.com/ironpeak/mimblecore/pkg/types"
)

func newTestKey(t *testing.T) *crypto.PrivateKey {
	t.Helper()
	k, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	return k
}

func scalarFromKey(t *testing.T, k *crypto.PrivateKey) mwcrypto.Scalar {
	t.Helper()
	s, err := mwcrypto.ScalarFromBytes(k.Serialize())
	if err != nil {
		t.Fatalf("ScalarFromBytes: %v", err)
	}
	return s
}

// makeKernel builds a kernel with a genuine Schnorr excess signature.
func makeKernel(t *testing.T, fee, lockHeight uint64, coinbase bool) *mwtx.TransactionKernel {
	t.Helper()
	key := newTestKey(t)
	excess := mwcrypto.Commit(scalarFromKey(t, key), 0)

	var features mwtx.KernelFeatures
	if coinbase {
		features.Flags = mwtx.KernelFeatureCoinbase
	}

	k := &mwtx.TransactionKernel{Features: features, Fee: fee, LockHeight: lockHeight, Excess: excess}
	msg := crypto.Hash(k.SigningBytes())
	sig, err := key.Sign(msg[:])
	if err != nil {
		t.Fatalf("sign kernel: %v", err)
	}
	k.ExcessSig = sig
	return k
}

// makeOutput builds an output with a genuine metadata signature. Range
// proof verification is expected to run with bypassRangeProof=true in
// tests that use this helper, so RangeProof is left empty.
func makeOutput(t *testing.T, value uint64, coinbase bool, maturity uint64) *mwtx.TransactionOutput {
	t.Helper()
	blinding := scalarFromKey(t, newTestKey(t))
	commitment := mwcrypto.Commit(blinding, value)

	offsetKey := newTestKey(t)
	senderOffset, err := mwcrypto.PubKeyFromBytes(offsetKey.PublicKey())
	if err != nil {
		t.Fatalf("pubkey: %v", err)
	}

	features := mwtx.OutputFeatures{MaturityHeight: maturity}
	if coinbase {
		features.Flags = mwtx.OutputFeatureCoinbase
	}

	o := &mwtx.TransactionOutput{
		Commitment:            commitment,
		Features:              features,
		SenderOffsetPublicKey: senderOffset,
	}

	// Mirrors TransactionOutput.metadataChallenge: commitment || script ||
	// features || covenant, hashed.
	buf := append([]byte(nil), o.Commitment.Bytes()...)
	buf = append(buf, o.Script...)
	buf = append(buf, byte(o.Features.Flags))
	buf = append(buf, o.Covenant...)
	challenge := crypto.Hash(buf)

	sig, err := offsetKey.Sign(challenge[:])
	if err != nil {
		t.Fatalf("sign output metadata: %v", err)
	}
	o.MetadataSignature = sig
	return o
}

// makeInput builds an input spending the given output, with a genuine
// PushPubKey/CheckSig script and script signature.
func makeInput(t *testing.T, value uint64, spentOutputHash types.Hash, maturity uint64) *mwtx.TransactionInput {
	t.Helper()
	blinding := scalarFromKey(t, newTestKey(t))
	commitment := mwcrypto.Commit(blinding, value)

	scriptKey := newTestKey(t)
	script := append([]byte{mwtx.OpPushPubKey}, scriptKey.PublicKey()...)
	script = append(script, mwtx.OpCheckSig)

	offsetKey := newTestKey(t)
	senderOffset, err := mwcrypto.PubKeyFromBytes(offsetKey.PublicKey())
	if err != nil {
		t.Fatalf("pubkey: %v", err)
	}

	in := &mwtx.TransactionInput{
		Commitment:            commitment,
		Script:                mwtx.Script(script),
		SenderOffsetPublicKey: senderOffset,
		Features:              mwtx.OutputFeatures{MaturityHeight: maturity},
		OutputHash:            spentOutputHash,
	}

	// Mirrors TransactionInput.scriptChallenge: commitment || script, hashed.
	buf := append([]byte(nil), in.Commitment.Bytes()...)
	buf = append(buf, in.Script...)
	challenge := crypto.Hash(buf)

	sig, err := scriptKey.Sign(challenge[:])
	if err != nil {
		t.Fatalf("sign script: %v", err)
	}
	in.ScriptSignature = sig
	return in
}

func sortOutputs(outputs []*mwtx.TransactionOutput) []*mwtx.TransactionOutput {
	sorted := append([]*mwtx.TransactionOutput(nil), outputs...)
	sort.Slice(sorted, func(i, j int) bool { return mwtx.OutputLess(sorted[i], sorted[j]) })
	return sorted
}

func sortInputs(inputs []*mwtx.TransactionInput) []*mwtx.TransactionInput {
	sorted := append([]*mwtx.TransactionInput(nil), inputs...)
	sort.Slice(sorted, func(i, j int) bool { return mwtx.InputLess(sorted[i], sorted[j]) })
	return sorted
}

// fakeSnapshot is an in-memory ReadSnapshot used instead of internal/utxo
// so validation's unit tests carry no dependency on that package (which
// itself imports internal/validation, and would otherwise cycle).
type fakeSnapshot struct {
	outputHashes map[types.Hash]bool
	commitments  map[string]mwtx.OutputFeatures
}

func newFakeSnapshot() *fakeSnapshot {
	return &fakeSnapshot{
		outputHashes: map[types.Hash]bool{},
		commitments:  map[string]mwtx.OutputFeatures{},
	}
}

func (s *fakeSnapshot) addOutput(o *mwtx.TransactionOutput) {
	s.outputHashes[o.Hash()] = true
	s.commitments[string(o.Commitment.Bytes())] = o.Features
}

func (s *fakeSnapshot) OutputExists(hash types.Hash) (bool, error) {
	return s.outputHashes[hash], nil
}

func (s *fakeSnapshot) IsDuplicateOutput(c mwcrypto.Commitment, f mwtx.OutputFeatures) (bool, error) {
	existing, ok := s.commitments[string(c.Bytes())]
	return ok && existing == f, nil
}

type fakeSnapshotProvider struct {
	snap *fakeSnapshot
}

func (p *fakeSnapshotProvider) Snapshot() (ReadSnapshot, error) {
	return p.snap, nil
}

// fakeMmrCalculator returns a fixed set of roots regardless of the block,
// so orchestrator tests can pin header roots and expected roots together
// without modelling a real MMR.
type fakeMmrCalculator struct {
	roots MmrRoots
	err   error
}

func (f *fakeMmrCalculator) CalculateMmrRoots(ctx context.Context, blk *block.Block) (*block.Block, MmrRoots, error) {
	return blk, f.roots, f.err
}

// fakeConsensusParams pins the emission to a fixed value instead of
// replaying DefaultConsensusParams's decay curve, so seed scenarios can
// assert against the exact reward spec.md §8 names (e.g. emission(100) = 5000).
type fakeConsensusParams struct {
	constants ConsensusConstants
	emission  uint64
}

func newFakeConsensusParams(emission uint64) *fakeConsensusParams {
	return &fakeConsensusParams{
		constants: ConsensusConstants{
			MaxBlockWeight:  1_000_000,
			WeightPerInput:  1,
			WeightPerOutput: 1,
			WeightPerKernel: 1,
		},
		emission: emission,
	}
}

func (p *fakeConsensusParams) ConsensusConstants(height uint64) ConsensusConstants {
	return p.constants
}

func (p *fakeConsensusParams) CalculateCoinbaseAndFees(height uint64, kernels []*mwtx.TransactionKernel) uint64 {
	total := p.emission
	for _, k := range kernels {
		total += k.Fee
	}
	return total
}

func testHeader(height uint64) *block.Header {
	return &block.Header{Version: 1, Height: height}
}

// fakeRangeProofVerifier lets tests pin range-proof verification outcomes
// without needing a genuine Bulletproof, e.g. to show bypassRangeProof
// short-circuits whatever this would otherwise report.
type fakeRangeProofVerifier struct {
	err error
}

func (f *fakeRangeProofVerifier) Verify(output *mwtx.TransactionOutput) error {
	return f.err
}
