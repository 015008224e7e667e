package validation

import (
	"github.com/ironpeak/mimblecore/pkg/mwcrypto"
	"github.com/ironpeak/mimblecore/pkg/mwtx"
)

// CommitmentFactory builds Pedersen commitments. check_coinbase_reward and
// check_kernel_sum use it to build the expected-balance commitment from a
// plain uint64 amount.
type CommitmentFactory interface {
	Commit(blinding mwcrypto.Scalar, value uint64) mwcrypto.Commitment
	CommitValue(scalar mwcrypto.Scalar, value uint64) mwcrypto.Commitment
}

// DefaultCommitmentFactory delegates to pkg/mwcrypto's package-level
// commitment constructors.
type DefaultCommitmentFactory struct{}

func (DefaultCommitmentFactory) Commit(blinding mwcrypto.Scalar, value uint64) mwcrypto.Commitment {
	return mwcrypto.Commit(blinding, value)
}

func (DefaultCommitmentFactory) CommitValue(scalar mwcrypto.Scalar, value uint64) mwcrypto.Commitment {
	return mwcrypto.CommitValue(scalar, value)
}

// RangeProofVerifier checks that an output's range proof is valid for its
// commitment.
type RangeProofVerifier interface {
	Verify(output *mwtx.TransactionOutput) error
}

// DefaultRangeProofVerifier delegates to mwcrypto.VerifyRangeProof, the
// github.com/yoss22/bulletproofs-backed Bulletproof verifier.
type DefaultRangeProofVerifier struct{}

func (DefaultRangeProofVerifier) Verify(output *mwtx.TransactionOutput) error {
	return mwcrypto.VerifyRangeProof(output.Commitment, output.RangeProof)
}

// CryptoFactories bundles the commitment and range-proof collaborators the
// BodyValidator is constructed with, mirroring the Rust constructor's
// crypto_factories parameter (§6).
type CryptoFactories struct {
	Commitment CommitmentFactory
	RangeProof RangeProofVerifier
}

// DefaultCryptoFactories wires the concrete secp256k1/bulletproofs backends.
func DefaultCryptoFactories() CryptoFactories {
	return CryptoFactories{
		Commitment: DefaultCommitmentFactory{},
		RangeProof: DefaultRangeProofVerifier{},
	}
}
