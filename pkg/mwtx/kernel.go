package mwtx

import (
	"bytes"
	"encoding/binary"

	"github.com/ironpeak/mimblecore/pkg/crypto"
	"github.com/ironpeak/mimblecore/pkg/mwcrypto"
	"github.com/ironpeak/mimblecore/pkg/types"
)

// TransactionKernel is the public, permanent artefact of a transaction: the
// excess commitment (sum of output blindings minus sum of input blindings)
// together with a Schnorr signature proving whoever built the excess knows
// its opening.
type TransactionKernel struct {
	Features   KernelFeatures     `json:"features"`
	Fee        uint64             `json:"fee"`
	LockHeight uint64             `json:"lock_height"`
	Excess     mwcrypto.Commitment `json:"excess"`
	ExcessSig  []byte             `json:"excess_sig"`
}

// IsCoinbase reports whether this is the block-reward kernel.
func (k *TransactionKernel) IsCoinbase() bool {
	return k.Features.IsCoinbase()
}

// SigningBytes returns the canonical bytes the excess signature is computed
// over: the fee and lock height, matching the challenge dblokhin-gringo's
// secp256k1zkp.ComputeMessage(fee, lockHeight) builds for a kernel excess.
func (k *TransactionKernel) SigningBytes() []byte {
	buf := make([]byte, 0, 16)
	buf = binary.LittleEndian.AppendUint64(buf, k.Fee)
	buf = binary.LittleEndian.AppendUint64(buf, k.LockHeight)
	return buf
}

// VerifySignature checks the kernel's excess signature against its own
// excess commitment, reinterpreted as the signing public key.
func (k *TransactionKernel) VerifySignature() bool {
	msg := crypto.Hash(k.SigningBytes())
	return mwcrypto.VerifyExcess(k.Excess, msg[:], k.ExcessSig)
}

// Hash returns the kernel's canonical-order hash: excess || fee || lock_height || features.
func (k *TransactionKernel) Hash() types.Hash {
	buf := make([]byte, 0, 33+8+8+1)
	buf = append(buf, k.Excess.Bytes()...)
	buf = binary.LittleEndian.AppendUint64(buf, k.Fee)
	buf = binary.LittleEndian.AppendUint64(buf, k.LockHeight)
	buf = append(buf, byte(k.Features.Flags))
	return crypto.Hash(buf)
}

// KernelLess reports whether a sorts strictly before b under the canonical
// total order: lexicographic comparison of the serialised hash, the same
// convention dblokhin-gringo's TxKernelList.Less uses.
func KernelLess(a, b *TransactionKernel) bool {
	ha, hb := a.Hash(), b.Hash()
	return bytes.Compare(ha[:], hb[:]) < 0
}

// KernelSum is the running balance accumulator threaded through
// KernelValidator: the aggregate excess commitment plus the total fees
// collected from every non-coinbase kernel.
type KernelSum struct {
	Sum  mwcrypto.Commitment
	Fees uint64
}

// NewKernelSum returns the identity accumulator: the zero point and zero fees.
func NewKernelSum() KernelSum {
	return KernelSum{Sum: mwcrypto.IdentityCommitment}
}
