package mwtx

import (
	"testing"

	"github.com/ironpeak/mimblecore/pkg/crypto"
	"github.com/ironpeak/mimblecore/pkg/mwcrypto"
)

func signedKernel(t *testing.T, fee, lockHeight uint64) *TransactionKernel {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	blinding, err := mwcrypto.ScalarFromBytes(key.Serialize())
	if err != nil {
		t.Fatalf("ScalarFromBytes: %v", err)
	}
	k := &TransactionKernel{Fee: fee, LockHeight: lockHeight, Excess: mwcrypto.Commit(blinding, 0)}
	msg := crypto.Hash(k.SigningBytes())
	sig, err := key.Sign(msg[:])
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	k.ExcessSig = sig
	return k
}

func TestKernelVerifySignature(t *testing.T) {
	k := signedKernel(t, 5, 10)
	if !k.VerifySignature() {
		t.Fatal("expected a freshly signed kernel to verify")
	}

	k.Fee = 6
	if k.VerifySignature() {
		t.Fatal("expected signature to fail once signed bytes change")
	}
}

func TestKernelIsCoinbase(t *testing.T) {
	k := &TransactionKernel{Features: KernelFeatures{Flags: KernelFeatureCoinbase}}
	if !k.IsCoinbase() {
		t.Fatal("expected coinbase flag to be recognized")
	}
	k.Features.Flags = 0
	if k.IsCoinbase() {
		t.Fatal("expected cleared flags to not be coinbase")
	}
}

func TestKernelLess(t *testing.T) {
	a := signedKernel(t, 1, 0)
	b := signedKernel(t, 2, 0)
	ha, hb := a.Hash(), b.Hash()
	if ha == hb {
		t.Skip("extremely unlikely hash collision between independently keyed kernels")
	}
	// KernelLess must be a strict order: for two distinct kernels exactly
	// one direction holds.
	if KernelLess(a, b) == KernelLess(b, a) {
		t.Fatal("expected KernelLess to be antisymmetric")
	}
}

func TestNewKernelSum(t *testing.T) {
	sum := NewKernelSum()
	if !sum.Sum.Equal(mwcrypto.IdentityCommitment) {
		t.Fatal("expected a fresh kernel sum to start at the identity commitment")
	}
	if sum.Fees != 0 {
		t.Fatal("expected a fresh kernel sum to start with zero fees")
	}
}
