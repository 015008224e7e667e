// Package mwcrypto provides the Pedersen-commitment, Schnorr-excess and
// range-proof primitives the Mimblewimble-style body validator relies on.
// It builds on the same secp256k1 curve library the rest of the repo
// already uses for Schnorr signatures (pkg/crypto).
package mwcrypto

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Scalar is a blinding factor or excess secret, reduced mod the group order.
type Scalar struct {
	s secp256k1.ModNScalar
}

// ScalarFromBytes parses a 32-byte big-endian scalar. Returns an error if
// the value overflows the group order (it is reduced, not rejected, by the
// underlying library, but callers in this package always want strict
// 32-byte inputs so the length is checked here).
func ScalarFromBytes(b []byte) (Scalar, error) {
	if len(b) != 32 {
		return Scalar{}, fmt.Errorf("scalar must be 32 bytes, got %d", len(b))
	}
	var sc Scalar
	if overflow := sc.s.SetByteSlice(b); overflow {
		return Scalar{}, fmt.Errorf("scalar overflows curve order")
	}
	return sc, nil
}

// ScalarFromUint64 builds a scalar from a small non-negative integer value,
// used when committing to plain uint64 amounts (coinbase reward, fees).
func ScalarFromUint64(v uint64) Scalar {
	var sc Scalar
	var b [32]byte
	for i := 0; i < 8; i++ {
		b[31-i] = byte(v >> (8 * i))
	}
	sc.s.SetByteSlice(b[:])
	return sc
}

// Bytes returns the 32-byte big-endian encoding of the scalar.
func (s Scalar) Bytes() [32]byte {
	return s.s.Bytes()
}

// Add returns s + other mod the group order.
func (s Scalar) Add(other Scalar) Scalar {
	r := s.s
	r.Add(&other.s)
	return Scalar{s: r}
}

// IsZero reports whether the scalar is the additive identity.
func (s Scalar) IsZero() bool {
	return s.s.IsZero()
}
