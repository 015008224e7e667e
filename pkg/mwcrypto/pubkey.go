package mwcrypto

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// PubKey is an aggregable secp256k1 public key, used for the sender-offset
// key (outputs) and the script public key (inputs) that §4.E's script-offset
// equation reconciles.
type PubKey struct {
	pub *secp256k1.PublicKey
}

// ZeroPubKey is the identity element, the starting point for an aggregate sum.
var ZeroPubKey = PubKey{}

// PubKeyFromBytes parses a 33-byte compressed public key.
func PubKeyFromBytes(b []byte) (PubKey, error) {
	pub, err := secp256k1.ParsePubKey(b)
	if err != nil {
		return PubKey{}, fmt.Errorf("parse public key: %w", err)
	}
	return PubKey{pub: pub}, nil
}

// Bytes returns the 33-byte compressed encoding, or 33 zero bytes for the identity.
func (p PubKey) Bytes() []byte {
	if p.pub == nil {
		return make([]byte, 33)
	}
	return p.pub.SerializeCompressed()
}

func (p PubKey) jacobian() secp256k1.JacobianPoint {
	var j secp256k1.JacobianPoint
	if p.pub == nil {
		j.Z.SetInt(0)
		return j
	}
	p.pub.AsJacobian(&j)
	return j
}

// Add returns the point sum p + other; aggregation across workers and
// across inputs/outputs is associative and commutative, so partials can be
// combined in any order (§9).
func (p PubKey) Add(other PubKey) PubKey {
	a, b := p.jacobian(), other.jacobian()
	var sum secp256k1.JacobianPoint
	secp256k1.AddNonConst(&a, &b, &sum)
	if sum.X.IsZero() && sum.Y.IsZero() {
		return PubKey{}
	}
	sum.ToAffine()
	return PubKey{pub: secp256k1.NewPublicKey(&sum.X, &sum.Y)}
}

// Sub returns p - other.
func (p PubKey) Sub(other PubKey) PubKey {
	j := other.jacobian()
	j.Y.Negate(1)
	j.Y.Normalize()
	var negated PubKey
	if !(j.X.IsZero() && j.Y.IsZero()) {
		negated = PubKey{pub: secp256k1.NewPublicKey(&j.X, &j.Y)}
	}
	return p.Add(negated)
}

// ScalarBaseMul returns scalar*G, used to build the expected
// total-script-offset point from header.TotalScriptOffset.
func ScalarBaseMul(s Scalar) PubKey {
	var j secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&s.s, &j)
	if j.X.IsZero() && j.Y.IsZero() {
		return PubKey{}
	}
	j.ToAffine()
	return PubKey{pub: secp256k1.NewPublicKey(&j.X, &j.Y)}
}

// Equal reports whether two public keys are the same curve point.
func (p PubKey) Equal(other PubKey) bool {
	if p.pub == nil || other.pub == nil {
		return p.pub == nil && other.pub == nil
	}
	return p.pub.IsEqual(other.pub)
}
