package mwcrypto

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/yoss22/bulletproofs"
)

// RangeProof is a serialized Bulletproof showing that a commitment hides a
// value in [0, 2^64) without revealing the value.
type RangeProof []byte

// MaxRangeProofSize bounds how large a single serialized proof may be
// before it is rejected outright, mirroring the wire sanity check
// dblokhin-gringo's Output.Read applies to secp256k1zkp.MaxProofSize.
const MaxRangeProofSize = 5134

// prover is a package-level Bulletproof verifier for 64-bit value ranges,
// matching dblokhin-gringo's `bulletproofs.NewProver(64)` in
// src/consensus/block.go. Verification, unlike proving, needs no secret
// state, so one shared instance is safe across concurrent worker goroutines.
var prover = bulletproofs.NewProver(64)

// VerifyRangeProof checks that proof attests commitment hides a value in range.
func VerifyRangeProof(commitment Commitment, proof RangeProof) error {
	if len(proof) > MaxRangeProofSize {
		return fmt.Errorf("range proof too large: %d bytes", len(proof))
	}
	point, err := toBulletproofsPoint(commitment)
	if err != nil {
		return fmt.Errorf("range proof commitment: %w", err)
	}
	bp, err := decodeBulletProof(proof)
	if err != nil {
		return fmt.Errorf("decode range proof: %w", err)
	}
	if !prover.Verify(point, bp) {
		return fmt.Errorf("range proof verification failed for commitment %x", commitment.Bytes())
	}
	return nil
}

// toBulletproofsPoint re-expresses our commitment (a secp256k1 affine
// point held inside a decred PublicKey) as a bulletproofs.Point. Both
// libraries operate on the same curve, so the conversion only needs the
// affine X/Y coordinates.
func toBulletproofsPoint(c Commitment) (*bulletproofs.Point, error) {
	if c.pub == nil {
		return nil, fmt.Errorf("cannot range-prove the identity commitment")
	}
	var j secp256k1.JacobianPoint
	c.pub.AsJacobian(&j)
	j.ToAffine()

	x := new(big.Int).SetBytes(fieldValBytes(j.X))
	y := new(big.Int).SetBytes(fieldValBytes(j.Y))
	return &bulletproofs.Point{X: x, Y: y}, nil
}

func fieldValBytes(f secp256k1.FieldVal) []byte {
	f.Normalize()
	b := f.Bytes()
	return b[:]
}

// decodeBulletProof mirrors dblokhin-gringo's Output.Read, which streams a
// length-prefixed BulletProof via (*bulletproofs.BulletProof).Read(io.Reader).
func decodeBulletProof(raw RangeProof) (bulletproofs.BulletProof, error) {
	var bp bulletproofs.BulletProof
	if err := bp.Read(bytes.NewReader(raw)); err != nil {
		return bulletproofs.BulletProof{}, err
	}
	return bp, nil
}
