package mwcrypto

import (
	"github.com/ironpeak/mimblecore/pkg/crypto"
)

// VerifyExcess checks a Schnorr signature against a 32-byte message using a
// commitment reinterpreted as the signing public key. A kernel excess (or an
// input's script public key) is itself a Pedersen commitment to value zero,
// P = k*G, so the ordinary Schnorr verifier already used for wallet
// signatures (pkg/crypto) applies unchanged.
func VerifyExcess(commitment Commitment, message, signature []byte) bool {
	pub, err := commitment.AsPublicKey()
	if err != nil {
		return false
	}
	return crypto.VerifySignature(message, signature, pub.SerializeCompressed())
}

// VerifyPubKeySignature checks a Schnorr signature against a message using a
// plain aggregable public key (the output metadata signature's signer).
func VerifyPubKeySignature(key PubKey, message, signature []byte) bool {
	if key.pub == nil {
		return false
	}
	return crypto.VerifySignature(message, signature, key.pub.SerializeCompressed())
}
