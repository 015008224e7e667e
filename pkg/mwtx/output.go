package mwtx

import (
	"bytes"
	"encoding/binary"

	"github.com/ironpeak/mimblecore/pkg/crypto"
	"github.com/ironpeak/mimblecore/pkg/mwcrypto"
	"github.com/ironpeak/mimblecore/pkg/types"
)

// Covenant restricts how an output may later be spent (e.g. only to a
// specific script template). Kept opaque here: the validator does not
// interpret covenant contents, only hashes them into the output's identity.
type Covenant []byte

// TransactionOutput is a new, unspent commitment created by a transaction.
type TransactionOutput struct {
	Commitment            mwcrypto.Commitment `json:"commitment"`
	Features              OutputFeatures      `json:"features"`
	Script                Script              `json:"script"`
	SenderOffsetPublicKey mwcrypto.PubKey     `json:"sender_offset_public_key"`
	MetadataSignature     []byte              `json:"metadata_signature"`
	RangeProof            mwcrypto.RangeProof `json:"range_proof"`
	Covenant              Covenant            `json:"covenant,omitempty"`
}

// IsCoinbase reports whether this is the block-reward output.
func (o *TransactionOutput) IsCoinbase() bool {
	return o.Features.IsCoinbase()
}

// metadataChallenge is the message the metadata signature commits to:
// commitment, script, features and covenant, binding the sender-offset key
// to exactly this output's public metadata.
func (o *TransactionOutput) metadataChallenge() types.Hash {
	buf := append([]byte(nil), o.Commitment.Bytes()...)
	buf = append(buf, o.Script...)
	buf = append(buf, byte(o.Features.Flags))
	buf = append(buf, o.Covenant...)
	return crypto.Hash(buf)
}

// VerifyMetadataSignature checks the output's metadata signature against
// its sender-offset public key.
func (o *TransactionOutput) VerifyMetadataSignature() bool {
	challenge := o.metadataChallenge()
	return mwcrypto.VerifyPubKeySignature(o.SenderOffsetPublicKey, challenge[:], o.MetadataSignature)
}

// DuplicateKey returns the identity used by check_not_duplicate_txo: the
// commitment plus features hashed together, matching the check's "same
// commitment+features" duplicate rule.
func (o *TransactionOutput) DuplicateKey() types.Hash {
	buf := append([]byte(nil), o.Commitment.Bytes()...)
	buf = append(buf, byte(o.Features.Flags))
	return crypto.Hash(buf)
}

// Hash returns the output's canonical-order hash.
func (o *TransactionOutput) Hash() types.Hash {
	buf := make([]byte, 0, 33+len(o.Script)+1+8+len(o.Covenant))
	buf = append(buf, o.Commitment.Bytes()...)
	buf = append(buf, o.Script...)
	buf = append(buf, byte(o.Features.Flags))
	buf = binary.LittleEndian.AppendUint64(buf, o.Features.MaturityHeight)
	buf = append(buf, o.Covenant...)
	return crypto.Hash(buf)
}

// OutputLess reports whether a sorts strictly before b under the canonical order.
func OutputLess(a, b *TransactionOutput) bool {
	ha, hb := a.Hash(), b.Hash()
	return bytes.Compare(ha[:], hb[:]) < 0
}
