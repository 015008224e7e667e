package mwtx

import (
	"bytes"
	"encoding/binary"

	"github.com/ironpeak/mimblecore/pkg/crypto"
	"github.com/ironpeak/mimblecore/pkg/mwcrypto"
	"github.com/ironpeak/mimblecore/pkg/types"
)

// TransactionInput spends a previously created TransactionOutput. It carries
// enough of the spent output's data (commitment, features, script) to be
// self-describing, plus the witness (input data, script signature) that
// authorizes the spend.
type TransactionInput struct {
	Commitment            mwcrypto.Commitment `json:"commitment"`
	Script                Script              `json:"script"`
	InputData             InputData           `json:"input_data"`
	ScriptSignature        []byte              `json:"script_signature"`
	SenderOffsetPublicKey mwcrypto.PubKey     `json:"sender_offset_public_key"`
	Features              OutputFeatures      `json:"features"`
	OutputHash            types.Hash          `json:"output_hash"`
}

// IsMatureAt reports whether the input's referenced output may be spent at
// the given block height.
func (in *TransactionInput) IsMatureAt(height uint64) bool {
	return height >= in.Features.MaturityHeight
}

// Hash returns the input's canonical-order hash.
func (in *TransactionInput) Hash() types.Hash {
	buf := make([]byte, 0, 33+len(in.Script)+types.HashSize+1+8)
	buf = append(buf, in.Commitment.Bytes()...)
	buf = append(buf, in.Script...)
	buf = append(buf, in.OutputHash[:]...)
	buf = append(buf, byte(in.Features.Flags))
	buf = binary.LittleEndian.AppendUint64(buf, in.Features.MaturityHeight)
	return crypto.Hash(buf)
}

// InputLess reports whether a sorts strictly before b under the canonical order.
func InputLess(a, b *TransactionInput) bool {
	ha, hb := a.Hash(), b.Hash()
	return bytes.Compare(ha[:], hb[:]) < 0
}

// scriptChallenge is the message the script signature is computed over:
// the commitment and script bytes, binding the signature to exactly the
// output being spent.
func (in *TransactionInput) scriptChallenge() types.Hash {
	buf := append([]byte(nil), in.Commitment.Bytes()...)
	buf = append(buf, in.Script...)
	return crypto.Hash(buf)
}

// RunAndVerifyScript executes the input's script with its witness data,
// verifies the script signature against the key the script reveals, and
// returns that key for aggregation into the block's script-offset equation.
// A failure at either step is a consensus-level InvalidScript rejection.
func (in *TransactionInput) RunAndVerifyScript() (mwcrypto.PubKey, error) {
	key, err := in.Script.Execute(in.InputData)
	if err != nil {
		return mwcrypto.PubKey{}, err
	}
	challenge := in.scriptChallenge()
	if !mwcrypto.VerifyPubKeySignature(key, challenge[:], in.ScriptSignature) {
		return mwcrypto.PubKey{}, ErrScriptFailed
	}
	return key, nil
}
