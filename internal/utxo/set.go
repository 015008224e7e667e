// Package utxo manages the unspent-output set: the durable record of which
// Mimblewimble commitments are currently spendable, keyed by commitment
// rather than by address or value.
package utxo

import (
	"github.com/ironpeak/mimblecore/pkg/mwcrypto"
	"github.com/ironpeak/mimblecore/pkg/mwtx"
	"github.com/ironpeak/mimblecore/pkg/types"
)

// Output is the durable record of an unspent TransactionOutput: enough to
// answer the body validator's existence and duplicate checks without
// retaining the whole output (script, range proof, signatures) once it has
// already been verified once at the height it was created.
type Output struct {
	Commitment mwcrypto.Commitment `json:"commitment"`
	Features   mwtx.OutputFeatures `json:"features"`
	Hash       types.Hash          `json:"hash"`
	Height     uint64              `json:"height"`

	// StakePubKey and StakeValue are set only for outputs carrying
	// mwtx.OutputFeatureStake: the validator public key the output bonds,
	// and its publicly declared amount (stake outputs reveal their value
	// in the clear so PoA eligibility can be totalled without an opening).
	StakePubKey []byte `json:"stake_pubkey,omitempty"`
	StakeValue  uint64 `json:"stake_value,omitempty"`
}

// Set is the interface for unspent-output storage.
type Set interface {
	Get(commitment mwcrypto.Commitment) (*Output, error)
	Put(output *Output) error
	Delete(commitment mwcrypto.Commitment) error
	Has(commitment mwcrypto.Commitment) (bool, error)
}
