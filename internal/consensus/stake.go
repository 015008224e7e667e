package consensus

import (
	"math"

	"github.com/ironpeak/mimblecore/internal/utxo"
)

// UTXOStakeChecker checks that a validator has sufficient stake by querying
// the output store's stake index. It satisfies the StakeChecker interface.
// Stake outputs declare their value in the clear (unlike ordinary
// Mimblewimble outputs) so this check never needs to open a commitment.
type UTXOStakeChecker struct {
	outputs  *utxo.Store
	minStake uint64
}

// NewUTXOStakeChecker creates a stake checker that requires at least minStake
// base units bonded in stake outputs for the given public key.
func NewUTXOStakeChecker(outputs *utxo.Store, minStake uint64) *UTXOStakeChecker {
	return &UTXOStakeChecker{outputs: outputs, minStake: minStake}
}

// HasStake returns true if the validator identified by pubKey has >= minStake
// bonded in stake outputs.
func (c *UTXOStakeChecker) HasStake(pubKey []byte) (bool, error) {
	stakes, err := c.outputs.GetStakes(pubKey)
	if err != nil {
		return false, err
	}

	var total uint64
	for _, s := range stakes {
		if total > math.MaxUint64-s.StakeValue {
			// Overflow means total exceeds any possible minStake.
			return true, nil
		}
		total += s.StakeValue
	}
	return total >= c.minStake, nil
}
