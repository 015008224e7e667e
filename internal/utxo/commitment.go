package utxo

import (
	"sort"

	"github.com/ironpeak/mimblecore/pkg/block"
	"github.com/ironpeak/mimblecore/pkg/crypto"
	"github.com/ironpeak/mimblecore/pkg/types"
)

// OutputSetRoot computes a merkle root over every unspent output currently
// in the store. Each output is hashed deterministically, the hashes are
// sorted, and a merkle tree is built from them. Returns a zero hash for an
// empty set. MmrCalculator does not call it: its output root comes from
// projectedOutputRoot, which uses the same hashOutput/hashLess helpers.
func OutputSetRoot(store *Store) (types.Hash, error) {
	var hashes []types.Hash

	err := store.ForEach(func(o *Output) error {
		hashes = append(hashes, hashOutput(o))
		return nil
	})
	if err != nil {
		return types.Hash{}, err
	}

	if len(hashes) == 0 {
		return types.Hash{}, nil
	}

	// Sort for deterministic ordering (map iteration order varies).
	sort.Slice(hashes, func(i, j int) bool {
		return hashLess(hashes[i], hashes[j])
	})

	return block.ComputeMerkleRoot(hashes), nil
}

// hashOutput produces a deterministic hash of a stored output's identity:
// commitment and feature flags.
func hashOutput(o *Output) types.Hash {
	buf := append([]byte(nil), o.Commitment.Bytes()...)
	buf = append(buf, byte(o.Features.Flags))
	return crypto.Hash(buf)
}

func hashLess(a, b types.Hash) bool {
	for i := 0; i < types.HashSize; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
