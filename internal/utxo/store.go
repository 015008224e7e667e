package utxo

import (
	"encoding/json"
	"fmt"

	"github.com/ironpeak/mimblecore/internal/storage"
	"github.com/ironpeak/mimblecore/internal/validation"
	"github.com/ironpeak/mimblecore/pkg/mwcrypto"
	"github.com/ironpeak/mimblecore/pkg/mwtx"
	"github.com/ironpeak/mimblecore/pkg/types"
)

// Key prefixes for the output store.
var (
	prefixOutput = []byte("o/") // o/<commitment33> -> Output JSON
	prefixHash   = []byte("h/") // h/<hash32> -> commitment33 (output-hash index)
	prefixStake  = []byte("k/") // k/<pubkey33><commitment33> -> empty (stake index)
)

// compressedPubKeySize is the length of a compressed secp256k1 public key.
const compressedPubKeySize = 33

// commitmentSize is the length of a serialized Pedersen commitment.
const commitmentSize = 33

// Store implements Set backed by a storage.DB, and doubles as the concrete
// ReadSnapshot the body validator consumes (internal/validation.ReadSnapshot).
type Store struct {
	db storage.DB
}

// NewStore creates a new output store backed by the given database.
func NewStore(db storage.DB) *Store {
	return &Store{db: db}
}

func outputKey(c mwcrypto.Commitment) []byte {
	key := make([]byte, 0, len(prefixOutput)+commitmentSize)
	key = append(key, prefixOutput...)
	key = append(key, c.Bytes()...)
	return key
}

func hashKey(h types.Hash) []byte {
	key := make([]byte, 0, len(prefixHash)+types.HashSize)
	key = append(key, prefixHash...)
	key = append(key, h[:]...)
	return key
}

func stakeKey(pubKey []byte, c mwcrypto.Commitment) []byte {
	key := make([]byte, 0, len(prefixStake)+compressedPubKeySize+commitmentSize)
	key = append(key, prefixStake...)
	key = append(key, pubKey...)
	key = append(key, c.Bytes()...)
	return key
}

// Get retrieves an output by its commitment.
func (s *Store) Get(commitment mwcrypto.Commitment) (*Output, error) {
	data, err := s.db.Get(outputKey(commitment))
	if err != nil {
		return nil, fmt.Errorf("output get: %w", err)
	}
	var o Output
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("output unmarshal: %w", err)
	}
	return &o, nil
}

// Put stores an output and updates the hash and stake indexes.
func (s *Store) Put(o *Output) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("output marshal: %w", err)
	}
	if err := s.db.Put(outputKey(o.Commitment), data); err != nil {
		return fmt.Errorf("output put: %w", err)
	}
	if err := s.db.Put(hashKey(o.Hash), o.Commitment.Bytes()); err != nil {
		return fmt.Errorf("output hash index put: %w", err)
	}
	if o.Features.IsStake() && len(o.StakePubKey) == compressedPubKeySize {
		if err := s.db.Put(stakeKey(o.StakePubKey, o.Commitment), []byte{}); err != nil {
			return fmt.Errorf("stake index put: %w", err)
		}
	}
	return nil
}

// Delete removes an output and its hash/stake index entries.
func (s *Store) Delete(commitment mwcrypto.Commitment) error {
	// Read first to clean up secondary indexes.
	o, err := s.Get(commitment)
	if err == nil {
		s.db.Delete(hashKey(o.Hash))
		if o.Features.IsStake() && len(o.StakePubKey) == compressedPubKeySize {
			s.db.Delete(stakeKey(o.StakePubKey, o.Commitment))
		}
	}
	if err := s.db.Delete(outputKey(commitment)); err != nil {
		return fmt.Errorf("output delete: %w", err)
	}
	return nil
}

// Has checks if an unspent output exists for the given commitment.
func (s *Store) Has(commitment mwcrypto.Commitment) (bool, error) {
	return s.db.Has(outputKey(commitment))
}

// Snapshot implements internal/validation.ReadSnapshotProvider. Badger
// reads are already safe for concurrent independent use, so every worker
// is handed the same underlying store rather than a fresh handle per call.
func (s *Store) Snapshot() (validation.ReadSnapshot, error) {
	return s, nil
}

// OutputExists implements internal/validation.ReadSnapshot: it reports
// whether an unspent output with the given hash is present in the set.
func (s *Store) OutputExists(hash types.Hash) (bool, error) {
	commitmentBytes, err := s.db.Get(hashKey(hash))
	if err != nil {
		return false, nil
	}
	commitment, err := mwcrypto.CommitmentFromBytes(commitmentBytes)
	if err != nil {
		return false, fmt.Errorf("decode indexed commitment: %w", err)
	}
	return s.Has(commitment)
}

// IsDuplicateOutput implements internal/validation.ReadSnapshot: it reports
// whether an output with the same commitment and features already exists
// (check_not_duplicate_txo in spec terms).
func (s *Store) IsDuplicateOutput(commitment mwcrypto.Commitment, features mwtx.OutputFeatures) (bool, error) {
	existing, err := s.Get(commitment)
	if err != nil {
		return false, nil
	}
	return existing.Features == features, nil
}

// ForEach iterates over all outputs in the set.
func (s *Store) ForEach(fn func(*Output) error) error {
	return s.db.ForEach(prefixOutput, func(key, value []byte) error {
		var o Output
		if err := json.Unmarshal(value, &o); err != nil {
			return fmt.Errorf("output unmarshal: %w", err)
		}
		return fn(&o)
	})
}

// GetStakes returns all stake outputs bonded by the given compressed public key.
func (s *Store) GetStakes(pubKey []byte) ([]*Output, error) {
	if len(pubKey) != compressedPubKeySize {
		return nil, fmt.Errorf("pubkey must be %d bytes, got %d", compressedPubKeySize, len(pubKey))
	}

	prefix := make([]byte, 0, len(prefixStake)+compressedPubKeySize)
	prefix = append(prefix, prefixStake...)
	prefix = append(prefix, pubKey...)

	var outputs []*Output
	err := s.db.ForEach(prefix, func(key, _ []byte) error {
		off := len(prefixStake) + compressedPubKeySize
		if len(key) < off+commitmentSize {
			return nil // Malformed key, skip.
		}
		commitment, err := mwcrypto.CommitmentFromBytes(key[off : off+commitmentSize])
		if err != nil {
			return nil
		}
		o, err := s.Get(commitment)
		if err != nil {
			return nil // Output may have been spent, skip.
		}
		outputs = append(outputs, o)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan stake index: %w", err)
	}
	return outputs, nil
}

// GetAllStakedValidators returns the unique compressed public keys of all
// validators that currently have stake outputs bonded.
func (s *Store) GetAllStakedValidators() ([][]byte, error) {
	seen := make(map[string]struct{})
	var validators [][]byte

	err := s.db.ForEach(prefixStake, func(key, _ []byte) error {
		if len(key) < len(prefixStake)+compressedPubKeySize {
			return nil
		}
		pk := key[len(prefixStake) : len(prefixStake)+compressedPubKeySize]
		pkStr := string(pk)
		if _, ok := seen[pkStr]; !ok {
			seen[pkStr] = struct{}{}
			pubKey := make([]byte, compressedPubKeySize)
			copy(pubKey, pk)
			validators = append(validators, pubKey)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan stake index: %w", err)
	}
	return validators, nil
}

// ClearAll removes all outputs and their secondary indexes (hash, stake).
// Used during UTXO set recovery after a crash during reorg.
func (s *Store) ClearAll() error {
	var keys [][]byte
	for _, prefix := range [][]byte{prefixOutput, prefixHash, prefixStake} {
		if err := s.db.ForEach(prefix, func(key, _ []byte) error {
			k := make([]byte, len(key))
			copy(k, key)
			keys = append(keys, k)
			return nil
		}); err != nil {
			return fmt.Errorf("scan prefix %s: %w", prefix, err)
		}
	}
	for _, key := range keys {
		if err := s.db.Delete(key); err != nil {
			return fmt.Errorf("delete output key: %w", err)
		}
	}
	return nil
}
