package block

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"

	"github.com/ironpeak/mimblecore/pkg/crypto"
	"github.com/ironpeak/mimblecore/pkg/mwcrypto"
	"github.com/ironpeak/mimblecore/pkg/types"
)

// Header contains block metadata, including the Merkle-Mountain-Range roots
// that commit to the post-application output, kernel, input and range-proof
// state, and the aggregate offset scalars reconciled by the body validator.
type Header struct {
	Version      uint32     `json:"version"`
	PrevHash     types.Hash `json:"prev_hash"`
	MerkleRoot   types.Hash `json:"merkle_root"`
	Timestamp    uint64     `json:"timestamp"`
	Height       uint64     `json:"height"`
	Difficulty   uint64     `json:"difficulty,omitempty"` // PoW: target difficulty; PoA: 2 in-turn, 1 out-of-turn
	Nonce        uint64     `json:"nonce"`
	ValidatorSig []byte     `json:"validator_sig,omitempty"`

	// TotalKernelOffset is the blinding factor every kernel excess in the
	// block is built relative to; check_kernel_sum folds it into the
	// expected balance via commit(total_kernel_offset, coinbase_and_fees).
	TotalKernelOffset mwcrypto.Scalar `json:"total_kernel_offset"`
	// TotalScriptOffset is the scalar check_script_offset verifies against
	// the aggregated sender-offset and script public keys.
	TotalScriptOffset mwcrypto.Scalar `json:"total_script_offset"`

	OutputMMRRoot     types.Hash `json:"output_mmr_root"`
	KernelMMRRoot     types.Hash `json:"kernel_mmr_root"`
	InputMMRRoot      types.Hash `json:"input_mmr_root"`
	RangeProofMMRRoot types.Hash `json:"range_proof_mmr_root"`
}

// headerJSON is the JSON representation of Header with hex-encoded binary fields.
type headerJSON struct {
	Version           uint32     `json:"version"`
	PrevHash          types.Hash `json:"prev_hash"`
	MerkleRoot        types.Hash `json:"merkle_root"`
	Timestamp         uint64     `json:"timestamp"`
	Height            uint64     `json:"height"`
	Difficulty        uint64     `json:"difficulty,omitempty"`
	Nonce             uint64     `json:"nonce"`
	ValidatorSig      string     `json:"validator_sig,omitempty"`
	TotalKernelOffset string     `json:"total_kernel_offset"`
	TotalScriptOffset string     `json:"total_script_offset"`
	OutputMMRRoot     types.Hash `json:"output_mmr_root"`
	KernelMMRRoot     types.Hash `json:"kernel_mmr_root"`
	InputMMRRoot      types.Hash `json:"input_mmr_root"`
	RangeProofMMRRoot types.Hash `json:"range_proof_mmr_root"`
}

// MarshalJSON encodes the header with hex-encoded binary fields.
func (h *Header) MarshalJSON() ([]byte, error) {
	kOff := h.TotalKernelOffset.Bytes()
	sOff := h.TotalScriptOffset.Bytes()
	j := headerJSON{
		Version:           h.Version,
		PrevHash:          h.PrevHash,
		MerkleRoot:        h.MerkleRoot,
		Timestamp:         h.Timestamp,
		Height:            h.Height,
		Difficulty:        h.Difficulty,
		Nonce:             h.Nonce,
		TotalKernelOffset: hex.EncodeToString(kOff[:]),
		TotalScriptOffset: hex.EncodeToString(sOff[:]),
		OutputMMRRoot:     h.OutputMMRRoot,
		KernelMMRRoot:     h.KernelMMRRoot,
		InputMMRRoot:      h.InputMMRRoot,
		RangeProofMMRRoot: h.RangeProofMMRRoot,
	}
	if h.ValidatorSig != nil {
		j.ValidatorSig = hex.EncodeToString(h.ValidatorSig)
	}
	return json.Marshal(j)
}

// UnmarshalJSON decodes a header with hex-encoded binary fields.
func (h *Header) UnmarshalJSON(data []byte) error {
	var j headerJSON
	if err := json.Unmarshal(data, &j); err != nil {
		return err
	}
	h.Version = j.Version
	h.PrevHash = j.PrevHash
	h.MerkleRoot = j.MerkleRoot
	h.Timestamp = j.Timestamp
	h.Height = j.Height
	h.Difficulty = j.Difficulty
	h.Nonce = j.Nonce
	h.OutputMMRRoot = j.OutputMMRRoot
	h.KernelMMRRoot = j.KernelMMRRoot
	h.InputMMRRoot = j.InputMMRRoot
	h.RangeProofMMRRoot = j.RangeProofMMRRoot
	if j.ValidatorSig != "" {
		b, err := hex.DecodeString(j.ValidatorSig)
		if err != nil {
			return err
		}
		h.ValidatorSig = b
	}
	if j.TotalKernelOffset != "" {
		b, err := hex.DecodeString(j.TotalKernelOffset)
		if err != nil {
			return err
		}
		s, err := mwcrypto.ScalarFromBytes(b)
		if err != nil {
			return err
		}
		h.TotalKernelOffset = s
	}
	if j.TotalScriptOffset != "" {
		b, err := hex.DecodeString(j.TotalScriptOffset)
		if err != nil {
			return err
		}
		s, err := mwcrypto.ScalarFromBytes(b)
		if err != nil {
			return err
		}
		h.TotalScriptOffset = s
	}
	return nil
}

// Hash computes the block header hash.
// Excludes ValidatorSig so the hash is stable for signing.
func (h *Header) Hash() types.Hash {
	return crypto.Hash(h.SigningBytes())
}

// SigningBytes returns the canonical bytes for hashing/signing. Nonce comes
// last so that miners (internal/consensus/pow.go) can hash a fixed prefix
// once and append only the varying 8-byte nonce per attempt.
func (h *Header) SigningBytes() []byte {
	buf := h.SigningPrefixBytes()
	buf = binary.LittleEndian.AppendUint64(buf, h.Nonce)
	return buf
}

// SigningPrefixBytes returns every signed field except the nonce, in the
// fixed order SigningBytes appends them. Exported so miners
// (internal/consensus/pow.go) can hash a fixed prefix once per block and
// vary only the nonce per attempt.
func (h *Header) SigningPrefixBytes() []byte {
	kOff := h.TotalKernelOffset.Bytes()
	sOff := h.TotalScriptOffset.Bytes()
	buf := make([]byte, 0, 100+32*6)
	buf = binary.LittleEndian.AppendUint32(buf, h.Version)
	buf = append(buf, h.PrevHash[:]...)
	buf = append(buf, h.MerkleRoot[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, h.Timestamp)
	buf = binary.LittleEndian.AppendUint64(buf, h.Height)
	buf = binary.LittleEndian.AppendUint64(buf, h.Difficulty)
	buf = append(buf, kOff[:]...)
	buf = append(buf, sOff[:]...)
	buf = append(buf, h.OutputMMRRoot[:]...)
	buf = append(buf, h.KernelMMRRoot[:]...)
	buf = append(buf, h.InputMMRRoot[:]...)
	buf = append(buf, h.RangeProofMMRRoot[:]...)
	return buf
}
