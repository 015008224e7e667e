package mwtx

// OutputFeaturesFlag is a bitmask carried by a TransactionOutput describing
// what kind of output it is.
type OutputFeaturesFlag uint8

const (
	// OutputFeatureCoinbase marks the single block-reward output.
	OutputFeatureCoinbase OutputFeaturesFlag = 1 << iota
	// OutputFeatureStake marks an output bonding value to a PoA validator
	// public key. Unlike ordinary outputs, a stake output's StakeValue is
	// declared in the clear (not only inside the Pedersen commitment) so
	// the consensus engine can total bonded stake without an opening.
	OutputFeatureStake
)

// OutputFeatures describes the consensus-visible properties of an output.
type OutputFeatures struct {
	Flags          OutputFeaturesFlag `json:"flags"`
	MaturityHeight uint64             `json:"maturity_height"`
}

// IsCoinbase reports whether the output carries the coinbase flag.
func (f OutputFeatures) IsCoinbase() bool {
	return f.Flags&OutputFeatureCoinbase != 0
}

// IsStake reports whether the output bonds a PoA validator's stake.
func (f OutputFeatures) IsStake() bool {
	return f.Flags&OutputFeatureStake != 0
}

// KernelFeaturesFlag is a bitmask carried by a TransactionKernel.
type KernelFeaturesFlag uint8

const (
	// KernelFeatureCoinbase marks the single block-reward kernel.
	KernelFeatureCoinbase KernelFeaturesFlag = 1 << iota
)

// KernelFeatures describes the consensus-visible properties of a kernel.
type KernelFeatures struct {
	Flags KernelFeaturesFlag `json:"flags"`
}

// IsCoinbase reports whether the kernel carries the coinbase flag.
func (f KernelFeatures) IsCoinbase() bool {
	return f.Flags&KernelFeatureCoinbase != 0
}
