package mwtx

import "testing"

func TestOutputFeaturesFlags(t *testing.T) {
	f := OutputFeatures{Flags: OutputFeatureCoinbase}
	if !f.IsCoinbase() || f.IsStake() {
		t.Fatal("expected only the coinbase flag to be set")
	}

	f.Flags |= OutputFeatureStake
	if !f.IsCoinbase() || !f.IsStake() {
		t.Fatal("expected coinbase and stake flags to combine without clobbering each other")
	}
}

func TestKernelFeaturesFlags(t *testing.T) {
	f := KernelFeatures{}
	if f.IsCoinbase() {
		t.Fatal("expected a zero-value kernel features to not be coinbase")
	}
	f.Flags = KernelFeatureCoinbase
	if !f.IsCoinbase() {
		t.Fatal("expected the coinbase flag to be recognized")
	}
}
