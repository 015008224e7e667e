package utxo

import (
	"testing"

	"github.com/ironpeak/mimblecore/internal/storage"
	"github.com/ironpeak/mimblecore/pkg/mwcrypto"
	"github.com/ironpeak/mimblecore/pkg/mwtx"
)

func testCommitment(b byte) mwcrypto.Commitment {
	k, _ := mwcrypto.ScalarFromBytes(append(make([]byte, 31), b))
	return mwcrypto.Commit(k, uint64(b)+1)
}

func TestOutputSetRoot_Empty(t *testing.T) {
	store := NewStore(storage.NewMemory())

	root, err := OutputSetRoot(store)
	if err != nil {
		t.Fatalf("OutputSetRoot: %v", err)
	}
	if !root.IsZero() {
		t.Error("empty store root should be zero hash")
	}
}

func TestOutputSetRoot_SingleOutput(t *testing.T) {
	store := NewStore(storage.NewMemory())
	c := testCommitment(0x01)

	store.Put(&Output{Commitment: c, Hash: [32]byte{0x01}, Features: mwtx.OutputFeatures{}})

	root, err := OutputSetRoot(store)
	if err != nil {
		t.Fatalf("OutputSetRoot: %v", err)
	}
	if root.IsZero() {
		t.Error("single-output root should not be zero")
	}
}

func TestOutputSetRoot_Deterministic(t *testing.T) {
	build := func() *Store {
		s := NewStore(storage.NewMemory())
		s.Put(&Output{Commitment: testCommitment(0x01), Hash: [32]byte{0x01}})
		s.Put(&Output{Commitment: testCommitment(0x02), Hash: [32]byte{0x02}})
		return s
	}

	root1, _ := OutputSetRoot(build())
	root2, _ := OutputSetRoot(build())
	if root1 != root2 {
		t.Error("root should be deterministic")
	}
}

func TestOutputSetRoot_OrderIndependent(t *testing.T) {
	o1 := &Output{Commitment: testCommitment(0x01), Hash: [32]byte{0x01}}
	o2 := &Output{Commitment: testCommitment(0x02), Hash: [32]byte{0x02}}

	s1 := NewStore(storage.NewMemory())
	s1.Put(o1)
	s1.Put(o2)
	root1, _ := OutputSetRoot(s1)

	s2 := NewStore(storage.NewMemory())
	s2.Put(o2)
	s2.Put(o1)
	root2, _ := OutputSetRoot(s2)

	if root1 != root2 {
		t.Error("root should be independent of insertion order")
	}
}

func TestOutputSetRoot_ChangesOnDelete(t *testing.T) {
	store := NewStore(storage.NewMemory())
	c1 := testCommitment(0x01)
	c2 := testCommitment(0x02)
	store.Put(&Output{Commitment: c1, Hash: [32]byte{0x01}})
	store.Put(&Output{Commitment: c2, Hash: [32]byte{0x02}})

	root1, _ := OutputSetRoot(store)
	store.Delete(c2)
	root2, _ := OutputSetRoot(store)

	if root1 == root2 {
		t.Error("root should change after deleting an output")
	}
}
