package hashfamily

import (
	"testing"

	"github.com/DNSBelgium/qlad/internal/ident"
	"github.com/stretchr/testify/require"
)

func TestHashFamilyDeterministic(t *testing.T) {
	f1 := New(4, 256, 42)
	f2 := New(4, 256, 42)

	id := ident.NewIPv4(0x0a000001)
	require.Equal(t, f1.Hash(0, id), f2.Hash(0, id))
	require.Equal(t, f1.Hash(2, id), f2.Hash(2, id))
}

func TestHashFamilyDifferentSeedsDiverge(t *testing.T) {
	f1 := New(2, 256, 1)
	f2 := New(2, 256, 2)

	id := ident.NewDomainLabel("example.com.")
	require.NotEqual(t, f1.Hash(0, id), f2.Hash(0, id))
}

func TestHashFamilyIndicesDiffer(t *testing.T) {
	f := New(4, 256, 7)
	id := ident.NewIPv6([16]byte{1, 2, 3, 4})

	h0 := f.Hash(0, id)
	h1 := f.Hash(1, id)
	require.NotEqual(t, h0, h1)
}

func TestHashFamilyBucketInRange(t *testing.T) {
	f := New(3, 256, 99)
	for i := 0; i < 100; i++ {
		id := ident.NewIPv4(uint32(i))
		b := f.Bucket(0, id, 16)
		require.GreaterOrEqual(t, b, 0)
		require.Less(t, b, 16)
	}
}

func TestVectorHashRespectsOutputWidth(t *testing.T) {
	f := New(2, 64, 3)
	id := ident.NewDomainLabel("a-fairly-long-domain-label.example.co.uk.")
	h := f.Hash(0, id)
	require.Less(t, h, uint64(1)<<MaxVectorHashBits)
}

func TestUniversalHashConsistentForSameKey(t *testing.T) {
	sys := newUniversalHashSystem(2, 4, 55)
	key := []byte{1, 2, 3, 4}
	require.Equal(t, sys.hash(0, key), sys.hash(0, key))
}
