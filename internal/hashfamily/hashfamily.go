package hashfamily

import "github.com/DNSBelgium/qlad/internal/ident"

// HashFamily is the immutable set of N hash functions an analysis run
// shares across every Engine: hash function index h maps an Identifier to
// a bucket in [0, K) (§4.6). Built once per run and read concurrently by
// every Engine goroutine thereafter — tables never mutate after
// construction, so no locking is needed (§5, "Hash-function tables are
// immutable after initialization and safely read by all threads").
type HashFamily struct {
	ipv4 *universalHashSystem
	ipv6 *universalHashSystem
	name *vectorHashSystem
}

// New builds a family of n independent hash functions, seeded
// deterministically from seed so repeated runs over the same seed produce
// the same bucket assignments. maxDomainLen bounds DomainLabel keys
// (typically ident.MaxDomainLabelLen).
func New(n int, maxDomainLen int, seed uint64) *HashFamily {
	return &HashFamily{
		ipv4: newUniversalHashSystem(n, 4, seed),
		ipv6: newUniversalHashSystem(n, 16, seed+1),
		name: newVectorHashSystem(n, maxDomainLen, MaxVectorHashBits, seed+2),
	}
}

// Hash computes hash function `index`'s value for id, dispatching on its
// kind to the matching fixed-width or variable-length system.
func (f *HashFamily) Hash(index int, id ident.Identifier) uint64 {
	switch id.Kind() {
	case ident.IPv4:
		return uint64(f.ipv4.hash(index, id.Bytes()))
	case ident.IPv6:
		return uint64(f.ipv6.hash(index, id.Bytes()))
	default:
		return f.name.hash(index, id.Bytes())
	}
}

// Bucket is Hash(index, id) mod k, the sketch assignment §4.6 specifies.
func (f *HashFamily) Bucket(index int, id ident.Identifier, k int) int {
	return int(f.Hash(index, id) % uint64(k))
}
