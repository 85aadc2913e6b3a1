package hashfamily

// universalTable holds one Carter-Wegman hash function's random table:
// keyLen*256 uint32 entries, filled once from rng.u32() when the table is
// constructed (not deferred to the first hash call). Grounded on original_source's UniversalHashSystem (RNGFunU32
// rows of COLUMNS = 0x100 * sizeof(KEY_TYPE) entries).
type universalTable struct {
	keyLen int
	line   []uint32
}

func newUniversalTable(keyLen int, r *rng) *universalTable {
	line := make([]uint32, 256*keyLen)
	for i := range line {
		line[i] = r.u32()
	}
	return &universalTable{keyLen: keyLen, line: line}
}

// hash computes the Carter-Wegman hash of a fixed-length key: a running
// offset accumulates byte value + 1 across the key, XOR-folding the table
// entry at each running offset. Matches UniversalHashSystem::hash exactly
// (including the "+1" that makes a leading zero byte still advance place).
func (t *universalTable) hash(key []byte) uint32 {
	var result uint32
	place := 0
	for _, b := range key {
		place += int(b) + 1
		result ^= t.line[place-1]
	}
	return result
}

// universalHashSystem is the Carter-Wegman system over N independent
// tables, one per hash function index, all built eagerly by
// newUniversalHashSystem; none is built on first use.
type universalHashSystem struct {
	keyLen int
	tables []*universalTable
}

func newUniversalHashSystem(n, keyLen int, seed uint64) *universalHashSystem {
	tables := make([]*universalTable, n)
	for i := 0; i < n; i++ {
		tables[i] = newUniversalTable(keyLen, newRNG(seed+uint64(i)*0x100000001b3))
	}
	return &universalHashSystem{keyLen: keyLen, tables: tables}
}

func (s *universalHashSystem) hash(index int, key []byte) uint32 {
	return s.tables[index].hash(key)
}
