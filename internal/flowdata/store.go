package flowdata

import (
	"sort"

	"github.com/DNSBelgium/qlad/internal/ident"
)

// Policy extracts the Identifier a raw packet payload belongs to, per the
// active grouping dimension (source IP, destination IP, or query name SLD).
// Declared here, not imported from internal/policy, so FlowStore depends
// only on the narrow capability it needs — any type with this method
// satisfies it.
type Policy interface {
	Parse(payload []byte) (id ident.Identifier, ok bool)
}

// FlowStore is the sliding window over DNS traffic: window size W, current
// bounds [s, e], a SparseFlow per identifier, and an aggregate all-traffic
// SparseFlow. The controller owns the single instance; it is never
// accessed concurrently by Engines, which only ever see an immutable
// snapshot (Snapshot).
type FlowStore struct {
	windowSize int64
	start      int64
	end        int64
	haveData   bool
	flows      map[ident.Identifier]*SparseFlow
	allTraffic *SparseFlow
}

// NewFlowStore returns an empty store with the given window size in
// seconds.
func NewFlowStore(windowSize int64) *FlowStore {
	return &FlowStore{
		windowSize: windowSize,
		flows:      make(map[ident.Identifier]*SparseFlow),
		allTraffic: NewSparseFlow(),
	}
}

// WindowSize is the configured W.
func (fs *FlowStore) WindowSize() int64 { return fs.windowSize }

// StartTime is the current window lower bound s.
func (fs *FlowStore) StartTime() int64 { return fs.start }

// EndTime is the current window upper bound e.
func (fs *FlowStore) EndTime() int64 { return fs.end }

// CurrentSpan is e - s + 1, the live span (≤ WindowSize).
func (fs *FlowStore) CurrentSpan() int64 {
	if !fs.haveData {
		return 0
	}
	return fs.end - fs.start + 1
}

// AllTraffic is the aggregate flow summing every identifier together.
func (fs *FlowStore) AllTraffic() *SparseFlow { return fs.allTraffic }

// AddPacket parses an identifier out of payload via policy and, if valid,
// appends a point at second t: advances the window (e <- max(e,t),
// s <- max(s, e-W+1)), trims the touched flow if it now starts before s,
// and folds the point into all_traffic too. Invalid payloads are dropped
// silently (§7 kind 3); the false return is the only report. Out-of-order points
// (t before the flow's current end) are dropped by SparseFlow.AddPoint
// itself.
func (fs *FlowStore) AddPacket(payload []byte, t int64, policy Policy) bool {
	id, ok := policy.Parse(payload)
	if !ok || !id.Valid() {
		return false
	}

	if !fs.haveData {
		fs.start = t
		fs.end = t
		fs.haveData = true
	} else if t > fs.end {
		fs.end = t
	}
	if newStart := fs.end - fs.windowSize + 1; newStart > fs.start {
		fs.start = newStart
	}

	flow, exists := fs.flows[id]
	if !exists {
		flow = NewSparseFlow()
		fs.flows[id] = flow
	}
	flow.AddPoint(t)
	if flow.StartTime() < fs.start {
		flow.DeleteBefore(fs.start)
	}
	if flow.Empty() {
		delete(fs.flows, id)
	}

	fs.allTraffic.AddPoint(t)
	if fs.allTraffic.StartTime() < fs.start {
		fs.allTraffic.DeleteBefore(fs.start)
	}

	return true
}

// Sync sweeps every stored flow, trimming anything that starts before the
// current window lower bound and evicting flows left empty by the trim.
// The controller calls this before taking a snapshot so the invariant
// "every stored flow is non-empty" holds for Engines.
func (fs *FlowStore) Sync() {
	for id, flow := range fs.flows {
		if flow.StartTime() < fs.start {
			flow.DeleteBefore(fs.start)
		}
		if flow.Empty() {
			delete(fs.flows, id)
		}
	}
	if fs.allTraffic.StartTime() < fs.start {
		fs.allTraffic.DeleteBefore(fs.start)
	}
}

// ForEach visits every (identifier, flow) pair in ascending identifier
// order, matching the order internal/engine's fillSketches requires when assigning
// identifiers to sketches.
func (fs *FlowStore) ForEach(fn func(id ident.Identifier, flow *SparseFlow)) {
	ids := make([]ident.Identifier, 0, len(fs.flows))
	for id := range fs.flows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	for _, id := range ids {
		fn(id, fs.flows[id])
	}
}

// Len is the number of distinct identifiers currently tracked.
func (fs *FlowStore) Len() int { return len(fs.flows) }

// Snapshot is an immutable copy of the store's current state, safe to
// share across concurrently running Engines: each flow is deep-copied so
// no Engine can observe a later AddPacket on the live store.
type Snapshot struct {
	windowSize int64
	start      int64
	end        int64
	flows      map[ident.Identifier]*SparseFlow
	allTraffic *SparseFlow
}

// Snapshot copies the store's current flows, window bounds and
// all-traffic flow into an immutable value for Engines to read from.
func (fs *FlowStore) Snapshot() *Snapshot {
	flows := make(map[ident.Identifier]*SparseFlow, len(fs.flows))
	for id, f := range fs.flows {
		cp := NewSparseFlow()
		f.ForEach(func(second int64, count uint32) {
			for i := uint32(0); i < count; i++ {
				cp.AddPoint(second)
			}
		})
		flows[id] = cp
	}
	allCopy := NewSparseFlow()
	fs.allTraffic.ForEach(func(second int64, count uint32) {
		for i := uint32(0); i < count; i++ {
			allCopy.AddPoint(second)
		}
	})
	return &Snapshot{
		windowSize: fs.windowSize,
		start:      fs.start,
		end:        fs.end,
		flows:      flows,
		allTraffic: allCopy,
	}
}

// WindowSize is the configured W at snapshot time.
func (s *Snapshot) WindowSize() int64 { return s.windowSize }

// StartTime is s at snapshot time.
func (s *Snapshot) StartTime() int64 { return s.start }

// EndTime is e at snapshot time.
func (s *Snapshot) EndTime() int64 { return s.end }

// Span is e - s + 1 at snapshot time: the window's live length, used to
// size every Sketch's TimeSeries.
func (s *Snapshot) Span() int64 { return s.end - s.start + 1 }

// AllTraffic is the aggregate flow at snapshot time.
func (s *Snapshot) AllTraffic() *SparseFlow { return s.allTraffic }

// Len is the number of distinct identifiers in the snapshot.
func (s *Snapshot) Len() int { return len(s.flows) }

// ForEach visits every (identifier, flow) pair in ascending identifier
// order.
func (s *Snapshot) ForEach(fn func(id ident.Identifier, flow *SparseFlow)) {
	ids := make([]ident.Identifier, 0, len(s.flows))
	for id := range s.flows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
	for _, id := range ids {
		fn(id, s.flows[id])
	}
}
