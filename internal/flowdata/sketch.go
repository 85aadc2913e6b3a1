package flowdata

import "github.com/DNSBelgium/qlad/internal/ident"

// Sketch is one hash bucket of a random-projection pass: a dense time
// series summing every member flow's counts, plus the ordered set of
// identifiers that were folded into it. Size and start time are fixed at
// construction (§4.6); callers add flows strictly in ascending identifier
// order, matching how FlowStore iterates and how internal/engine's
// fillSketches assigns identifiers to sketches.
//
// The original source exposes this state via an operator<< that calls
// getIdentifiers(), a method the C++ class never actually defines; here
// Identifiers() is simply the uniform, always-defined accessor.
type Sketch struct {
	series      *TimeSeries
	identifiers []ident.Identifier
}

// NewSketch allocates an empty sketch with a series of the given start
// time and length, aggregation 1.
func NewSketch(startTime int64, length int) *Sketch {
	return &Sketch{series: NewTimeSeries(startTime, length)}
}

// Series is the dense per-second counts summed across every member flow.
func (s *Sketch) Series() *TimeSeries { return s.series }

// Identifiers returns the members folded into this sketch, in the order
// they were added (ascending, by caller contract).
func (s *Sketch) Identifiers() []ident.Identifier { return s.identifiers }

// Empty reports whether any flow has been added.
func (s *Sketch) Empty() bool { return len(s.identifiers) == 0 }

// AddFlow folds id's flow into the sketch: appends id to the member list
// and sums flow's per-second counts into the dense series. Returns false
// without mutating the sketch if flow falls outside the sketch's fixed
// window (flow.startTime before the sketch's start, or flow.endTime would
// index past the end) — the caller (internal/engine's fillSketches)
// aborts the run with a "did not fit its assigned sketch" error.
func (s *Sketch) AddFlow(id ident.Identifier, flow *SparseFlow) bool {
	if flow.Empty() {
		return false
	}
	if flow.StartTime() < s.series.StartTime() {
		return false
	}
	if flow.EndTime()-s.series.StartTime() >= int64(s.series.Len()) {
		return false
	}
	flow.ForEach(func(second int64, count uint32) {
		idx := int(second - s.series.StartTime())
		s.series.AddAt(idx, uint64(count))
	})
	s.identifiers = append(s.identifiers, id)
	return true
}
