// Package flowdata holds the per-identifier time series structures: the
// sparse per-second flow, the dense aggregated TimeSeries, and the Sketch
// that sums many flows together (§3 and §4.6 of the design).
package flowdata

// point is one (second, count) sample. Grounded on the original
// SparseFlow's std::vector<std::pair<time_t, uint32_t>>.
type point struct {
	second int64
	count  uint32
}

// SparseFlow is the per-identifier time series: an ordered sequence of
// (second, count) pairs with strictly increasing second. It is created
// lazily on the first valid point for an identifier and destroyed once its
// window slice empties (FlowStore owns that lifecycle).
type SparseFlow struct {
	series []point
	total  uint64
}

// NewSparseFlow returns an empty flow, ready for AddPoint.
func NewSparseFlow() *SparseFlow {
	return &SparseFlow{}
}

// AddPoint appends a packet arrival at second t. Out-of-order points
// (t < endTime) are silently dropped, matching the "ignore out-of-order
// packets" rule of the original SparseFlow::addPoint. Equal to the last
// stored second, the count is merged rather than appended.
func (f *SparseFlow) AddPoint(t int64) {
	n := len(f.series)
	if n > 0 && f.series[n-1].second > t {
		return
	}
	if n == 0 || f.series[n-1].second != t {
		f.series = append(f.series, point{second: t, count: 1})
	} else {
		f.series[n-1].count++
	}
	f.total++
}

// DeleteBefore removes every point strictly earlier than t, adjusting the
// total count by the sum of removed counts. Does not guarantee
// StartTime() == t; callers must check Empty() afterward.
func (f *SparseFlow) DeleteBefore(t int64) {
	n := len(f.series)
	if n == 0 || f.series[n-1].second < t {
		f.Clear()
		return
	}
	i := 0
	for i < n && f.series[i].second < t {
		f.total -= uint64(f.series[i].count)
		i++
	}
	f.series = f.series[i:]
}

// Clear drops every stored point.
func (f *SparseFlow) Clear() {
	f.series = nil
	f.total = 0
}

// Empty reports whether any point is stored.
func (f *SparseFlow) Empty() bool { return len(f.series) == 0 }

// Count is the total number of packets represented (sum of per-second
// counts), i.e. total_points in §3.
func (f *SparseFlow) Count() uint64 { return f.total }

// Size is the dense-equivalent span: endTime - startTime + 1. Panics if
// empty, matching the original's documented precondition.
func (f *SparseFlow) Size() int64 {
	return f.EndTime() - f.StartTime() + 1
}

// StartTime is the second of the first stored point. Do not call on an
// empty flow.
func (f *SparseFlow) StartTime() int64 {
	return f.series[0].second
}

// EndTime is the second of the last stored point. Do not call on an empty
// flow.
func (f *SparseFlow) EndTime() int64 {
	return f.series[len(f.series)-1].second
}

// Points returns the stored (second, count) pairs in ascending order of
// second. The returned slices share no backing array with the flow's
// internal storage beyond what a caller might mutate through pointers
// (point is a value type), so callers may not use this to mutate the flow.
func (f *SparseFlow) Points() []struct {
	Second int64
	Count  uint32
} {
	out := make([]struct {
		Second int64
		Count  uint32
	}, len(f.series))
	for i, p := range f.series {
		out[i].Second = p.second
		out[i].Count = p.count
	}
	return out
}

// ForEach iterates stored points in order without allocating a copy,
// mirroring the original's const_iterator-based addFlow/plot loops.
func (f *SparseFlow) ForEach(fn func(second int64, count uint32)) {
	for _, p := range f.series {
		fn(p.second, p.count)
	}
}
