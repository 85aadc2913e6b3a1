package flowdata

// TimeSeries is a dense vector of per-bucket packet counts, with a fixed
// start time and an aggregation factor (seconds per bucket). Length is
// fixed at construction; the only way to change granularity is Aggregate,
// which returns a new, coarser TimeSeries.
type TimeSeries struct {
	startTime   int64
	aggregation int64
	buckets     []uint64
}

// NewTimeSeries allocates a zeroed series of the given length at
// aggregation 1 second/bucket, starting at startTime.
func NewTimeSeries(startTime int64, length int) *TimeSeries {
	return &TimeSeries{
		startTime:   startTime,
		aggregation: 1,
		buckets:     make([]uint64, length),
	}
}

// StartTime is the time of bucket 0.
func (s *TimeSeries) StartTime() int64 { return s.startTime }

// Aggregation is the number of seconds each bucket spans.
func (s *TimeSeries) Aggregation() int64 { return s.aggregation }

// Len is the number of buckets.
func (s *TimeSeries) Len() int { return len(s.buckets) }

// At returns the count in bucket i.
func (s *TimeSeries) At(i int) uint64 { return s.buckets[i] }

// AddAt adds n to bucket i.
func (s *TimeSeries) AddAt(i int, n uint64) { s.buckets[i] += n }

// Sum is the total count across every bucket.
func (s *TimeSeries) Sum() uint64 {
	var total uint64
	for _, b := range s.buckets {
		total += b
	}
	return total
}

// Aggregate re-bins the series into buckets f seconds wide, summing
// consecutive source buckets. f must be a positive multiple of the
// current aggregation; callers violating that return a nil series rather
// than a panic, since the estimator loop (§4.7) tries many aggregations
// and must skip invalid ones cheaply.
func (s *TimeSeries) Aggregate(f int64) *TimeSeries {
	if f <= 0 || f < s.aggregation || f%s.aggregation != 0 {
		return nil
	}
	factor := int(f / s.aggregation)
	newLen := (len(s.buckets) + factor - 1) / factor
	out := &TimeSeries{
		startTime:   s.startTime,
		aggregation: f,
		buckets:     make([]uint64, newLen),
	}
	for i, v := range s.buckets {
		out.buckets[i/factor] += v
	}
	return out
}
