// Package engine implements one random-projection pass over a FlowStore
// snapshot (§4.6-4.7): fill K sketches with one hash function, estimate
// Gamma parameters per aggregation level, score each sketch's Mahalanobis
// distance from the sketch population's own reference moments, and
// collect the anomalous identifiers. Ported from original_source's
// analyzer/Engine.{h,cpp}.
package engine

import (
	"errors"
	"fmt"

	"github.com/DNSBelgium/qlad/internal/flowdata"
	"github.com/DNSBelgium/qlad/internal/hashfamily"
	"github.com/DNSBelgium/qlad/internal/ident"
	"github.com/DNSBelgium/qlad/internal/merge"
	"github.com/DNSBelgium/qlad/internal/stats"
	"github.com/DNSBelgium/qlad/internal/syncutil"
)

// ErrEmptySketch is §7 kind 2: fill_sketches produced a sketch with no
// member flows, a fatal input-quality failure (window too short, or too
// few captured packets) rather than a degenerate score.
var ErrEmptySketch = errors.New("engine: empty sketch after fill (window too short or too little traffic)")

// Config is one engine's fixed parameters: which hash function to use,
// how many sketches to build, how many aggregation levels to estimate,
// the anomaly threshold, and which Gamma parameter(s) to score on.
type Config struct {
	HashIndex        int
	SketchCount      int
	AggregationCount int
	Threshold        float64
	Parameter        stats.Parameter
}

// state is the engine's monotone lifecycle, §4.7 "Created -> Running ->
// Done".
type state int

const (
	created state = iota
	running
	done
)

// Engine runs one random projection against an immutable FlowStore
// snapshot. Not reusable: one Engine corresponds to one hash function's
// pass over one window.
type Engine struct {
	cfg      Config
	hashes   *hashfamily.HashFamily
	snapshot *flowdata.Snapshot

	finished *syncutil.Signal // set once Run completes, for Wait
	state    state
	err      error
	sketches []*flowdata.Sketch

	anomalous         []ident.Identifier
	anomalousSketches int
	moments           []AggregationMoments
}

// AggregationMoments is one aggregation level's reference statistics
// across this engine's K sketches, exposed for diagnostics once Done.
type AggregationMoments struct {
	AggregationSeconds int64
	Mean               stats.Params
	Variance           stats.Params
	Covariance         float64
	ValidSketches      int
}

// New builds an engine over snapshot using hashes, not yet run.
func New(cfg Config, hashes *hashfamily.HashFamily, snapshot *flowdata.Snapshot) *Engine {
	return &Engine{
		cfg:      cfg,
		hashes:   hashes,
		snapshot: snapshot,
		finished: syncutil.NewSignal(false),
	}
}

// Run executes fill -> estimate -> score -> select, synchronously, then
// transitions to Done. Calling Run twice panics: the state machine is
// monotone and one-shot, matching original_source's Engine::run.
func (e *Engine) Run() error {
	if e.state != created {
		panic("engine: Run called more than once")
	}
	e.state = running

	sketches, err := fillSketches(e.snapshot, e.hashes, e.cfg.HashIndex, e.cfg.SketchCount)
	if err != nil {
		e.finish(err)
		return err
	}
	e.sketches = sketches

	gammaParams, moments := estimate(sketches, e.cfg.AggregationCount)
	e.moments = moments

	anomalous, anomalousSketches, err := selectAnomalous(sketches, gammaParams, moments, e.cfg)
	if err != nil {
		e.finish(err)
		return err
	}
	e.anomalous = anomalous
	e.anomalousSketches = anomalousSketches

	e.finish(nil)
	return nil
}

func (e *Engine) finish(err error) {
	e.err = err
	e.state = done
	e.finished.Set()
}

// Wait blocks until Run has completed (from another goroutine) and
// returns the error Run produced, if any.
func (e *Engine) Wait() error {
	e.finished.Wait()
	return e.err
}

// Done reports whether Run has completed.
func (e *Engine) Done() bool { return e.finished.Poll() }

// AnomalousIDs returns the sorted, deduplicated union of every anomalous
// sketch's members. Valid only after Done (empty before).
func (e *Engine) AnomalousIDs() []ident.Identifier { return e.anomalous }

// AnomalousSketchCount returns how many of this engine's K sketches
// scored above the detection threshold (§4.7 step 4) — distinct from
// len(AnomalousIDs), which counts identifiers after deduplicating across
// those sketches' members. Valid only after Done.
func (e *Engine) AnomalousSketchCount() int { return e.anomalousSketches }

// Moments returns the per-aggregation reference statistics computed
// during scoring, for diagnostics/plotting. Valid only after Done.
func (e *Engine) Moments() []AggregationMoments { return e.moments }

// fillSketches builds K empty sketches sized to the snapshot's window and
// folds every (identifier, flow) pair into bucket hash(h, id) mod K, in
// ascending identifier order (§4.6). Returns ErrEmptySketch if any bucket
// ends up with no members.
func fillSketches(snap *flowdata.Snapshot, hashes *hashfamily.HashFamily, h, k int) ([]*flowdata.Sketch, error) {
	sketches := make([]*flowdata.Sketch, k)
	for i := range sketches {
		sketches[i] = flowdata.NewSketch(snap.StartTime(), int(snap.Span()))
	}

	var addErr error
	snap.ForEach(func(id ident.Identifier, flow *flowdata.SparseFlow) {
		if addErr != nil {
			return
		}
		b := hashes.Bucket(h, id, k)
		if !sketches[b].AddFlow(id, flow) {
			addErr = fmt.Errorf("engine: flow for %s did not fit its assigned sketch", id)
		}
	})
	if addErr != nil {
		return nil, addErr
	}

	for _, s := range sketches {
		if s.Empty() {
			return nil, ErrEmptySketch
		}
	}
	return sketches, nil
}

// estimate computes, for every sketch and every aggregation level
// j in [0, A), the method-of-moments Gamma parameters of that sketch's
// agg(j)=2^j-second re-binned series, plus the per-aggregation reference
// moments (mean, variance, cross-covariance) across sketches, ignoring
// Invalid estimates (§4.7 steps 2-3).
func estimate(sketches []*flowdata.Sketch, aggregationCount int) ([][]stats.Params, []AggregationMoments) {
	k := len(sketches)
	gammaParams := make([][]stats.Params, k)
	for i := range gammaParams {
		gammaParams[i] = make([]stats.Params, aggregationCount)
	}

	moments := make([]AggregationMoments, aggregationCount)
	for j := 0; j < aggregationCount; j++ {
		f := int64(1) << uint(j)
		var shapes, scales []float64
		for i, sketch := range sketches {
			agg := sketch.Series().Aggregate(f)
			var p stats.Params
			if agg != nil {
				p = stats.Estimate(seriesValues(agg))
			}
			gammaParams[i][j] = p
			if p.IsValid() {
				shapes = append(shapes, p.Shape())
				scales = append(scales, p.Scale())
			}
		}
		mean, variance, cov := momentsOf(shapes, scales, len(sketches))
		moments[j] = AggregationMoments{
			AggregationSeconds: f,
			Mean:               mean,
			Variance:           variance,
			Covariance:         cov,
			ValidSketches:      len(shapes),
		}
	}
	return gammaParams, moments
}

func seriesValues(ts *flowdata.TimeSeries) []uint64 {
	out := make([]uint64, ts.Len())
	for i := range out {
		out[i] = ts.At(i)
	}
	return out
}

// momentsOf computes the sample mean, variance, and cross-covariance of
// parallel shape/scale slices (one entry per sketch with a valid Gamma
// fit at this aggregation), via the same E[X^2]-E[X]^2 accumulation
// stats.SampleMeanVariance uses for a single series. The sums run over
// the valid entries only, but are normalized by k — the total sketch
// count at this aggregation, valid or not — matching original_source's
// Engine::approximateParams (Engine.h), which divides by mSketches.size()
// rather than the count of sketches that produced a valid fit. A sketch
// that's Invalid at this aggregation still pulls the reference moments
// toward zero instead of being excluded as if it didn't exist.
func momentsOf(shapes, scales []float64, k int) (mean, variance stats.Params, covariance float64) {
	if k == 0 {
		return stats.Invalid, stats.Invalid, 0
	}
	var sumShape, sumScale, sumShape2, sumScale2, sumCross float64
	for i := range shapes {
		sumShape += shapes[i]
		sumScale += scales[i]
		sumShape2 += shapes[i] * shapes[i]
		sumScale2 += scales[i] * scales[i]
		sumCross += shapes[i] * scales[i]
	}
	fk := float64(k)
	meanShape, meanScale := sumShape/fk, sumScale/fk
	varShape := sumShape2/fk - meanShape*meanShape
	varScale := sumScale2/fk - meanScale*meanScale
	cov := sumCross/fk - meanShape*meanScale
	return stats.NewParams(meanShape, meanScale), stats.NewParams(varShape, varScale), cov
}

// selectAnomalous scores every sketch's Mahalanobis distance from the
// per-aggregation reference moments and returns the sorted union of
// members from sketches scoring above the threshold (§4.7 steps 4-5),
// along with how many sketches that was (before the cross-sketch
// dedup union — the count a "sketches flagged anomalous" metric means).
func selectAnomalous(sketches []*flowdata.Sketch, gammaParams [][]stats.Params, moments []AggregationMoments, cfg Config) ([]ident.Identifier, int, error) {
	referenceMean := make([]stats.Params, len(moments))
	referenceVariance := make([]stats.Params, len(moments))
	referenceCovariance := make([]float64, len(moments))
	for j, m := range moments {
		referenceMean[j] = m.Mean
		referenceVariance[j] = m.Variance
		referenceCovariance[j] = m.Covariance
	}

	members := make([][]ident.Identifier, 0, len(sketches))
	for i, sketch := range sketches {
		d, err := stats.MahalanobisDistance(referenceMean, referenceVariance, referenceCovariance, gammaParams[i], cfg.Parameter)
		if err != nil {
			return nil, 0, fmt.Errorf("engine: scoring sketch %d: %w", i, err)
		}
		if d > cfg.Threshold {
			members = append(members, sketch.Identifiers())
		}
	}
	if len(members) == 0 {
		return nil, 0, nil
	}
	return merge.Union(members, identLess, identEqual), len(members), nil
}

func identLess(a, b ident.Identifier) bool  { return a.Less(b) }
func identEqual(a, b ident.Identifier) bool { return a.Equal(b) }
