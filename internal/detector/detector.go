// Package detector implements §4.8's consensus detector: run N Engines
// (one per hash function) against a shared FlowStore snapshot on the
// worker pool, wait for all of them, and intersect their anomalous-ID
// sets. An identifier is only reported if every independent random
// projection agreed it was anomalous, controlling the hash-collision
// layer's false-positive rate. Ported from original_source's
// analyzer/Detector.{h,cpp}.
package detector

import (
	"time"

	"github.com/google/uuid"

	"github.com/DNSBelgium/qlad/internal/engine"
	"github.com/DNSBelgium/qlad/internal/flowdata"
	"github.com/DNSBelgium/qlad/internal/hashfamily"
	"github.com/DNSBelgium/qlad/internal/ident"
	"github.com/DNSBelgium/qlad/internal/merge"
	"github.com/DNSBelgium/qlad/internal/metrics"
	"github.com/DNSBelgium/qlad/internal/stats"
	"github.com/DNSBelgium/qlad/internal/workerpool"
)

// Config is the parameters shared by every Engine a Detector spawns.
// Metrics is optional (nil is valid, and skips all instrumentation) so
// internal/detector's own tests can construct a Config without pulling
// internal/metrics' Registry bookkeeping into every test case.
type Config struct {
	HashCount         int
	SketchCount       int
	AggregationCount  int
	Threshold         float64
	Parameter         stats.Parameter
	LogConsensusGraph bool
	Metrics           *metrics.Metrics
}

// Result is one detection tick's outcome: the window it covered, the
// consensus anomalous-ID set, and (if requested) the diagnostic
// consensus graph.
type Result struct {
	RunID        uuid.UUID
	StartTime    int64
	EndTime      int64
	TrackedCount int
	Anomalous    []ident.Identifier
	Graph        *ConsensusGraph
}

// Detector runs one detection tick: N Engines sharing one FlowStore
// snapshot, submitted to a worker pool (§5: "jobs on the same logical
// window execute in parallel").
type Detector struct {
	cfg    Config
	pool   *workerpool.Pool
	hashes *hashfamily.HashFamily
}

// New returns a Detector that will spawn cfg.HashCount Engines on pool,
// each reading the same HashFamily.
func New(cfg Config, pool *workerpool.Pool, hashes *hashfamily.HashFamily) *Detector {
	return &Detector{cfg: cfg, pool: pool, hashes: hashes}
}

// Run takes an immutable FlowStore snapshot, submits one Engine per hash
// function to the worker pool, blocks until every Engine is Done, and
// returns the intersection of their anomalous-ID sets (§4.8).
func (d *Detector) Run(snapshot *flowdata.Snapshot) (*Result, error) {
	runStart := time.Now()

	engines := make([]*engine.Engine, d.cfg.HashCount)
	done := make(chan struct{}, d.cfg.HashCount)

	for h := 0; h < d.cfg.HashCount; h++ {
		e := engine.New(engine.Config{
			HashIndex:        h,
			SketchCount:      d.cfg.SketchCount,
			AggregationCount: d.cfg.AggregationCount,
			Threshold:        d.cfg.Threshold,
			Parameter:        d.cfg.Parameter,
		}, d.hashes, snapshot)
		engines[h] = e
		d.pool.Submit(workerpool.JobFunc(func() {
			engineStart := time.Now()
			_ = e.Run() // Wait() below surfaces the error
			if d.cfg.Metrics != nil {
				d.cfg.Metrics.ObserveEngineRun(time.Since(engineStart))
			}
			done <- struct{}{}
		}))
	}
	for i := 0; i < d.cfg.HashCount; i++ {
		<-done
	}

	perEngine := make([][]ident.Identifier, d.cfg.HashCount)
	for i, e := range engines {
		if err := e.Wait(); err != nil {
			return nil, err
		}
		perEngine[i] = e.AnomalousIDs()
		if d.cfg.Metrics != nil {
			d.cfg.Metrics.SketchesFlagged.Add(float64(e.AnomalousSketchCount()))
		}
	}

	consensus := merge.Intersect(perEngine, identLess, identEqual)

	var graph *ConsensusGraph
	if d.cfg.LogConsensusGraph {
		graph = BuildConsensusGraph(perEngine)
	}

	if d.cfg.Metrics != nil {
		d.cfg.Metrics.ObserveDetectorRun(time.Since(runStart))
	}

	return &Result{
		RunID:        uuid.New(),
		StartTime:    snapshot.StartTime(),
		EndTime:      snapshot.StartTime() + snapshot.Span() - 1,
		TrackedCount: snapshot.Len(),
		Anomalous:    consensus,
		Graph:        graph,
	}, nil
}

func identLess(a, b ident.Identifier) bool  { return a.Less(b) }
func identEqual(a, b ident.Identifier) bool { return a.Equal(b) }
