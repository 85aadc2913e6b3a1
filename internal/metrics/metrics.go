// Package metrics instruments the analyzer pipeline with
// github.com/prometheus/client_golang (§10), grounded on etalazz-vsa's
// internal/ratelimiter/telemetry/churn/prom_counters.go: package-level
// prometheus.NewCounter/NewGauge/NewHistogram values, registered on a
// dedicated Registry (not the global DefaultRegisterer, so multiple
// analyzer instances in one test binary don't collide on re-registration),
// with a StartServer that's only called when --metrics-addr is given —
// the registry itself is always populated and observable from tests
// whether or not anything ever listens on a port.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DropReason labels why internal/dnswire or internal/policy rejected a
// packet, matching §7 kind 3's enumerated parse-reject causes. Nothing in
// the pipeline calls Drop, so PacketsDropped stays at zero outside tests.
type DropReason string

const (
	DropTruncatedHeader  DropReason = "truncated_header"
	DropUnsupportedIPVer DropReason = "unsupported_ip_version"
	DropNonUDP           DropReason = "non_udp"
	DropNonDNS           DropReason = "non_dns"
	DropFragmented       DropReason = "fragmented"
	DropCompressedQName  DropReason = "compressed_qname"
	DropOutOfOrder       DropReason = "out_of_order"
)

// Metrics holds every collector the pipeline reports to. Construct one
// with New and hand it to internal/capture.FileSource.WithMetrics and
// internal/detector.Config. Its methods must not be called on a nil
// *Metrics; those two call sites accept nil and then skip instrumentation.
type Metrics struct {
	registry *prometheus.Registry

	PacketsSeen      prometheus.Counter
	PacketsDropped   *prometheus.CounterVec
	DetectorDuration prometheus.Histogram
	EngineDuration   prometheus.Histogram
	SketchesFlagged  prometheus.Counter
	ConsensusSize    prometheus.Gauge
}

// New builds a Metrics instance with its own Registry and registers every
// collector on it.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		PacketsSeen: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qlad_packets_seen_total",
			Help: "Total packets delivered by the capture source.",
		}),
		PacketsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "qlad_packets_dropped_total",
			Help: "Total packets dropped, labeled by reason (§7 kinds 3-4).",
		}, []string{"reason"}),
		DetectorDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "qlad_detector_run_seconds",
			Help:    "Wall-clock duration of one Detector.Run call.",
			Buckets: prometheus.DefBuckets,
		}),
		EngineDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "qlad_engine_run_seconds",
			Help:    "Wall-clock duration of one Engine.Run call.",
			Buckets: prometheus.DefBuckets,
		}),
		SketchesFlagged: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "qlad_sketches_flagged_anomalous_total",
			Help: "Total sketches scored anomalous, summed over engines and ticks.",
		}),
		ConsensusSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "qlad_consensus_set_size",
			Help: "Size of the most recent tick's consensus anomalous-ID set.",
		}),
	}

	reg.MustRegister(
		m.PacketsSeen,
		m.PacketsDropped,
		m.DetectorDuration,
		m.EngineDuration,
		m.SketchesFlagged,
		m.ConsensusSize,
	)
	return m
}

// Noop returns a Metrics instance whose collectors are live (so callers
// never nil-check) but registered on a throwaway Registry no server ever
// exposes — for tests and code paths that don't care about metrics.
func Noop() *Metrics { return New() }

// Drop increments PacketsDropped for reason.
func (m *Metrics) Drop(reason DropReason) {
	m.PacketsDropped.WithLabelValues(string(reason)).Inc()
}

// ObserveDetectorRun records one Detector.Run call's wall-clock duration.
func (m *Metrics) ObserveDetectorRun(d time.Duration) {
	m.DetectorDuration.Observe(d.Seconds())
}

// ObserveEngineRun records one Engine.Run call's wall-clock duration.
func (m *Metrics) ObserveEngineRun(d time.Duration) {
	m.EngineDuration.Observe(d.Seconds())
}

// StartServer exposes /metrics on addr in a background goroutine, only
// called by cmd/qlad-analyzer when --metrics-addr is non-empty (§10: "not
// exposed unless --metrics-addr is given"). It returns the *http.Server
// so the caller can Shutdown it on ctx cancellation.
func (m *Metrics) StartServer(ctx context.Context, addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		_ = server.ListenAndServe()
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	return server
}
