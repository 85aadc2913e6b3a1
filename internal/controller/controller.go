// Package controller implements §4.9's sliding-window controller: warm up
// the FlowStore to a full window, then repeatedly capture one detection
// interval, sync the store, and spawn a Detector against a snapshot,
// reaping finished Detectors from a FIFO without ever blocking capture on
// detection. Ported from original_source's analyzer/Controller.{h,cpp}.
package controller

import (
	"context"

	"github.com/DNSBelgium/qlad/internal/capture"
	"github.com/DNSBelgium/qlad/internal/detector"
	"github.com/DNSBelgium/qlad/internal/flowdata"
)

// Config is the controller's own parameters, independent of any one
// Detector run's hash/sketch/threshold configuration (that lives in
// detector.Config, held by the Detector the controller builds each
// tick).
type Config struct {
	WindowSize        int64 // W, seconds
	DetectionInterval int64 // I, seconds; must be <= WindowSize
}

// DetectorFactory builds a fresh Detector for one tick against store's
// current snapshot. The controller doesn't own Detector construction
// directly so callers can vary hash seeds/run IDs per tick if desired.
type DetectorFactory func() *detector.Detector

// Sink receives each tick's Result (or the error its Detector failed
// with) when the controller reaps that Detector — after each interval's
// capture if it has finished by then, otherwise at drain — in FIFO
// reap order, which is
// completion order only to the extent reapFront/reapAll wait on it; see
// §4.9: "submission order is preserved but completion order is not"
// across Detectors in general, but this controller only ever has one
// reap in flight at a time.
type Sink func(*detector.Result, error)

// Controller runs the sliding-window loop described in §4.9 against one
// FlowStore instance, one capture.Source, and one Policy.
type Controller struct {
	cfg      Config
	store    *flowdata.FlowStore
	source   capture.Source
	policy   flowdata.Policy
	newDet   DetectorFactory
	sink     Sink
	inFlight []*inFlightDetector
}

type inFlightDetector struct {
	det  *detector.Detector
	snap *flowdata.Snapshot
	done chan detectorOutcome
}

type detectorOutcome struct {
	result *detector.Result
	err    error
}

// New builds a controller over store (expected to already be configured
// with WindowSize = cfg.WindowSize), reading packets from source via
// policy, spawning Detectors via newDet and delivering their results to
// sink.
func New(cfg Config, store *flowdata.FlowStore, source capture.Source, policy flowdata.Policy, newDet DetectorFactory, sink Sink) *Controller {
	return &Controller{
		cfg:    cfg,
		store:  store,
		source: source,
		policy: policy,
		newDet: newDet,
		sink:   sink,
	}
}

// Run executes the full warm-up/loop/drain lifecycle of §4.9, returning
// nil when the capture source is exhausted and every in-flight Detector
// has been reaped. ctx cancellation (no cancellation/timeout mechanism
// exists inside the core per §5, so this is purely a caller-side
// convenience) is checked only between interval captures, not during
// warm-up or an in-progress StartCapture; once seen, Run calls
// source.StopCapture, drains whatever Detectors are already running,
// then returns ctx.Err().
func (c *Controller) Run(ctx context.Context) error {
	// 1. Warm-up: capture(store, W), then spawn Detector #0.
	if err := c.source.StartCapture(c.store, c.policy, c.cfg.WindowSize); err != nil {
		return err
	}
	c.store.Sync()
	c.spawn()

	// 2. Loop while capture is active.
	for c.source.CanCapture() {
		select {
		case <-ctx.Done():
			c.source.StopCapture()
			c.reapAll()
			return ctx.Err()
		default:
		}
		if err := c.source.StartCapture(c.store, c.policy, c.cfg.DetectionInterval); err != nil {
			c.reapAll()
			return err
		}
		c.store.Sync()
		c.spawn()
		c.reapFront()
	}

	// 3. Drain: wait for all in-flight Detectors.
	c.reapAll()
	return nil
}

// spawn snapshots the store, builds a Detector, and runs it on its own
// goroutine (the Detector itself fans out onto the worker pool; this
// goroutine only exists so Run never blocks on a Detector's completion).
func (c *Controller) spawn() {
	snap := c.store.Snapshot()
	det := c.newDet()
	fd := &inFlightDetector{det: det, snap: snap, done: make(chan detectorOutcome, 1)}
	go func() {
		result, err := det.Run(snap)
		fd.done <- detectorOutcome{result: result, err: err}
	}()
	c.inFlight = append(c.inFlight, fd)
}

// reapFront pops and delivers the oldest in-flight Detector's result only
// if it has already finished (§4.9: "reap finished Detectors from the
// front of a FIFO" / "never block capture on detection"), matching
// original_source's Controller polling done() rather than waiting on it.
// If the front Detector is still running, the FIFO is left untouched and
// Run proceeds straight back into capture; a slow Detector can make the
// FIFO grow across ticks, bounded only by how far detection lags
// capture, but capture itself never stalls on it. reapAll still drains
// whatever remains once capture ends.
func (c *Controller) reapFront() {
	if len(c.inFlight) == 0 {
		return
	}
	select {
	case outcome := <-c.inFlight[0].done:
		c.inFlight = c.inFlight[1:]
		c.deliver(outcome)
	default:
	}
}

// reapAll waits for every remaining in-flight Detector, in FIFO order.
func (c *Controller) reapAll() {
	for _, fd := range c.inFlight {
		outcome := <-fd.done
		c.deliver(outcome)
	}
	c.inFlight = nil
}

func (c *Controller) deliver(outcome detectorOutcome) {
	if c.sink == nil {
		return
	}
	c.sink(outcome.result, outcome.err)
}
