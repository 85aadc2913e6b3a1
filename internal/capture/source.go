// Package capture defines the packet-source contract the controller
// drives (§6.1) and a minimal file-replay implementation to exercise it
// without any real capture I/O, which is out of scope (§1 Non-goals).
// Grounded on original_source's capture/PacketSource.h.
package capture

import "github.com/DNSBelgium/qlad/internal/flowdata"

// Source is the external PacketSource contract of §6.1: open a capture,
// ask whether it can still deliver packets, run it for a bounded span of
// packet time against a FlowStore, stop it early, and release it.
//
// StartCapture must return once it has delivered durationSeconds worth
// of packet time (measured from the first packet seen during this call)
// or the underlying source is exhausted, whichever comes first — the
// "capture for T seconds then yield" semantics §4.9's controller relies
// on. A concurrent StopCapture call must make an in-progress
// StartCapture return promptly without delivering any bogus final
// record.
type Source interface {
	// Open prepares the source to read from path (a filesystem path, or
	// "-" for standard input, per §6.2's --input-file flag), applying
	// filter (an implementation-defined capture filter expression; the
	// empty string means no filtering).
	Open(path string, filter string) error

	// CanCapture reports whether a further StartCapture call could yield
	// more packets (false once the underlying source is exhausted).
	CanCapture() bool

	// StartCapture feeds packets into store via policy until
	// durationSeconds of packet time has elapsed, StopCapture is called,
	// or the source is exhausted.
	StartCapture(store *flowdata.FlowStore, policy flowdata.Policy, durationSeconds int64) error

	// StopCapture breaks a concurrently running StartCapture call
	// cleanly. Safe to call with no capture in progress.
	StopCapture()

	// Close releases any resources Open acquired. Safe to call more than
	// once.
	Close() error
}
