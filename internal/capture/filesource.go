package capture

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"os"
	"sync/atomic"

	"github.com/DNSBelgium/qlad/internal/flowdata"
	"github.com/DNSBelgium/qlad/internal/metrics"
)

// ErrSourceNotOpen is returned by StartCapture if Open was never called
// or already Closed.
var ErrSourceNotOpen = errors.New("capture: source not open")

// recordHeaderLen is the fixed-size prefix of one FileSource record:
// a big-endian unix-seconds timestamp, then a big-endian payload length.
const recordHeaderLen = 8

// FileSource replays a simple recorded-capture file: a sequence of
// records `(unix_seconds uint32, payload_len uint32, payload []byte)`,
// all big-endian. This stands in for the real capture collaborator
// named in §6.1/§12 (libpcap/BPF is out of scope); internal/fixtures
// produces files in this same format for end-to-end tests.
//
// filter is accepted for interface compatibility but unused: a file
// replay has no BPF program to apply, matching §6.2's
// --filter-queries/--filter-replies flags being a capture-side concern.
type FileSource struct {
	r         *bufio.Reader
	closer    io.Closer
	open      bool
	exhausted bool
	stop      atomic.Bool
	metrics   *metrics.Metrics
}

// NewFileSource returns an unopened FileSource.
func NewFileSource() *FileSource { return &FileSource{} }

// WithMetrics attaches m so every record StartCapture reads increments
// m.PacketsSeen; nil is valid and disables instrumentation (the zero
// value FileSource already behaves this way). Per-reason drop counts
// (§7 kinds 3-4) aren't observable here: Policy.Parse/FlowStore.AddPacket
// collapse rejection to a bool, not a typed reason, so attributing a
// specific metrics.DropReason would require widening that interface —
// left as a documented gap rather than guessed at.
func (s *FileSource) WithMetrics(m *metrics.Metrics) *FileSource {
	s.metrics = m
	return s
}

// Open reads from path, or from standard input if path is "-".
func (s *FileSource) Open(path string, filter string) error {
	if path == "-" {
		s.r = bufio.NewReader(os.Stdin)
		s.closer = nil
	} else {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		s.r = bufio.NewReader(f)
		s.closer = f
	}
	s.open = true
	s.exhausted = false
	s.stop.Store(false)
	return nil
}

// CanCapture reports whether the file has more records to deliver.
func (s *FileSource) CanCapture() bool { return s.open && !s.exhausted }

// StartCapture reads records until durationSeconds of packet time (since
// the first record read in this call) has elapsed, the file ends, or
// StopCapture is called.
func (s *FileSource) StartCapture(store *flowdata.FlowStore, policy flowdata.Policy, durationSeconds int64) error {
	if !s.open {
		return ErrSourceNotOpen
	}

	var haveFirst bool
	var first int64
	header := make([]byte, recordHeaderLen)

	for {
		if s.stop.Load() {
			s.stop.Store(false)
			return nil
		}
		if _, err := io.ReadFull(s.r, header); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				s.exhausted = true
				return nil
			}
			return err
		}
		second := int64(binary.BigEndian.Uint32(header[0:4]))
		payloadLen := binary.BigEndian.Uint32(header[4:8])

		payload := make([]byte, payloadLen)
		if _, err := io.ReadFull(s.r, payload); err != nil {
			return err
		}

		if s.metrics != nil {
			s.metrics.PacketsSeen.Inc()
		}

		if !haveFirst {
			first = second
			haveFirst = true
		}
		if second-first >= durationSeconds {
			// This record belongs to the next tick; StartCapture has no
			// way to push it back, so a single-record lookahead is
			// accepted as the tick boundary's granularity and the
			// record is still delivered to avoid dropping it silently.
			store.AddPacket(payload, second, policy)
			return nil
		}
		store.AddPacket(payload, second, policy)
	}
}

// StopCapture breaks a concurrently running StartCapture call.
func (s *FileSource) StopCapture() { s.stop.Store(true) }

// Close releases the underlying file, if any.
func (s *FileSource) Close() error {
	s.open = false
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
