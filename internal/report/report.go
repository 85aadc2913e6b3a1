// Package report renders a Detector result to the textual report format
// §6.3 specifies, and provides the reporting-only enrichments SPEC_FULL.md
// §11/§13 add on top (subnet overlay grouping, the plotting collaborator's
// named interface, and `--graph-anomalies` file naming). None of this
// feeds back into detection. Ported from original_source's
// analyzer/Reporter.{h,cpp}.
package report

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/DNSBelgium/qlad/internal/detector"
	"github.com/DNSBelgium/qlad/internal/ident"
)

// ctimeLayout approximates C's ctime() output ("Wed Jun 30 21:49:08
// 1993") using Go's reference-time layout; `_2` gives ctime's
// space-padded single-digit day. Detection timestamps are rendered in
// UTC for deterministic, timezone-independent reports.
const ctimeLayout = "Mon Jan _2 15:04:05 2006"

// Writer serializes report output to a single stream, matching §5's
// "the report stream is serialized by a single output mutex".
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter wraps w with the output mutex every Write call shares.
func NewWriter(w io.Writer) *Writer { return &Writer{w: w} }

// Write renders result in §6.3's exact format:
//
//	From: <ctime(start_time)>
//	To: <ctime(end_time)>
//		found anomalies (<k> / <total>) : id1, id2, ...
func (rw *Writer) Write(result *detector.Result) error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\n", formatCTime(result.StartTime))
	fmt.Fprintf(&b, "To: %s\n", formatCTime(result.EndTime))
	fmt.Fprintf(&b, "\tfound anomalies (%d / %d) : %s\n",
		len(result.Anomalous), result.TrackedCount, joinIdentifiers(result.Anomalous))

	_, err := io.WriteString(rw.w, b.String())
	return err
}

func formatCTime(unixSeconds int64) string {
	return time.Unix(unixSeconds, 0).UTC().Format(ctimeLayout)
}

func joinIdentifiers(ids []ident.Identifier) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}
