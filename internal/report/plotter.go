package report

import (
	"fmt"
	"path/filepath"
)

// AnomalyPlotter is the named interface for the plotting/visualization
// collaborator spec.md's Non-goals explicitly exclude rendering for
// (matching original_source's GnuPlot.h/AnomalyPlotter). No implementation
// renders a plot here; the interface and the file-naming rule it carries
// exist so a real plotting backend could be dropped in later without
// renegotiating the contract with internal/detector or internal/controller.
type AnomalyPlotter interface {
	// Plot is called once per detection tick for which anomalies were
	// found (original_source's Detector.h only ever invokes GnuPlot when
	// the anomalous set is non-empty). outputDir is the directory named
	// by --graph-anomalies; startTime is the tick's window start, used
	// to derive the output file name via AnomalyPlotFileName.
	Plot(outputDir string, startTime int64, anomalous []string) error
}

// NoopPlotter implements AnomalyPlotter by doing nothing, which is the
// only plotter this repo ships: plotting/visualization output is a
// Non-goal. It exists so callers that always hold an AnomalyPlotter
// (rather than a nil-checked pointer) have something to construct.
type NoopPlotter struct{}

// Plot satisfies AnomalyPlotter without writing anything.
func (NoopPlotter) Plot(outputDir string, startTime int64, anomalous []string) error { return nil }

// AnomalyPlotFileName reproduces original_source's per-tick gnuplot file
// naming rule (`<start_time>.gp`), so a real AnomalyPlotter implementation
// and the tests that exercise --graph-anomalies can agree on where output
// would land without this package ever writing the file itself.
func AnomalyPlotFileName(outputDir string, startTime int64) string {
	return filepath.Join(outputDir, fmt.Sprintf("%d.gp", startTime))
}
