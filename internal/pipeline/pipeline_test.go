// Package pipeline exercises internal/fixtures, internal/capture,
// internal/controller and internal/report wired together exactly the
// way cmd/qlad-analyzer wires them, without going through cobra/CLI
// parsing. It has no production code of its own: it is the end-to-end
// counterpart to each package's unit tests.
package pipeline

import (
	"bytes"
	"context"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DNSBelgium/qlad/internal/capture"
	"github.com/DNSBelgium/qlad/internal/controller"
	"github.com/DNSBelgium/qlad/internal/detector"
	"github.com/DNSBelgium/qlad/internal/fixtures"
	"github.com/DNSBelgium/qlad/internal/flowdata"
	"github.com/DNSBelgium/qlad/internal/hashfamily"
	"github.com/DNSBelgium/qlad/internal/ident"
	"github.com/DNSBelgium/qlad/internal/policy"
	"github.com/DNSBelgium/qlad/internal/report"
	"github.com/DNSBelgium/qlad/internal/stats"
	"github.com/DNSBelgium/qlad/internal/workerpool"
)

// writeScenario sorts packets by second (GenerateOneLoudIdentifier
// appends its loud traffic after the whole population's run, out of
// second order) and encodes them into an in-memory record stream in
// capture.FileSource's own format.
func writeScenario(t *testing.T, packets []fixtures.Packet) string {
	t.Helper()
	sort.SliceStable(packets, func(i, j int) bool { return packets[i].Second < packets[j].Second })

	var buf bytes.Buffer
	require.NoError(t, fixtures.WriteRecords(&buf, packets))

	dir := t.TempDir()
	path := dir + "/scenario.bin"
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func TestPipelineFlagsLoudIdentifierAsAnomalous(t *testing.T) {
	const window = int64(32)
	const population = 12
	const loudIP = uint32(0x0A000099)

	packets := fixtures.GenerateOneLoudIdentifier(window, population, loudIP)
	path := writeScenario(t, packets)

	src := capture.NewFileSource()
	require.NoError(t, src.Open(path, ""))
	defer src.Close()

	store := flowdata.NewFlowStore(window)
	pool := workerpool.New(4)
	pool.Run()
	defer pool.Stop()

	hashes := hashfamily.New(5, ident.MaxDomainLabelLen, 42)

	var buf bytes.Buffer
	writer := report.NewWriter(&buf)

	var results []*detector.Result
	sink := func(result *detector.Result, err error) {
		require.NoError(t, err)
		results = append(results, result)
		require.NoError(t, writer.Write(result))
	}

	newDetector := func() *detector.Detector {
		return detector.New(detector.Config{
			HashCount:        5,
			SketchCount:      4,
			AggregationCount: 4,
			Threshold:        0.8,
			Parameter:        stats.ScaleOnly,
		}, pool, hashes)
	}

	ctrl := controller.New(controller.Config{
		WindowSize:        window,
		DetectionInterval: window,
	}, store, src, policy.SrcIP{}, newDetector, sink)

	require.NoError(t, ctrl.Run(context.Background()))
	require.NotEmpty(t, results)

	loud := ident.NewIPv4(loudIP)
	found := false
	for _, r := range results {
		for _, a := range r.Anomalous {
			if a.Equal(loud) {
				found = true
			}
		}
	}
	require.True(t, found, "loud identifier should be flagged anomalous in at least one tick")

	reportText := buf.String()
	require.Contains(t, reportText, "From: ")
	require.Contains(t, reportText, "found anomalies")
	require.True(t, strings.Contains(reportText, loud.String()), "report text should name the loud identifier")
}
