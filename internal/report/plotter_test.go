package report

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnomalyPlotFileNameMatchesTickStartTime(t *testing.T) {
	require.Equal(t, "out/1700000000.gp", AnomalyPlotFileName("out", 1700000000))
}

func TestNoopPlotterDoesNothing(t *testing.T) {
	var p AnomalyPlotter = NoopPlotter{}
	require.NoError(t, p.Plot("out", 0, []string{"192.168.0.1"}))
}
