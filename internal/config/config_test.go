package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DNSBelgium/qlad/internal/policy"
	"github.com/DNSBelgium/qlad/internal/stats"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsWindowTooShort(t *testing.T) {
	cfg := Default()
	cfg.WindowSize = 4
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsIntervalExceedingWindow(t *testing.T) {
	cfg := Default()
	cfg.WindowSize = 100
	cfg.DetectionInterval = 200
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsAggregationOutOfRange(t *testing.T) {
	cfg := Default()
	cfg.AggregationCount = 0
	require.Error(t, cfg.Validate())

	cfg2 := Default()
	cfg2.AggregationCount = 32
	require.Error(t, cfg2.Validate())
}

func TestValidateRejectsAggregationWiderThanWindow(t *testing.T) {
	cfg := Default()
	cfg.WindowSize = 10
	cfg.DetectionInterval = 5
	cfg.AggregationCount = 8 // agg(7) = 128s >> 10s window
	require.Error(t, cfg.Validate())
}

func TestValidateRejectsUnknownPolicyAndGammaParameter(t *testing.T) {
	cfg := Default()
	cfg.Policy = "nope"
	require.Error(t, cfg.Validate())

	cfg2 := Default()
	cfg2.GammaParameter = "nope"
	require.Error(t, cfg2.Validate())
}

func TestGammaParameterValueResolvesToStatsParameter(t *testing.T) {
	cfg := Default()
	cfg.GammaParameter = GammaBoth
	p, err := cfg.GammaParameterValue()
	require.NoError(t, err)
	require.Equal(t, stats.Both, p)
}

func TestPolicyValueResolvesToPolicyImplementation(t *testing.T) {
	cfg := Default()
	cfg.Policy = PolicyQName
	p, err := cfg.PolicyValue()
	require.NoError(t, err)
	require.Equal(t, policy.QName{}, p)
}

func TestLoadYAMLOverlaysOntoDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("window_size: 600\npolicy: qname\n"), 0o644))

	cfg := Default()
	require.NoError(t, LoadYAML(cfg, path))

	require.Equal(t, int64(600), cfg.WindowSize)
	require.Equal(t, PolicyQName, cfg.Policy)
	// Fields the YAML file doesn't mention keep their default.
	require.Equal(t, 16, cfg.SketchCount)
}
