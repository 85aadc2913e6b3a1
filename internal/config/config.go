// Package config is the CLI-flag-backed settings object for
// cmd/qlad-analyzer: the full flag table of spec.md §6.2, plus the
// cross-field validation original_source's Settings.cpp performs beyond
// per-flag min/max bounds (§13, "Settings.isValid()"). cmd/ binds cobra/
// pflag flags directly onto this struct's fields; internal/config itself
// stays free of any CLI framework import so it can be unit tested as
// plain data.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/DNSBelgium/qlad/internal/policy"
	"github.com/DNSBelgium/qlad/internal/stats"
)

// PolicyName is the CLI-facing spelling of --policy's three allowed
// values.
type PolicyName string

const (
	PolicySrcIP PolicyName = "srcIP"
	PolicyDstIP PolicyName = "dstIP"
	PolicyQName PolicyName = "qname"
)

// GammaParameterName is the CLI-facing spelling of
// --analysed-gamma-parameter's three allowed values.
type GammaParameterName string

const (
	GammaShape GammaParameterName = "shape"
	GammaScale GammaParameterName = "scale"
	GammaBoth  GammaParameterName = "both"
)

// Config holds every flag from spec.md §6.2, already defaulted; Validate
// checks both the single-field min/max bounds the table lists and the
// cross-field constraints original_source's Settings::isValid adds.
type Config struct {
	WindowSize             int64              `yaml:"window_size"`
	DetectionInterval      int64              `yaml:"detection_interval"`
	DetectionThreshold     float64            `yaml:"detection_threshold"`
	SketchCount            int                `yaml:"sketch_count"`
	HashCount              int                `yaml:"hash_count"`
	AggregationCount       int                `yaml:"aggregation_count"`
	ThreadCount            int                `yaml:"thread_count"`
	GammaParameter         GammaParameterName `yaml:"analysed_gamma_parameter"`
	Policy                 PolicyName         `yaml:"policy"`
	InputFile              string             `yaml:"input_file"`
	FilterQueries          bool               `yaml:"filter_queries"`
	FilterReplies          bool               `yaml:"filter_replies"`
	GraphAnomaliesDir      string             `yaml:"graph_anomalies"`
	LogConsensusGraph      bool               `yaml:"log_consensus_graph"`
	MetricsAddr            string             `yaml:"metrics_addr"`
	LogLevel               string             `yaml:"log_level"`
}

// Default returns the table's defaults from spec.md §6.2. --thread-count
// defaults to the number of logical CPUs, matching the table's "#CPUs".
func Default() *Config {
	return &Config{
		WindowSize:         300,
		DetectionInterval:  150,
		DetectionThreshold: 0.8,
		SketchCount:        16,
		HashCount:          12,
		AggregationCount:   8,
		ThreadCount:        runtime.NumCPU(),
		GammaParameter:     GammaScale,
		Policy:             PolicySrcIP,
		InputFile:          "-",
		LogLevel:           "info",
	}
}

// LoadYAML overlays yamlPath's contents onto cfg; any field the file
// doesn't set keeps cfg's current (default, or already flag-applied)
// value, matching §10's "optional --config YAML file... overridden by
// any flag explicitly given" — cmd/qlad-analyzer loads the file into a
// fresh Default() after flag parsing and copies over only the fields
// whose flags were not explicitly set, so explicit flags win.
func LoadYAML(cfg *Config, yamlPath string) error {
	data, err := os.ReadFile(yamlPath)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", yamlPath, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("config: parsing %s: %w", yamlPath, err)
	}
	return nil
}

// Validate checks every §6.2 bound plus the cross-field rules
// original_source's Settings::isValid adds (§13). It returns the first
// violation found, matching §7 kind 1's "print one-line diagnostic".
func (c *Config) Validate() error {
	if c.WindowSize < 5 {
		return fmt.Errorf("config: --window-size must be >= 5 seconds, got %d", c.WindowSize)
	}
	if c.DetectionInterval < 1 {
		return fmt.Errorf("config: --detection-interval must be >= 1 second, got %d", c.DetectionInterval)
	}
	if c.DetectionInterval > c.WindowSize {
		return fmt.Errorf("config: --detection-interval (%d) must not exceed --window-size (%d)", c.DetectionInterval, c.WindowSize)
	}
	if c.DetectionThreshold < 0 {
		return fmt.Errorf("config: --detection-threshold must be >= 0, got %g", c.DetectionThreshold)
	}
	if c.SketchCount < 1 {
		return fmt.Errorf("config: --sketch-count must be >= 1, got %d", c.SketchCount)
	}
	if c.HashCount < 1 {
		return fmt.Errorf("config: --hash-count must be >= 1, got %d", c.HashCount)
	}
	if c.AggregationCount < 1 || c.AggregationCount > 31 {
		return fmt.Errorf("config: --aggregation-count must be in [1, 31], got %d", c.AggregationCount)
	}
	// agg(A-1) = 2^(A-1) seconds must fit inside the window, else the
	// coarsest aggregation level never accumulates a bucket at all.
	if maxAgg := int64(1) << uint(c.AggregationCount-1); maxAgg > c.WindowSize {
		return fmt.Errorf("config: --aggregation-count %d implies a %ds aggregation level wider than --window-size %ds", c.AggregationCount, maxAgg, c.WindowSize)
	}
	if c.ThreadCount < 1 {
		return fmt.Errorf("config: --thread-count must be >= 1, got %d", c.ThreadCount)
	}
	if _, err := c.GammaParameterValue(); err != nil {
		return err
	}
	if _, err := c.PolicyValue(); err != nil {
		return err
	}
	if c.InputFile == "" {
		return fmt.Errorf("config: --input-file must not be empty (use \"-\" for stdin)")
	}
	return nil
}

// GammaParameterValue resolves --analysed-gamma-parameter to the
// internal/stats.Parameter it selects.
func (c *Config) GammaParameterValue() (stats.Parameter, error) {
	switch c.GammaParameter {
	case GammaShape:
		return stats.ShapeOnly, nil
	case GammaScale, "":
		return stats.ScaleOnly, nil
	case GammaBoth:
		return stats.Both, nil
	default:
		return 0, fmt.Errorf("config: --analysed-gamma-parameter must be shape|scale|both, got %q", c.GammaParameter)
	}
}

// PolicyValue resolves --policy to the internal/policy.Policy
// implementation it selects.
func (c *Config) PolicyValue() (policy.Policy, error) {
	switch c.Policy {
	case PolicySrcIP, "":
		return policy.SrcIP{}, nil
	case PolicyDstIP:
		return policy.DstIP{}, nil
	case PolicyQName:
		return policy.QName{}, nil
	default:
		return nil, fmt.Errorf("config: --policy must be srcIP|dstIP|qname, got %q", c.Policy)
	}
}
