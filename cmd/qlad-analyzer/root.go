package main

import (
	"github.com/spf13/cobra"

	"github.com/DNSBelgium/qlad/internal/config"
)

var (
	cfg = config.Default()

	// pflag has no StringVar variant for named string types, so the two
	// enum-valued flags (--policy, --analysed-gamma-parameter) bind to
	// plain strings here and are folded into cfg in run, before Validate.
	policyFlag         string
	gammaParameterFlag string

	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "qlad-analyzer",
	Short: "DNS traffic anomaly detector",
	Long: `qlad-analyzer runs a sliding-window, sketch-based anomaly detector
over a stream of DNS packets: a FlowStore buffers traffic, N independent
Engines each score a random-projection sketch against a fitted Gamma
distribution, and a Detector reports the identifiers every Engine agreed
were anomalous.`,
	RunE: run,
}

func init() {
	flags := rootCmd.Flags()

	flags.StringVar(&configFile, "config", "", "optional YAML file pre-populating defaults (overridden by any flag given explicitly)")

	flags.Int64VarP(&cfg.WindowSize, "window-size", "w", cfg.WindowSize, "analysis window W, in seconds (min 5)")
	flags.Int64VarP(&cfg.DetectionInterval, "detection-interval", "i", cfg.DetectionInterval, "detection tick period I, in seconds (min 1)")
	flags.Float64VarP(&cfg.DetectionThreshold, "detection-threshold", "t", cfg.DetectionThreshold, "Mahalanobis distance threshold tau")
	flags.IntVarP(&cfg.SketchCount, "sketch-count", "s", cfg.SketchCount, "sketch count K (min 1)")
	flags.IntVarP(&cfg.HashCount, "hash-count", "c", cfg.HashCount, "number of independent engines N (min 1)")
	flags.IntVarP(&cfg.AggregationCount, "aggregation-count", "a", cfg.AggregationCount, "aggregation level count A, in [1, 31]")
	flags.IntVarP(&cfg.ThreadCount, "thread-count", "T", cfg.ThreadCount, "worker pool size (min 1, default #CPUs)")
	flags.StringVarP(&gammaParameterFlag, "analysed-gamma-parameter", "p", string(cfg.GammaParameter), "shape|scale|both")
	flags.StringVarP(&policyFlag, "policy", "P", string(cfg.Policy), "srcIP|dstIP|qname")
	flags.StringVarP(&cfg.InputFile, "input-file", "f", cfg.InputFile, "capture source path, or - for stdin")
	flags.BoolVarP(&cfg.FilterQueries, "filter-queries", "q", cfg.FilterQueries, "apply the preset filter for queries")
	flags.BoolVarP(&cfg.FilterReplies, "filter-replies", "r", cfg.FilterReplies, "apply the preset filter for replies")
	flags.StringVarP(&cfg.GraphAnomaliesDir, "graph-anomalies", "g", cfg.GraphAnomaliesDir, "output plot directory (optional, disabled if empty)")
	flags.BoolVarP(&cfg.LogConsensusGraph, "log-consensus-graph", "v", cfg.LogConsensusGraph, "log the diagnostic per-tick consensus graph")
	flags.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "expose Prometheus metrics on this address (optional, disabled if empty)")
	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug|info|warn|error")
}
