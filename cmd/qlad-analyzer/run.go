package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/DNSBelgium/qlad/internal/capture"
	"github.com/DNSBelgium/qlad/internal/config"
	"github.com/DNSBelgium/qlad/internal/controller"
	"github.com/DNSBelgium/qlad/internal/detector"
	"github.com/DNSBelgium/qlad/internal/flowdata"
	"github.com/DNSBelgium/qlad/internal/hashfamily"
	"github.com/DNSBelgium/qlad/internal/ident"
	"github.com/DNSBelgium/qlad/internal/logging"
	"github.com/DNSBelgium/qlad/internal/metrics"
	"github.com/DNSBelgium/qlad/internal/report"
	"github.com/DNSBelgium/qlad/internal/workerpool"
)

// run is rootCmd's RunE: apply an optional --config YAML overlay,
// validate the resulting settings, and drive the capture → controller →
// report pipeline to completion.
func run(cmd *cobra.Command, args []string) error {
	if configFile != "" {
		if err := applyYAMLOverlay(cmd, configFile); err != nil {
			return err
		}
	}
	var err error
	if policyFlag != "" {
		cfg.Policy = config.PolicyName(policyFlag)
	}
	if gammaParameterFlag != "" {
		cfg.GammaParameter = config.GammaParameterName(gammaParameterFlag)
	}

	logger := logging.New(logging.Level(cfg.LogLevel), os.Stderr)

	if err = cfg.Validate(); err != nil {
		logging.Fatal(logger, "invalid configuration", err)
		return err
	}

	policyImpl, _ := cfg.PolicyValue()
	gammaParam, _ := cfg.GammaParameterValue()

	m := metrics.New()
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if cfg.MetricsAddr != "" {
		server := m.StartServer(ctx, cfg.MetricsAddr)
		defer server.Close()
		logger.Info().Str("addr", cfg.MetricsAddr).Msg("metrics endpoint listening")
	}

	src := capture.NewFileSource().WithMetrics(m)
	filter := captureFilter(cfg)
	if err := src.Open(cfg.InputFile, filter); err != nil {
		logging.Fatal(logger, "capture open failed", err)
		return err
	}
	defer src.Close()

	store := flowdata.NewFlowStore(cfg.WindowSize)
	pool := workerpool.New(cfg.ThreadCount)
	pool.Run()
	defer pool.Stop()

	hashes := hashfamily.New(cfg.HashCount, ident.MaxDomainLabelLen, uint64(time.Now().UnixNano()))
	writer := report.NewWriter(os.Stdout)

	newDetector := func() *detector.Detector {
		return detector.New(detector.Config{
			HashCount:         cfg.HashCount,
			SketchCount:       cfg.SketchCount,
			AggregationCount:  cfg.AggregationCount,
			Threshold:         cfg.DetectionThreshold,
			Parameter:         gammaParam,
			LogConsensusGraph: cfg.LogConsensusGraph,
			Metrics:           m,
		}, pool, hashes)
	}

	sink := func(result *detector.Result, runErr error) {
		if runErr != nil {
			logger.Error().Err(runErr).Msg("detector run failed")
			return
		}
		if err := writer.Write(result); err != nil {
			logger.Error().Err(err).Msg("writing report failed")
		}
		m.ConsensusSize.Set(float64(len(result.Anomalous)))
		if cfg.LogConsensusGraph && result.Graph != nil {
			logger.Debug().Interface("consensus_components", result.Graph.ConnectedComponents()).Msg("consensus graph")
		}
		if cfg.Policy == config.PolicySrcIP || cfg.Policy == config.PolicyDstIP {
			overlay := report.BuildSubnetOverlay(result.Anomalous)
			logger.Debug().Interface("subnet_overlay", overlay.Groups()).Msg("subnet overlay")
		}
		if len(result.Anomalous) > 0 && cfg.GraphAnomaliesDir != "" {
			logger.Debug().Str("file", report.AnomalyPlotFileName(cfg.GraphAnomaliesDir, result.StartTime)).Msg("anomaly plot stub")
		}
	}

	ctrl := controller.New(controller.Config{
		WindowSize:        cfg.WindowSize,
		DetectionInterval: cfg.DetectionInterval,
	}, store, src, policyImpl, newDetector, sink)

	if err := ctrl.Run(ctx); err != nil && err != context.Canceled {
		logger.Error().Err(err).Msg("controller run failed")
		return err
	}
	return nil
}

// captureFilter encodes --filter-queries/--filter-replies into the
// single filter-description string capture.Source.Open accepts, per
// §6.1's PacketSource contract.
func captureFilter(cfg *config.Config) string {
	switch {
	case cfg.FilterQueries && cfg.FilterReplies:
		return "queries+replies"
	case cfg.FilterQueries:
		return "queries"
	case cfg.FilterReplies:
		return "replies"
	default:
		return ""
	}
}

// applyYAMLOverlay loads path's YAML into a fresh default Config, then
// copies each field into the live cfg only where the corresponding flag
// was not explicitly given on the command line — matching §10's "CLI
// flags remain authoritative... overridden by any flag explicitly given".
func applyYAMLOverlay(cmd *cobra.Command, path string) error {
	overlay := config.Default()
	if err := config.LoadYAML(overlay, path); err != nil {
		return fmt.Errorf("qlad-analyzer: %w", err)
	}
	flags := cmd.Flags()

	if !flags.Changed("window-size") {
		cfg.WindowSize = overlay.WindowSize
	}
	if !flags.Changed("detection-interval") {
		cfg.DetectionInterval = overlay.DetectionInterval
	}
	if !flags.Changed("detection-threshold") {
		cfg.DetectionThreshold = overlay.DetectionThreshold
	}
	if !flags.Changed("sketch-count") {
		cfg.SketchCount = overlay.SketchCount
	}
	if !flags.Changed("hash-count") {
		cfg.HashCount = overlay.HashCount
	}
	if !flags.Changed("aggregation-count") {
		cfg.AggregationCount = overlay.AggregationCount
	}
	if !flags.Changed("thread-count") {
		cfg.ThreadCount = overlay.ThreadCount
	}
	if !flags.Changed("analysed-gamma-parameter") {
		gammaParameterFlag = string(overlay.GammaParameter)
	}
	if !flags.Changed("policy") {
		policyFlag = string(overlay.Policy)
	}
	if !flags.Changed("input-file") {
		cfg.InputFile = overlay.InputFile
	}
	if !flags.Changed("filter-queries") {
		cfg.FilterQueries = overlay.FilterQueries
	}
	if !flags.Changed("filter-replies") {
		cfg.FilterReplies = overlay.FilterReplies
	}
	if !flags.Changed("graph-anomalies") {
		cfg.GraphAnomaliesDir = overlay.GraphAnomaliesDir
	}
	if !flags.Changed("log-consensus-graph") {
		cfg.LogConsensusGraph = overlay.LogConsensusGraph
	}
	if !flags.Changed("metrics-addr") {
		cfg.MetricsAddr = overlay.MetricsAddr
	}
	if !flags.Changed("log-level") {
		cfg.LogLevel = overlay.LogLevel
	}
	return nil
}
