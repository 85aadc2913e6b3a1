// Command qlad-analyzer is the DNS traffic anomaly detector's CLI entry
// point (spec.md §6.2), wiring internal/config's flag-backed Config into
// internal/capture, internal/controller, internal/detector and
// internal/report. Structured like the pack's jhkimqd-chaos-utils
// cmd/chaos-runner, but with no subcommand: a single cobra root command
// whose own (non-persistent) flags and RunE do the work, since this CLI
// has exactly one job.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
