// Copyright The mallinfo-override authors
// SPDX-License-Identifier: Apache-2.0

//go:build linux && cgo

// mallmon runs the diagnostic memory monitor standalone, for configurations
// where the override library is not loaded. It observes whatever mallinfo()
// implementation the dynamic linker resolved for this process.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/glassbox-media/mallinfo-override/internal/logging"
	"github.com/glassbox-media/mallinfo-override/internal/memstats"
	"github.com/glassbox-media/mallinfo-override/internal/monitor"
)

var (
	interval     time.Duration
	startupDelay time.Duration
	logLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "mallmon",
	Short: "Sample mallinfo() and report allocator overflow conditions",
	Long: `mallmon samples the process's legacy allocator statistics on a fixed
interval, re-checks the 32-bit invariants the embedded browser host relies on,
and logs a snapshot each cycle. It stops on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logging.New(logging.ParseLevel(logLevel))

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		m := monitor.New(log, memstats.ReadLegacy,
			monitor.WithInterval(interval),
			monitor.WithStartupDelay(startupDelay),
		)
		m.Run(ctx)
		return nil
	},
}

func init() {
	rootCmd.Flags().DurationVar(&interval, "interval", monitor.DefaultInterval, "spacing between samples")
	rootCmd.Flags().DurationVar(&startupDelay, "startup-delay", monitor.DefaultStartupDelay, "delay before the first sample")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "debug", "minimum log level (debug, info, warn, error)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
