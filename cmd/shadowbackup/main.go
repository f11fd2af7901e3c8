// Command shadowbackup watches a source directory tree and opportunistically
// preserves file content that is about to be deleted or renamed away, so it
// can be recovered later from a backup tree.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ralex1975/shadowbackup/internal/applog"
	"github.com/ralex1975/shadowbackup/internal/console"
	"github.com/ralex1975/shadowbackup/internal/metrics"
	"github.com/ralex1975/shadowbackup/internal/shadow"
)

var (
	workers     int
	ringSize    int
	logLevel    string
	jsonLog     bool
	metricsAddr string
)

func main() {
	root := &cobra.Command{
		Use:   "shadowbackup <source-dir> <backup-dir>",
		Short: "Shadow files about to be deleted so they can be recovered later",
		Args:  cobra.ExactArgs(2),
		RunE:  run,
	}
	root.Flags().IntVar(&workers, "workers", 0, "worker pool size (default 2*NumCPU)")
	root.Flags().IntVar(&ringSize, "ring-size", 0, "log ring queue capacity in bytes (default 64KiB rounded to a page)")
	root.Flags().StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
	root.Flags().BoolVar(&jsonLog, "json-log", false, "emit structured JSON log records")
	root.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve Prometheus metrics on (disabled if empty)")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid --log-level: %w", err)
	}

	met, reg := metrics.New()
	con := console.New(os.Stdout, ringSize, console.WithDropCounter(met.RingDrops.Inc))
	defer con.Close()
	log := applog.New(level, jsonLog, con)

	if metricsAddr != "" {
		go func() {
			if err := metrics.Serve(metricsAddr, reg); err != nil {
				log.Errorf("metrics server stopped: %v", err)
			}
		}()
	}

	engine, err := shadow.New(shadow.Config{
		SourceDir: args[0],
		BackupDir: args[1],
		Workers:   workers,
		Log:       log,
		Metrics:   met,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Any byte on stdin triggers a clean stop, per the external interface
	// contract; SIGINT/SIGTERM do too via the context above.
	go func() {
		buf := make([]byte, 1)
		_, _ = os.Stdin.Read(buf)
		cancel()
	}()

	runErr := make(chan error, 1)
	go func() { runErr <- engine.Run(ctx) }()

	select {
	case err := <-runErr:
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	case <-ctx.Done():
		if err := <-runErr; err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	}
	return nil
}
