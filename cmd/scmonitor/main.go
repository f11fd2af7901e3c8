// Command scmonitor watches the host's Windows Service Control Manager for
// service creation, deletion and state-change notifications, logging each
// one it observes. It runs until stdin is closed or it receives SIGINT.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ralex1975/shadowbackup/internal/applog"
	"github.com/ralex1975/shadowbackup/internal/console"
	"github.com/ralex1975/shadowbackup/internal/svcwatch"
)

var (
	logLevel string
	jsonLog  bool
)

func main() {
	root := &cobra.Command{
		Use:   "scmonitor",
		Short: "Log Windows service create/delete/state-change notifications",
		Args:  cobra.NoArgs,
		RunE:  run,
	}
	root.Flags().StringVar(&logLevel, "log-level", "info", "log level: trace, debug, info, warn, error")
	root.Flags().BoolVar(&jsonLog, "json-log", false, "emit structured JSON log records")

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

	con := console.New(os.Stdout, 0)
	defer con.Close()
	log := applog.New(level, jsonLog, con)

	watcher, err := svcwatch.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer watcher.Close()

	if err := watcher.Subscribe(func(ev svcwatch.Event) {
		log.WithPath(ev.Name).Infof("%s: state=%d", ev.Trigger, ev.New.State)
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	watcher.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	stopped := make(chan struct{})
	go func() {
		buf := make([]byte, 1)
		_, _ = os.Stdin.Read(buf)
		close(stopped)
	}()

	select {
	case <-sigCh:
	case <-stopped:
	}
	return nil
}
