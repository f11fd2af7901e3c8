// Package shadow is the event-driven concurrent shadowing engine (C5): it
// watches a source directory tree for filesystem changes, creates hard-link
// "shadows" of files as they appear, and promotes a shadow into a backup
// tree when its original is deleted or renamed away. Grounded on the
// teacher's backend/local.ChangeNotify (changenotify_other.go /
// changenotify_windows.go) for the fsnotify-based watch loop shape, and on
// backend/local.Fs for the worker-pool-over-errgroup pattern.
package shadow

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ralex1975/shadowbackup/internal/applog"
	"github.com/ralex1975/shadowbackup/internal/fsops"
	"github.com/ralex1975/shadowbackup/internal/metrics"
	"github.com/ralex1975/shadowbackup/internal/shadowindex"
)

const (
	tempDirName   = "temp"
	backupDirName = "backup"
	maxSuffix     = 9999
)

// Config configures an Engine.
type Config struct {
	SourceDir string
	BackupDir string
	// Workers is the worker pool size. Zero selects 2*runtime.NumCPU(),
	// matching the original's worker-slot allocation.
	Workers int
	FS      fsops.Capabilities
	Log     *applog.Logger
	Metrics *metrics.Metrics
}

// Engine is the shadowing engine: one instance watches one source
// directory and maintains one shadow index.
type Engine struct {
	cfg Config

	tempDir         string
	outputDir       string
	exclusionPrefix string

	index   *shadowindex.ShadowIndex
	watcher *fsnotify.Watcher
}

// New validates cfg and constructs an Engine, but does not yet watch
// anything or touch the filesystem; call Run to do that.
func New(cfg Config) (*Engine, error) {
	if cfg.SourceDir == "" || cfg.BackupDir == "" {
		return nil, fmt.Errorf("shadow: source and backup directories are required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2 * runtime.NumCPU()
	}
	if cfg.FS == nil {
		cfg.FS = fsops.OS{}
	}
	return &Engine{
		cfg:       cfg,
		tempDir:   filepath.Join(cfg.BackupDir, tempDirName),
		outputDir: filepath.Join(cfg.BackupDir, backupDirName),
		index:     shadowindex.NewIndex(),
	}, nil
}

// Len reports the number of in-flight shadows, for tests and metrics.
func (e *Engine) Len() int { return e.index.Len() }

// Run performs initialization (4.4.1), returning a fatal error if any
// startup step fails, then blocks servicing filesystem events across the
// worker pool until ctx is cancelled, then performs shutdown (4.4.6) before
// returning. Errors while servicing events are logged, not returned.
func (e *Engine) Run(ctx context.Context) error {
	if !fsops.CanHardLink() {
		return wrap(KindCapabilityDenied, "", fmt.Errorf("host filesystem does not support hard links"))
	}
	if err := e.cfg.FS.CreateDirRecursive(e.tempDir); err != nil {
		return wrap(KindCapabilityDenied, e.tempDir, err)
	}
	if err := e.cfg.FS.CreateDirRecursive(e.outputDir); err != nil {
		return wrap(KindCapabilityDenied, e.outputDir, err)
	}

	prefix, err := fsops.ExclusionPrefix(e.cfg.SourceDir, e.cfg.BackupDir)
	if err != nil {
		return wrap(KindCapabilityDenied, e.cfg.BackupDir, err)
	}
	e.exclusionPrefix = prefix

	watcher, err := watchRecursive(e.cfg.SourceDir)
	if err != nil {
		return wrap(KindCapabilityDenied, e.cfg.SourceDir, err)
	}
	e.watcher = watcher

	group, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < e.cfg.Workers; i++ {
		group.Go(func() error {
			return e.workerLoop(groupCtx)
		})
	}

	group.Go(func() error {
		<-groupCtx.Done()
		return nil
	})

	runErr := group.Wait()
	e.shutdown()
	if runErr != nil && IsFatal(runErr) {
		return runErr
	}
	return nil
}

// workerLoop is one of 2*NumCPU() goroutines pulling from the shared event
// channel fsnotify hands back — the Go realization of a worker slot pulling
// one completed overlapped read at a time (4.4.2).
func (e *Engine) workerLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-e.watcher.Events:
			if !ok {
				return nil
			}
			e.handleEvent(event)
		case watchErr, ok := <-e.watcher.Errors:
			if !ok {
				return nil
			}
			if e.cfg.Log != nil {
				e.cfg.Log.Errorf("watch error: %v", watchErr)
			}
		}
	}
}

// shutdown implements 4.4.6, called once every worker has already exited
// (via ctx cancellation): close the watcher, then destroy every remaining
// index entry.
func (e *Engine) shutdown() {
	if e.watcher != nil {
		_ = e.watcher.Close()
	}
	before := e.index.Len()
	e.index.DestroyAll()
	if before > 0 && e.cfg.Metrics != nil {
		e.cfg.Metrics.ShadowsDiscarded.Add(float64(before))
		e.cfg.Metrics.IndexSize.Set(0)
	}
}

// relPath converts an absolute fsnotify path into a source-relative,
// slash-separated path, the unit CreateShadow/PromoteShadow operate on.
func (e *Engine) relPath(absPath string) (string, error) {
	rel, err := filepath.Rel(e.cfg.SourceDir, absPath)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

func (e *Engine) isExcluded(relPath string) bool {
	return fsops.IsExcluded(relPath, e.exclusionPrefix)
}

func newStagingName(tempDir string) string {
	return filepath.Join(tempDir, "db_"+strings.ReplaceAll(uuid.NewString(), "-", ""))
}
