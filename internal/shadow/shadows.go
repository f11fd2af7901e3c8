package shadow

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ralex1975/shadowbackup/internal/shadowindex"
)

// CreateShadow implements 4.4.3: it creates a pinning hard link for a file
// that just appeared at rel (relative to the source directory) and records
// it in the index, so the content survives if the original is later
// deleted or renamed away.
func (e *Engine) CreateShadow(rel string) error {
	if e.isExcluded(rel) {
		return nil
	}

	absSource := filepath.Join(e.cfg.SourceDir, filepath.FromSlash(rel))
	if e.cfg.FS.DirExists(absSource) {
		// Directories are watched, not shadowed.
		return nil
	}

	stagingPath := newStagingName(e.tempDir)
	if err := e.cfg.FS.HardlinkFromExisting(stagingPath, absSource); err != nil {
		if e.cfg.Metrics != nil {
			e.cfg.Metrics.ShadowsDiscarded.Inc()
		}
		return wrap(KindSourceDisappeared, rel, err)
	}

	handle, err := os.OpenFile(stagingPath, os.O_RDONLY, 0)
	if err != nil {
		_ = os.Remove(stagingPath)
		if e.cfg.Metrics != nil {
			e.cfg.Metrics.ShadowsDiscarded.Inc()
		}
		return wrap(KindNameGeneration, rel, err)
	}

	entry := shadowindex.NewEntry(rel, stagingPath, handle)
	if e.index.Insert(entry) == nil {
		// Duplicate key: a shadow for this name is already in flight. The
		// prior shadow wins; tear down the one just created.
		entry.Close()
		if e.cfg.Metrics != nil {
			e.cfg.Metrics.ShadowsDiscarded.Inc()
		}
		return wrap(KindIndexCollision, rel, fmt.Errorf("shadow already in flight"))
	}

	if e.cfg.Metrics != nil {
		e.cfg.Metrics.ShadowsCreated.Inc()
		e.cfg.Metrics.IndexSize.Set(float64(e.index.Len()))
	}
	return nil
}

// PromoteShadow implements 4.4.4: it moves a previously created shadow into
// the backup tree when its original at rel has been deleted or renamed
// away. A no-op, not an error, if rel was never shadowed.
func (e *Engine) PromoteShadow(rel string) error {
	if e.isExcluded(rel) {
		return nil
	}

	key := shadowindex.KeyFor(rel)
	entry := e.index.Find(key)
	if entry == nil {
		return nil
	}

	restoredPath := filepath.Join(e.outputDir, filepath.FromSlash(rel))
	if err := e.cfg.FS.CreateDirRecursive(filepath.Dir(restoredPath)); err != nil {
		return wrap(KindTransient, rel, err)
	}

	dest, err := e.linkWithSuffixRetry(restoredPath, entry.TempPath)
	if err != nil {
		// Left in place: retried on the next matching event or freed at
		// shutdown, per 4.4.4 step 5.
		return wrap(KindLinkExists, rel, err)
	}

	e.index.Remove(key)
	if e.cfg.Log != nil {
		e.cfg.Log.WithPath(rel).Infof("backuped to %s", dest)
	}
	if e.cfg.Metrics != nil {
		e.cfg.Metrics.ShadowsPromoted.Inc()
		e.cfg.Metrics.IndexSize.Set(float64(e.index.Len()))
	}
	return nil
}

// linkWithSuffixRetry attempts to create dest as a new hard link to src,
// retrying with ".1".."maxSuffix" appended on an already-exists collision
// and stopping on success or any other error, per 4.4.4 step 4.
func (e *Engine) linkWithSuffixRetry(dest, src string) (string, error) {
	if err := e.cfg.FS.HardlinkCreateNew(dest, src); err == nil {
		return dest, nil
	} else if !errors.Is(err, os.ErrExist) {
		return "", err
	}

	for n := 1; n <= maxSuffix; n++ {
		candidate := fmt.Sprintf("%s.%d", dest, n)
		err := e.cfg.FS.HardlinkCreateNew(candidate, src)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("promote %s: exhausted %d collision suffixes", dest, maxSuffix)
}
