//go:build !windows

package shadow

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// watchRecursive walks root and adds every directory to a new watcher.
// fsnotify has no built-in recursive mode outside the Windows linkname hack
// used in watch_windows.go (mirroring backend/local/changenotify_windows.go),
// so newly created subdirectories are added individually as they appear —
// see maybeWatchNewDir, called from handleEvent on every Create.
func watchRecursive(root string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		_ = watcher.Close()
		return nil, err
	}
	return watcher, nil
}

// maybeWatchNewDir adds path to watcher if it is a directory, so files
// created inside a directory moved or created in bulk are still seen.
func maybeWatchNewDir(watcher *fsnotify.Watcher, path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return
	}
	_ = filepath.WalkDir(path, func(sub string, d os.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // best-effort: a vanished path is simply not watched
		}
		if d.IsDir() {
			_ = watcher.Add(sub)
		}
		return nil
	})
}
