//go:build windows

package shadow

import (
	"path/filepath"
	_ "unsafe" // use go:linkname

	"github.com/fsnotify/fsnotify"
)

// Hack to enable recursive watchers in fsnotify, available on Windows and
// Linux but not yet exposed through a public API. Lifted verbatim from the
// teacher's changenotify_windows.go.
//
//go:linkname enableRecurse github.com/fsnotify/fsnotify.enableRecurse
var enableRecurse bool

// watchRecursive opens a single recursive watch on root, matching the
// original's one completion port bound to the source directory handle with
// recursion enabled.
func watchRecursive(root string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	enableRecurse = true
	if err := watcher.Add(filepath.Join(root, "...")); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	return watcher, nil
}

// maybeWatchNewDir is a no-op on Windows: the recursive watch above already
// covers newly created subdirectories.
func maybeWatchNewDir(*fsnotify.Watcher, string) {}
