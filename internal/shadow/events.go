package shadow

import (
	"github.com/fsnotify/fsnotify"
)

// handleEvent dispatches one fsnotify.Event by action, the Go realization of
// 4.4.2's per-record action switch. A Create maps to CreateShadow (ADDED /
// RENAMED_NEW_NAME); a Remove or Rename maps to PromoteShadow (REMOVED /
// RENAMED_OLD_NAME, since fsnotify's Rename event fires against the old
// name, with a separate Create following for the new name when the
// destination is also watched). Write and Chmod are logged only.
func (e *Engine) handleEvent(event fsnotify.Event) {
	rel, err := e.relPath(event.Name)
	if err != nil {
		if e.cfg.Log != nil {
			e.cfg.Log.Errorf("path conversion failed for %s: %v", event.Name, err)
		}
		return
	}

	switch {
	case event.Has(fsnotify.Create):
		maybeWatchNewDir(e.watcher, event.Name)
		if e.cfg.Log != nil {
			e.cfg.Log.WithPath(rel).Info("added")
		}
		if err := e.CreateShadow(rel); err != nil && e.cfg.Log != nil {
			e.cfg.Log.Errorf("create shadow for %s: %v", rel, err)
		}
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if e.cfg.Log != nil {
			e.cfg.Log.WithPath(rel).Warn("removed")
		}
		if err := e.PromoteShadow(rel); err != nil && e.cfg.Log != nil {
			e.cfg.Log.Errorf("promote shadow for %s: %v", rel, err)
		}
	case event.Has(fsnotify.Write):
		if e.cfg.Log != nil {
			e.cfg.Log.WithPath(rel).Debug("modified")
		}
	case event.Has(fsnotify.Chmod):
		if e.cfg.Log != nil {
			e.cfg.Log.WithPath(rel).Debug("attributes changed")
		}
	}
}
