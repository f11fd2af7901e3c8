// Package svcwatch is the Windows Service Control Manager watcher (C7): it
// enumerates installed services and redistributes create/delete and
// state-change notifications to subscribers through a single
// dispatcher.Dispatcher pump (C6), so subscribers never need their own
// locks. Grounded on original_source's ServicesMonitor (supplemented, since
// the retrieval pack's copy of SCMonitor/ServicesMonitor.h is a filtered
// skeleton) and on the teacher's backend/local _windows.go/_other.go build
// tag split for platform isolation.
package svcwatch

import "github.com/ralex1975/shadowbackup/internal/dispatcher"

// Trigger identifies why a Callback fired.
type Trigger int

const (
	// TriggerStatusChanged fires when a tracked service's status changes.
	TriggerStatusChanged Trigger = iota
	// TriggerServiceCreated fires when a new service is registered with
	// the manager.
	TriggerServiceCreated
	// TriggerServiceDeleted fires when a tracked service is removed from
	// the manager.
	TriggerServiceDeleted
)

func (t Trigger) String() string {
	switch t {
	case TriggerStatusChanged:
		return "StatusChanged"
	case TriggerServiceCreated:
		return "ServiceCreated"
	case TriggerServiceDeleted:
		return "ServiceDeleted"
	default:
		return "Unknown"
	}
}

// Status is the platform-independent subset of a service's state this
// package tracks; on Windows it is filled from svc.Status.
type Status struct {
	State  uint32
	Exists bool
}

// Event is delivered to every Callback, matching the original's per-service
// callback signature (trigger_flags, name, old_status, new_status).
type Event struct {
	Trigger Trigger
	Name    string
	Old     Status
	New     Status
}

// Callback receives Events serialized through the dispatcher's single pump.
type Callback func(Event)

// Watcher watches the host's service manager. Use New to construct one for
// the current platform (real on Windows, an unsupported stub elsewhere).
type Watcher struct {
	dispatcher *dispatcher.Dispatcher
	subscribe  func(Callback) error
	close      func() error
}

// Subscribe registers cb to receive every future Event, run on the
// dispatcher's pump goroutine. It returns an error on platforms without
// service-manager support.
func (w *Watcher) Subscribe(cb Callback) error {
	return w.subscribe(cb)
}

// Start starts the underlying dispatcher. Enumeration and the poll timer
// already begin in New; polls queued on the dispatcher run, and reach
// subscribers, only once it is started.
func (w *Watcher) Start() {
	w.dispatcher.StartMonitor()
}

// Stop stops the underlying dispatcher without releasing platform
// resources; Start may be called again.
func (w *Watcher) Stop() {
	w.dispatcher.StopMonitor()
}

// Close stops polling permanently and releases platform resources.
func (w *Watcher) Close() error {
	w.dispatcher.Close()
	if w.close != nil {
		return w.close()
	}
	return nil
}
