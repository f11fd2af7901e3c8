//go:build windows

package svcwatch

import (
	"sync"
	"time"

	"golang.org/x/sys/windows/svc/mgr"

	"github.com/ralex1975/shadowbackup/internal/dispatcher"
)

// pollInterval is the re-arm interval used in place of the original's
// single-shot SERVICE_NOTIFY callback, which golang.org/x/sys/windows/svc
// has no public equivalent for (see the Open Question recorded for C7).
const pollInterval = 2 * time.Second

// New enumerates the host's installed services and returns a Watcher that
// polls each tracked service on pollInterval, diffing status and invoking
// subscribers through the dispatcher's single pump.
func New() (*Watcher, error) {
	m, err := mgr.Connect()
	if err != nil {
		return nil, err
	}

	w := &tracker{
		mgr:      m,
		d:        dispatcher.New(),
		services: make(map[string]Status),
	}

	names, err := m.ListServices()
	if err != nil {
		_ = m.Disconnect()
		return nil, err
	}
	for _, name := range names {
		if st, ok := w.queryStatus(name); ok {
			w.services[name] = st
		}
	}

	ticker := time.NewTicker(pollInterval)
	go func() {
		for range ticker.C {
			w.d.PushCallback(w.pollOnce)
		}
	}()
	w.stopTicker = ticker.Stop

	return &Watcher{
		dispatcher: w.d,
		subscribe: func(cb Callback) error {
			w.mu.Lock()
			w.subscribers = append(w.subscribers, cb)
			w.mu.Unlock()
			return nil
		},
		close: func() error {
			w.stopTicker()
			return w.mgr.Disconnect()
		},
	}, nil
}

// tracker holds enumeration state and runs entirely on the dispatcher's pump
// goroutine (via PushCallback), so services/subscribers need no lock of
// their own against concurrent callback execution — only against
// Subscribe, which can be called from any goroutine.
type tracker struct {
	mgr *mgr.Mgr
	d   *dispatcher.Dispatcher

	services map[string]Status

	mu          sync.Mutex
	subscribers []Callback

	stopTicker func()
}

func (w *tracker) queryStatus(name string) (Status, bool) {
	s, err := w.mgr.OpenService(name)
	if err != nil {
		return Status{}, false
	}
	defer s.Close()

	st, err := s.Query()
	if err != nil {
		return Status{}, false
	}
	return Status{State: uint32(st.State), Exists: true}, true
}

// pollOnce re-enumerates the manager's service list and diffs each tracked
// status, emitting TriggerServiceCreated/Deleted/StatusChanged events —
// this runs only on the dispatcher pump goroutine.
func (w *tracker) pollOnce() {
	names, err := w.mgr.ListServices()
	if err != nil {
		return
	}

	seen := make(map[string]bool, len(names))
	for _, name := range names {
		seen[name] = true
		newStatus, ok := w.queryStatus(name)
		if !ok {
			continue
		}
		oldStatus, tracked := w.services[name]
		if !tracked {
			w.services[name] = newStatus
			w.emit(Event{Trigger: TriggerServiceCreated, Name: name, New: newStatus})
			continue
		}
		if oldStatus.State != newStatus.State {
			w.services[name] = newStatus
			w.emit(Event{Trigger: TriggerStatusChanged, Name: name, Old: oldStatus, New: newStatus})
		}
	}

	for name, oldStatus := range w.services {
		if !seen[name] {
			delete(w.services, name)
			w.emit(Event{Trigger: TriggerServiceDeleted, Name: name, Old: oldStatus})
		}
	}
}

func (w *tracker) emit(ev Event) {
	w.mu.Lock()
	subs := append([]Callback(nil), w.subscribers...)
	w.mu.Unlock()
	for _, cb := range subs {
		cb(ev)
	}
}
