//go:build !windows

package svcwatch

import "errors"

// ErrUnsupported is returned by New on platforms with no service manager.
var ErrUnsupported = errors.New("svcwatch: service manager watching is only supported on windows")

// New returns an error on non-Windows platforms; there is no service
// manager to watch.
func New() (*Watcher, error) {
	return nil, ErrUnsupported
}
