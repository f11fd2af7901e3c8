package shadow

import (
	"errors"
	"fmt"
)

// Kind classifies an error the shadowing engine can produce, matching the
// taxonomy in §7 of the specification.
type Kind int

const (
	// KindCapabilityDenied means the hard-link capability could not be
	// acquired, or another startup step (creating the staging/backup
	// directories, computing the exclusion prefix, opening the watch)
	// failed; fatal at startup.
	KindCapabilityDenied Kind = iota
	// KindPathConversion covers per-event path translation failures;
	// logged and the event is dropped silently.
	KindPathConversion
	// KindNameGeneration covers staging-name generation failures; logged
	// and the event is dropped silently.
	KindNameGeneration
	// KindLinkExists is expected during promotion and triggers the
	// suffix-retry loop; final failure after 9999 attempts is logged and
	// the shadow is left in the index.
	KindLinkExists
	// KindSourceDisappeared means hard-link creation failed because the
	// source no longer exists; logged and skipped.
	KindSourceDisappeared
	// KindIndexCollision means a duplicate key was rejected on insert;
	// the new shadow is torn down, the prior shadow wins.
	KindIndexCollision
	// KindTransient covers any other OS error during an individual
	// event; logged with the underlying error and the event is skipped.
	// The monitor keeps running.
	KindTransient
	// KindReadDirectoryFailed is fatal per worker; the worker exits and
	// the rest of the pool continues.
	KindReadDirectoryFailed
)

func (k Kind) String() string {
	switch k {
	case KindCapabilityDenied:
		return "CapabilityDenied"
	case KindPathConversion:
		return "PathConversion"
	case KindNameGeneration:
		return "NameGeneration"
	case KindLinkExists:
		return "LinkExists"
	case KindSourceDisappeared:
		return "SourceDisappeared"
	case KindIndexCollision:
		return "IndexCollision"
	case KindTransient:
		return "Transient"
	case KindReadDirectoryFailed:
		return "ReadDirectoryFailed"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error wraps an underlying error with the path it concerns and a Kind,
// the Go realization of the taxonomy in §7.
type Error struct {
	Kind Kind
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// IsTransient reports whether err is a Transient-kind error: the monitor
// keeps running and simply skips the offending event.
func IsTransient(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == KindTransient
}

// IsFatal reports whether err should stop the whole engine (as opposed to
// one worker or one event).
func IsFatal(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == KindCapabilityDenied
}
