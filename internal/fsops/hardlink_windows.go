//go:build windows

package fsops

import (
	"os"
	"syscall"
	"time"

	"golang.org/x/sys/windows"
)

const errSharingViolation syscall.Errno = 32

// hardlinkFromExisting creates dest as an additional hard link to src via
// CreateHardLinkW, retrying briefly on a sharing violation the way
// remove_windows.go retries os.Remove: a file that was just created or
// closed by another process can stay briefly locked by the OS even though
// the handle has been released by this process.
func hardlinkFromExisting(dest, src string) error {
	if info, err := os.Lstat(dest); err == nil && !info.IsDir() {
		if err := os.Remove(dest); err != nil {
			return err
		}
	}
	return createHardLinkRetrying(dest, src)
}

// hardlinkCreateNew creates dest as a hard link to src without removing a
// pre-existing dest, so ERROR_ALREADY_EXISTS propagates to the caller for
// the promotion collision-suffix retry loop.
func hardlinkCreateNew(dest, src string) error {
	return createHardLinkRetrying(dest, src)
}

// createHardLinkRetrying retries briefly on a sharing violation the way
// remove_windows.go retries os.Remove: a file that was just created or
// closed by another process can stay briefly locked by the OS even though
// the handle has been released by this process.
func createHardLinkRetrying(dest, src string) error {
	destp, err := windows.UTF16PtrFromString(dest)
	if err != nil {
		return err
	}
	srcp, err := windows.UTF16PtrFromString(src)
	if err != nil {
		return err
	}

	const maxTries = 10
	sleep := 1 * time.Millisecond
	for i := 0; i < maxTries; i++ {
		err = windows.CreateHardLink(destp, srcp, 0)
		if err == nil {
			return nil
		}
		if err != errSharingViolation {
			return err
		}
		time.Sleep(sleep)
		sleep <<= 1
	}
	return err
}
