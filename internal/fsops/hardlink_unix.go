//go:build !windows

package fsops

import "os"

// hardlinkFromExisting creates dest as an additional hard link to src. On
// POSIX, os.Link fails with EEXIST if dest already exists, so a prior dest
// is removed first to get the replace-if-exists semantics the engine
// relies on when re-pointing staging names under race.
func hardlinkFromExisting(dest, src string) error {
	if info, err := os.Lstat(dest); err == nil && !info.IsDir() {
		if err := os.Remove(dest); err != nil {
			return err
		}
	}
	return os.Link(src, dest)
}

// hardlinkCreateNew creates dest as a hard link to src, failing with an
// fs.ErrExist-compatible *os.LinkError if dest already exists.
func hardlinkCreateNew(dest, src string) error {
	return os.Link(src, dest)
}
