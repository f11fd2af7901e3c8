// Package fsops is the small filesystem capability surface the shadowing
// engine depends on (C4): recursive directory creation, hard-link creation
// against an existing file, and source/backup path-prefix exclusion. It is
// abstracted behind an interface so internal/shadow can be exercised
// against a fake in tests, the way the teacher's backend/local isolates
// OS-specific behavior behind small per-platform files.
package fsops

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Capabilities is the filesystem surface the shadowing engine depends on.
type Capabilities interface {
	DirExists(path string) bool
	FileExists(path string) bool
	CreateDirRecursive(path string) error
	// HardlinkFromExisting creates dest as a hard link to src, replacing
	// dest first if it already exists as a regular file. Used to create
	// and re-point staging names under race.
	HardlinkFromExisting(dest, src string) error
	// HardlinkCreateNew creates dest as a hard link to src, failing with
	// an fs.ErrExist-compatible error if dest already exists. Used by
	// promotion's collision-suffix retry loop, which must distinguish
	// "already exists" from every other failure.
	HardlinkCreateNew(dest, src string) error
}

// CanHardLink reports whether the host platform supports hard links at
// all, standing in for the original's one-shot capability acquisition at
// startup (step 4.4.1.1). Plan 9 has no hard-link syscall; every other
// supported GOOS does.
func CanHardLink() bool {
	return runtime.GOOS != "plan9"
}

// OS is the real Capabilities implementation, backed by the standard
// library and the platform-specific hardlink helper in hardlink_unix.go /
// hardlink_windows.go.
type OS struct{}

var _ Capabilities = OS{}

// DirExists reports whether path exists and is a directory.
func (OS) DirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FileExists reports whether path exists and is a regular file.
func (OS) FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// CreateDirRecursive creates path and any missing ancestors. An already
// existing directory is treated as success.
func (OS) CreateDirRecursive(path string) error {
	return os.MkdirAll(path, 0o755)
}

// HardlinkFromExisting creates dest as an additional hard link to src,
// replacing dest first if it already exists as a regular file — the
// engine relies on this to re-point staging names under race, matching
// the "replace-if-exists" semantics described for the original capability.
func (OS) HardlinkFromExisting(dest, src string) error {
	return hardlinkFromExisting(dest, src)
}

// HardlinkCreateNew creates dest as a hard link to src, failing if dest
// already exists.
func (OS) HardlinkCreateNew(dest, src string) error {
	return hardlinkCreateNew(dest, src)
}

// ExclusionPrefix computes the source-relative path prefix that, when
// matched, suppresses shadow creation for events originating inside the
// backup tree when it is nested under the source tree. It returns "" (no
// exclusion) when backupDir is not nested under sourceDir.
func ExclusionPrefix(sourceDir, backupDir string) (string, error) {
	sourceAbs, err := filepath.Abs(sourceDir)
	if err != nil {
		return "", err
	}
	backupAbs, err := filepath.Abs(backupDir)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(sourceAbs, backupAbs)
	if err != nil {
		return "", nil //nolint:nilerr // different volume/root: no exclusion possible
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}

// IsExcluded reports whether relPath falls under prefix, using
// case-insensitive comparison. relPath matches only if it equals prefix or
// continues it with a "/" path-segment boundary, so "backupish" is not
// under "backup".
func IsExcluded(relPath, prefix string) bool {
	if prefix == "" {
		return false
	}
	relPath = filepath.ToSlash(relPath)
	lowerPath := strings.ToLower(relPath)
	lowerPrefix := strings.ToLower(prefix)
	if lowerPath == lowerPrefix {
		return true
	}
	return strings.HasPrefix(lowerPath, lowerPrefix+"/")
}
