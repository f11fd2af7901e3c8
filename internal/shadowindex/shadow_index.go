package shadowindex

import (
	"os"
	"strings"
	"sync"
)

// Entry is the central record tracked by the index: one in-flight shadow
// link for a file that was recently added to the watched tree.
//
// Invariants:
//   - TempHandle refers to a file with at least one link on disk at
//     TempPath from entry creation until removal.
//   - Key == strings.ToLower(DisplayPath).
//   - only one Entry may exist per Key at a time.
type Entry struct {
	Key         string
	DisplayPath string
	TempPath    string
	TempHandle  *os.File
}

// KeyFor returns the index key a given display path would be stored under,
// without constructing a full Entry. Callers doing a Find-only lookup (no
// handle to pin) use this instead of NewEntry.
func KeyFor(displayPath string) string {
	return strings.ToLower(displayPath)
}

// NewEntry builds an Entry for displayPath, lower-casing it for Key.
func NewEntry(displayPath, tempPath string, handle *os.File) Entry {
	return Entry{
		Key:         strings.ToLower(displayPath),
		DisplayPath: displayPath,
		TempPath:    tempPath,
		TempHandle:  handle,
	}
}

func compareEntries(a, b *Entry) int {
	return strings.Compare(a.Key, b.Key)
}

// Close releases the resources an Entry owns: it closes the pinning handle
// and unlinks the staging file. It is the free-callback the tree invokes
// on Remove, and the destructor run at shutdown for any entry left in the
// index.
func (e *Entry) Close() {
	if e.TempHandle != nil {
		_ = e.TempHandle.Close()
	}
	if e.TempPath != "" {
		_ = os.Remove(e.TempPath)
	}
}

// ShadowIndex is the synchronized wrapper around the AVL tree (C1): every
// Insert/Find/Remove is performed while holding mu, matching the original
// design where the index itself carries no internal locking and callers
// are expected to hold the enclosing lock. Here the lock lives next to the
// data it guards, which is the idiomatic Go shape for the same contract.
type ShadowIndex struct {
	mu   sync.Mutex
	tree *Tree[Entry]
}

// NewIndex creates an empty, ready-to-use ShadowIndex.
func NewIndex() *ShadowIndex {
	return &ShadowIndex{tree: New[Entry](compareEntries)}
}

// Insert adds entry under entry.Key. It returns a pointer to the stored
// entry, or nil if the key is already present — the caller is expected to
// tear down its own entry on failure (duplicate-key shadows are rejected,
// per the adopted resolution of the index-collision Open Question).
func (s *ShadowIndex) Insert(entry Entry) *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Insert(entry)
}

// Find looks up key and returns a pointer to the stored entry, or nil.
func (s *ShadowIndex) Find(key string) *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	probe := Entry{Key: key}
	return s.tree.Find(&probe)
}

// Remove deletes the entry for key, closing its handle and unlinking its
// staging file exactly once. It reports whether an entry was found.
func (s *ShadowIndex) Remove(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	probe := Entry{Key: key}
	return s.tree.Remove(&probe, func(e *Entry) { e.Close() })
}

// Len reports the number of in-flight shadows.
func (s *ShadowIndex) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.Len()
}

// Keys returns every key currently indexed, in sorted order.
func (s *ShadowIndex) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	s.tree.Walk(func(e *Entry) bool {
		keys = append(keys, e.Key)
		return true
	})
	return keys
}

// DestroyAll removes and closes every remaining entry. Called at shutdown;
// any content that was never promoted is lost, per the spec's lifecycle
// for entries that survive to teardown.
func (s *ShadowIndex) DestroyAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pending []string
	s.tree.Walk(func(e *Entry) bool {
		pending = append(pending, e.Key)
		return true
	})
	for _, key := range pending {
		probe := Entry{Key: key}
		s.tree.Remove(&probe, func(e *Entry) { e.Close() })
	}
}

// CheckBalance exposes the tree's AVL-invariant check (I7) for tests.
func (s *ShadowIndex) CheckBalance() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tree.CheckBalance()
}
