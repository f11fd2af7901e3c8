package shadowindex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStagedFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("content"), 0o644))
	return path
}

func TestShadowIndexInsertFindRemoveCloses(t *testing.T) {
	dir := t.TempDir()
	idx := NewIndex()

	stagingPath := newStagedFile(t, dir, "db_1")
	handle, err := os.Open(stagingPath)
	require.NoError(t, err)

	entry := NewEntry("Docs/Report.TXT", stagingPath, handle)
	assert.NotNil(t, idx.Insert(entry))
	assert.Equal(t, 1, idx.Len())

	found := idx.Find(KeyFor("docs/report.txt"))
	require.NotNil(t, found, "lookup must be case-insensitive (I2)")
	assert.Equal(t, "Docs/Report.TXT", found.DisplayPath)

	assert.True(t, idx.Remove(KeyFor("DOCS/REPORT.TXT")))
	assert.Equal(t, 0, idx.Len())

	_, statErr := os.Stat(stagingPath)
	assert.True(t, os.IsNotExist(statErr), "Remove must unlink the staging file")
}

func TestShadowIndexRejectsDuplicateKey(t *testing.T) {
	dir := t.TempDir()
	idx := NewIndex()

	first := newStagedFile(t, dir, "db_1")
	h1, err := os.Open(first)
	require.NoError(t, err)
	require.NotNil(t, idx.Insert(NewEntry("same.txt", first, h1)))

	second := newStagedFile(t, dir, "db_2")
	h2, err := os.Open(second)
	require.NoError(t, err)
	assert.Nil(t, idx.Insert(NewEntry("same.txt", second, h2)), "duplicate key must be rejected")

	// Caller is responsible for tearing down the rejected entry itself.
	require.NoError(t, h2.Close())
	require.NoError(t, os.Remove(second))

	assert.Equal(t, 1, idx.Len())
}

func TestShadowIndexDestroyAll(t *testing.T) {
	dir := t.TempDir()
	idx := NewIndex()

	for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
		path := newStagedFile(t, dir, "db_"+name)
		h, err := os.Open(path)
		require.NoError(t, err)
		require.NotNil(t, idx.Insert(NewEntry(name, path, h)))
	}
	assert.Equal(t, 3, idx.Len())

	idx.DestroyAll()
	assert.Equal(t, 0, idx.Len())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "DestroyAll must unlink every staging file")
}

func TestShadowIndexCheckBalance(t *testing.T) {
	idx := NewIndex()
	for i := 0; i < 64; i++ {
		idx.Insert(NewEntry(filepath.Join("dir", string(rune('a'+i%26)), "file"), "", nil))
	}
	assert.True(t, idx.CheckBalance())
}
