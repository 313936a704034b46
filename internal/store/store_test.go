package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStores(t *testing.T) map[string]ChecksumStore {
	t.Helper()
	dir := t.TempDir()

	fileStore, err := NewFileStore(filepath.Join(dir, "state", "checksums.json"))
	require.NoError(t, err)

	boltStore, err := NewBoltStore(filepath.Join(dir, "state", "checksums.db"))
	require.NoError(t, err)
	t.Cleanup(func() { boltStore.Close() })

	return map[string]ChecksumStore{
		"file": fileStore,
		"bolt": boltStore,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, found, err := s.Get("billing")
			require.NoError(t, err)
			assert.False(t, found)

			rec := Record{
				Hash:      "abc123",
				Kinds:     []string{"client-stub"},
				UpdatedAt: time.Now().UTC().Truncate(time.Second),
			}
			require.NoError(t, s.Set("billing", rec))

			got, found, err := s.Get("billing")
			require.NoError(t, err)
			require.True(t, found)
			assert.Equal(t, rec.Hash, got.Hash)
			assert.Equal(t, rec.Kinds, got.Kinds)
		})
	}
}

func TestStoreListIncludesAllRecords(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Set("billing", Record{Hash: "h1"}))
			require.NoError(t, s.Set("ledger", Record{Hash: "h2"}))

			all, err := s.List()
			require.NoError(t, err)
			assert.Len(t, all, 2)
			assert.Equal(t, "h1", all["billing"].Hash)
			assert.Equal(t, "h2", all["ledger"].Hash)
		})
	}
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checksums.json")

	first, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("billing", Record{Hash: "h1", Kinds: []string{"registration"}}))

	second, err := NewFileStore(path)
	require.NoError(t, err)
	rec, found, err := second.Get("billing")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "h1", rec.Hash)
}

func TestBoltStoreSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checksums.db")

	first, err := NewBoltStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("billing", Record{Hash: "h1"}))
	require.NoError(t, first.Close())

	second, err := NewBoltStore(path)
	require.NoError(t, err)
	defer second.Close()
	rec, found, err := second.Get("billing")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "h1", rec.Hash)
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checksums.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path)
	require.Error(t, err)
}

func TestFileStoreSaveIsAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checksums.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("billing", Record{Hash: "h1"}))

	// No temp file is left behind after a successful save.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestRecordCovers(t *testing.T) {
	rec := Record{Kinds: []string{"client-stub", "registration"}}
	assert.True(t, rec.Covers([]string{"client-stub"}))
	assert.True(t, rec.Covers([]string{"client-stub", "registration"}))
	assert.False(t, rec.Covers([]string{"client-stub", "typed-models"}))
	assert.True(t, rec.Covers(nil))
}
