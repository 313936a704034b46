package detector

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"specsync/internal/model"
	"specsync/internal/store"
)

func newStore(t *testing.T) store.ChecksumStore {
	t.Helper()
	s, err := store.NewFileStore(filepath.Join(t.TempDir(), "checksums.json"))
	require.NoError(t, err)
	return s
}

func spec(content string) model.FetchedSpec {
	return model.FetchedSpec{
		Service:   "billing",
		Path:      "/openapi.json",
		Content:   []byte(content),
		FetchedAt: time.Now(),
	}
}

func TestLooksLikeDescriptor(t *testing.T) {
	assert.True(t, LooksLikeDescriptor([]byte(`{"openapi":"3.1.0","paths":{}}`)))
	assert.True(t, LooksLikeDescriptor([]byte(`{"swagger":"2.0"}`)))
	assert.True(t, LooksLikeDescriptor([]byte(`{"asyncapi":"2.6.0"}`)))
	assert.False(t, LooksLikeDescriptor([]byte(`{"message":"not found"}`)))
	assert.False(t, LooksLikeDescriptor([]byte(`<html></html>`)))
	assert.False(t, LooksLikeDescriptor([]byte(`["openapi"]`)))
}

func TestNormalizeIgnoresKeyOrderAndWhitespace(t *testing.T) {
	a, err := Normalize([]byte(`{"openapi": "3.1.0", "paths": {"/b": {}, "/a": {}}}`))
	require.NoError(t, err)
	b, err := Normalize([]byte("{\n  \"paths\": {\"/a\": {}, \"/b\": {}},\n  \"openapi\": \"3.1.0\"\n}"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNormalizeStripsVolatileKeysAtAnyDepth(t *testing.T) {
	a, err := Normalize([]byte(`{"openapi":"3.1.0","info":{"x-generated-at":"2026-01-01T00:00:00Z","title":"billing"}}`))
	require.NoError(t, err)
	b, err := Normalize([]byte(`{"openapi":"3.1.0","info":{"x-generated-at":"2026-02-02T09:30:00Z","title":"billing"}}`))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNormalizeRejectsNonObject(t *testing.T) {
	_, err := Normalize([]byte(`[1,2,3]`))
	require.Error(t, err)
	_, err = Normalize([]byte(`not json`))
	require.Error(t, err)
}

func TestHashStableAcrossRuns(t *testing.T) {
	h1, err := Hash([]byte(`{"openapi":"3.1.0","paths":{}}`))
	require.NoError(t, err)
	h2, err := Hash([]byte(`{"paths": {}, "openapi": "3.1.0"}`))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)
}

func TestHasChangedNewService(t *testing.T) {
	d := New(newStore(t))

	outcome, err := d.HasChanged("billing", spec(`{"openapi":"3.1.0"}`), []string{"client-stub"})
	require.NoError(t, err)
	assert.True(t, outcome.Changed)
	assert.Equal(t, "new", outcome.Reason)
	assert.NotEmpty(t, outcome.Hash)
}

func TestHasChangedHashGate(t *testing.T) {
	s := newStore(t)
	d := New(s)

	first, err := d.HasChanged("billing", spec(`{"openapi":"3.1.0","paths":{}}`), []string{"client-stub"})
	require.NoError(t, err)
	require.NoError(t, s.Set("billing", store.Record{Hash: first.Hash, Kinds: []string{"client-stub"}}))

	same, err := d.HasChanged("billing", spec(`{"paths":{},"openapi":"3.1.0"}`), []string{"client-stub"})
	require.NoError(t, err)
	assert.False(t, same.Changed)
	assert.Equal(t, "unchanged", same.Reason)

	different, err := d.HasChanged("billing", spec(`{"openapi":"3.1.0","paths":{"/invoices":{}}}`), []string{"client-stub"})
	require.NoError(t, err)
	assert.True(t, different.Changed)
	assert.Equal(t, "hash", different.Reason)
	assert.NotEqual(t, same.Hash, different.Hash)
}

func TestHasChangedNewKindForcesGeneration(t *testing.T) {
	s := newStore(t)
	d := New(s)

	outcome, err := d.HasChanged("billing", spec(`{"openapi":"3.1.0"}`), []string{"client-stub"})
	require.NoError(t, err)
	require.NoError(t, s.Set("billing", store.Record{Hash: outcome.Hash, Kinds: []string{"client-stub"}}))

	withNewKind, err := d.HasChanged("billing", spec(`{"openapi":"3.1.0"}`), []string{"client-stub", "registration"})
	require.NoError(t, err)
	assert.True(t, withNewKind.Changed)
	assert.Equal(t, "kinds", withNewKind.Reason)
	assert.Equal(t, outcome.Hash, withNewKind.Hash)
}

func TestHasChangedInvalidDescriptor(t *testing.T) {
	d := New(newStore(t))
	_, err := d.HasChanged("billing", spec(`garbage`), nil)
	require.Error(t, err)
}
