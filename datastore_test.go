package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T, backend string) Datastore {
	t.Helper()
	store, err := newDatastore(backend)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "state.sqlite")
	if backend == backendBolt {
		path = boltPathFor(path)
	}
	require.NoError(t, store.Initialize(path))
	t.Cleanup(func() { store.Close() })
	return store
}

func TestDatastoreBackends(t *testing.T) {
	for _, backend := range []string{backendSQLite, backendBolt, backendMemory} {
		t.Run(backend, func(t *testing.T) {
			store := openTestStore(t, backend)

			_, ok, err := store.Get(keySearchText)
			require.NoError(t, err)
			assert.False(t, ok, "fresh store should be empty")

			require.NoError(t, store.Set(keySearchText, "algo"))
			require.NoError(t, store.Set(keyFavoriteIDs, "[1,3]"))
			require.NoError(t, store.Set(keySearchText, ""))

			v, ok, err := store.Get(keySearchText)
			require.NoError(t, err)
			assert.True(t, ok, "empty string is still a stored value")
			assert.Equal(t, "", v)

			keys, err := store.Keys()
			require.NoError(t, err)
			assert.Equal(t, []string{keyFavoriteIDs, keySearchText}, keys)

			require.NoError(t, store.Clear())
			keys, err = store.Keys()
			require.NoError(t, err)
			assert.Empty(t, keys)

			require.NoError(t, store.Set(keySelectedCategory, "CS"))
			v, ok, err = store.Get(keySelectedCategory)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "CS", v)
		})
	}
}

func TestDatastoreSurvivesReopen(t *testing.T) {
	for _, backend := range []string{backendSQLite, backendBolt} {
		t.Run(backend, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "state.db")

			first, err := newDatastore(backend)
			require.NoError(t, err)
			require.NoError(t, first.Initialize(path))
			require.NoError(t, first.Set(keyFavoriteIDs, "[2]"))
			require.NoError(t, first.Close())

			second, err := newDatastore(backend)
			require.NoError(t, err)
			require.NoError(t, second.Initialize(path))
			defer second.Close()

			v, ok, err := second.Get(keyFavoriteIDs)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "[2]", v)
		})
	}
}

func TestNewDatastoreUnknownBackend(t *testing.T) {
	_, err := newDatastore("redis")
	assert.True(t, errors.Is(err, ErrUnknownBackend))

	store, err := newDatastore("")
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, store)

	store, err = newDatastore("BOLT")
	require.NoError(t, err)
	assert.IsType(t, &BoltStore{}, store)
}

func TestBoltPathFor(t *testing.T) {
	assert.Equal(t, "/home/u/.minilib.bolt", boltPathFor("/home/u/.minilib.sqlite"))
	assert.Equal(t, "/tmp/state.db.bolt", boltPathFor("/tmp/state.db"))
}

func TestImportState(t *testing.T) {
	dir := t.TempDir()
	sqlitePath := filepath.Join(dir, "state.sqlite")

	src := &SQLiteStore{}
	require.NoError(t, src.Initialize(sqlitePath))
	require.NoError(t, src.Set(keySearchText, "data"))
	require.NoError(t, src.Set(keySelectedCategory, "CS"))
	require.NoError(t, src.Set(keyFavoriteIDs, "[3,4]"))
	require.NoError(t, src.Close())

	dst := &BoltStore{}
	require.NoError(t, dst.Initialize(boltPathFor(sqlitePath)))
	defer dst.Close()

	n, err := importState(sqlitePath, dst)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	v, ok, err := dst.Get(keyFavoriteIDs)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "[3,4]", v)
}

func TestImportStateMissingDirectory(t *testing.T) {
	dst := &MemoryStore{}
	require.NoError(t, dst.Initialize(""))

	_, err := importState(filepath.Join(t.TempDir(), "missing", "state.sqlite"), dst)
	assert.Error(t, err)
}
