package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/multierr"
)

// Datastore is the interface that any state backend must implement.
type Datastore interface {
	// Initialize prepares the datastore (e.g., create tables, open buckets).
	Initialize(path string) error

	// Close cleans up resources.
	Close() error

	// Get returns the value stored under key. ok is false when the key has
	// never been written.
	Get(key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Keys returns every stored key in sorted order.
	Keys() ([]string, error)

	// Clear removes all data from the store.
	Clear() error
}

const (
	backendSQLite = "sqlite"
	backendBolt   = "bolt"
	backendMemory = "memory"
)

var ErrUnknownBackend = errors.New("unknown backend")

// newDatastore returns an uninitialized store for the named backend.
func newDatastore(backend string) (Datastore, error) {
	switch strings.ToLower(backend) {
	case backendSQLite, "":
		return &SQLiteStore{}, nil
	case backendBolt:
		return &BoltStore{}, nil
	case backendMemory:
		return &MemoryStore{}, nil
	}
	return nil, fmt.Errorf("%w: %q (want sqlite, bolt or memory)", ErrUnknownBackend, backend)
}

// boltPathFor derives the bolt database path that sits next to a SQLite one.
func boltPathFor(sqlitePath string) string {
	return strings.TrimSuffix(sqlitePath, ".sqlite") + ".bolt"
}

// importState copies every key of the SQLite database at sqlitePath into dst,
// which must already be initialized. It returns the number of keys copied.
func importState(sqlitePath string, dst Datastore) (n int, err error) {
	src := &SQLiteStore{}
	if err := src.Initialize(sqlitePath); err != nil {
		return 0, fmt.Errorf("open %s: %w", sqlitePath, err)
	}
	defer func() { err = multierr.Append(err, src.Close()) }()

	keys, err := src.Keys()
	if err != nil {
		return 0, err
	}
	for _, k := range keys {
		v, ok, err := src.Get(k)
		if err != nil {
			return n, err
		}
		if !ok {
			continue
		}
		if err := dst.Set(k, v); err != nil {
			return n, fmt.Errorf("import %s: %w", k, err)
		}
		n++
	}
	return n, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
