package main

// MemoryStore keeps state in a map. Nothing survives Close.
type MemoryStore struct {
	values map[string]string
}

func (m *MemoryStore) Initialize(string) error {
	m.values = make(map[string]string)
	return nil
}

func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) Clear() error {
	m.values = make(map[string]string)
	return nil
}

func (m *MemoryStore) Get(key string) (string, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(key, value string) error {
	m.values[key] = value
	return nil
}

func (m *MemoryStore) Keys() ([]string, error) {
	return sortedKeys(m.values), nil
}
