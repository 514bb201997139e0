package fieldstore

import (
	"context"
	"errors"
	"path"
	"sync"
	"time"
)

// memStore is an in-memory cache.Store with failure injection, used to drive
// the distributed tier through its degraded paths without a live backend.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte

	down       bool
	failGet    error
	failSet    error
	failDelete error
	failExists error
	failKeys   error

	setCalls    int
	getCalls    int
	deleteCalls int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	values, err := m.GetMany(ctx, []string{key})
	if err != nil {
		return nil, false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (m *memStore) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if m.failGet != nil {
		return nil, m.failGet
	}
	out := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if v, ok := m.data[key]; ok {
			out[key] = v
		}
	}
	return out, nil
}

func (m *memStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.SetMany(ctx, map[string][]byte{key: value}, ttl)
}

func (m *memStore) SetMany(ctx context.Context, values map[string][]byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setCalls++
	if m.failSet != nil {
		return m.failSet
	}
	for key, value := range values {
		m.data[key] = value
	}
	return nil
}

func (m *memStore) Exists(ctx context.Context, keys ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failExists != nil {
		return 0, m.failExists
	}
	var count int64
	for _, key := range keys {
		if _, ok := m.data[key]; ok {
			count++
		}
	}
	return count, nil
}

func (m *memStore) Delete(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	if m.failDelete != nil {
		return m.failDelete
	}
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failKeys != nil {
		return nil, m.failKeys
	}
	var out []string
	for key := range m.data {
		if ok, _ := path.Match(pattern, key); ok {
			out = append(out, key)
		}
	}
	return out, nil
}

func (m *memStore) Ping(ctx context.Context) error {
	if m.down {
		return errors.New("memstore: down")
	}
	return nil
}

func (m *memStore) Ready() bool { return !m.down }

func (m *memStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}

func (m *memStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

func (m *memStore) raw(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return string(m.data[key])
}
