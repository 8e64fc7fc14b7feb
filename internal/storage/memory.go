package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
)

// MemoryStore keeps objects in process memory. It backs local runs without a bucket and the tests.
type MemoryStore struct {
	mu      sync.Mutex
	baseURL string
	objects map[string][]byte

	// FailUploads and FailDeletes inject errors.
	FailUploads bool
	FailDeletes bool
	// FailAfter makes every upload after the first n fail; zero disables it.
	FailAfter int
	uploads   int
}

var errInjected = errors.New("injected storage failure")

func NewMemoryStore(baseURL string) *MemoryStore {
	if baseURL == "" {
		baseURL = "memory://projecthub"
	}
	return &MemoryStore{baseURL: baseURL, objects: map[string][]byte{}}
}

func (m *MemoryStore) Upload(_ context.Context, key string, body io.Reader, _ int64, _ string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads++
	if m.FailUploads || (m.FailAfter > 0 && m.uploads > m.FailAfter) {
		return "", errInjected
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return "", err
	}
	m.objects[key] = buf.Bytes()
	return m.baseURL + "/" + key, nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailDeletes {
		return errInjected
	}
	delete(m.objects, key)
	return nil
}

func (m *MemoryStore) KeyFromURL(url string) (string, bool) {
	return keyFromURL(m.baseURL, url)
}

func (m *MemoryStore) Has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

func (m *MemoryStore) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Put stores an object directly and returns its URL.
func (m *MemoryStore) Put(key string, data []byte) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return m.baseURL + "/" + key
}
