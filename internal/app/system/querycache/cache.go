// Package querycache caches reads from the contacts service and drops them
// after mutations.
//
// Writes never update cached values. A successful mutation invalidates the
// affected keys and the next read fetches again.
package querycache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// Cache stores JSON-encodable values by key.
type Cache interface {
	// Get decodes the value for key into dst. It reports false on a miss.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any) error
	// Invalidate removes every key starting with any of the prefixes.
	Invalidate(ctx context.Context, prefixes ...string) error
}

// Key prefixes. Detail and roles keys put the contact id before the scope,
// so a contact can be invalidated for every user at once.
const (
	prefixList   = "contacts:list:"
	prefixDetail = "contacts:detail:"
	prefixRoles  = "contacts:roles:"
)

// ListKey is the key of one list fetch for scope.
func ListKey(scope, serverKey string) string {
	return prefixList + scope + ":" + serverKey
}

// DetailKey is the key of one contact fetch for scope.
func DetailKey(scope, id string) string {
	return prefixDetail + id + ":" + scope
}

// RolesKey is the key of one contact's roles for scope.
func RolesKey(scope, id string) string {
	return prefixRoles + id + ":" + scope
}

// Memory is an in-process Cache with a fixed TTL. Values are stored encoded,
// so callers never share memory with the cache.
type Memory struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[string]memEntry
}

type memEntry struct {
	data    []byte
	expires time.Time
}

// NewMemory returns a Memory cache. A non-positive ttl disables expiry.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{ttl: ttl, now: time.Now, entries: make(map[string]memEntry)}
}

func (m *Memory) Get(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	e, ok := m.entries[key]
	if ok && m.ttl > 0 && !m.now().Before(e.expires) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(e.data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Memory) Set(_ context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.entries[key] = memEntry{data: data, expires: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Invalidate(_ context.Context, prefixes ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		for _, p := range prefixes {
			if strings.HasPrefix(k, p) {
				delete(m.entries, k)
				break
			}
		}
	}
	return nil
}

// Sweep drops expired entries and reports how many were removed. Get only
// evicts the keys it reads, so a background sweep keeps unread keys from
// piling up.
func (m *Memory) Sweep() int {
	if m.ttl <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Nop caches nothing.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (bool, error) { return false, nil }
func (Nop) Set(context.Context, string, any) error         { return nil }
func (Nop) Invalidate(context.Context, ...string) error    { return nil }
