package storage

import (
	"context"
	"sync"

	"github.com/goccy/go-json"

	"github.com/Veraticus/spice-advisor/internal/common"
	"github.com/Veraticus/spice-advisor/internal/service"
)

// Ensure MemoryStore implements the Store interface.
var _ service.Store = (*MemoryStore)(nil)

// MemoryStore implements Store in memory. Values are kept JSON-encoded so
// callers get the same copy semantics as the SQLite store.
type MemoryStore struct {
	values  map[string][]byte
	backups map[string][]byte
	mu      sync.RWMutex
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values:  make(map[string][]byte),
		backups: make(map[string][]byte),
	}
}

// Save encodes value as JSON and keeps it under key.
func (m *MemoryStore) Save(ctx context.Context, key string, value any, opts ...service.SaveOption) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return common.NewStorageError("encode", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = encoded
	if service.ApplySaveOptions(opts...).Backup {
		m.backups[key] = encoded
	}
	return nil
}

// Load decodes the value stored under key into dest.
func (m *MemoryStore) Load(ctx context.Context, key string, dest any) (bool, error) {
	return m.load(ctx, m.values, key, dest)
}

// LoadBackup decodes the backup copy stored under key into dest.
func (m *MemoryStore) LoadBackup(ctx context.Context, key string, dest any) (bool, error) {
	return m.load(ctx, m.backups, key, dest)
}

func (m *MemoryStore) load(ctx context.Context, table map[string][]byte, key string, dest any) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateDest(dest); err != nil {
		return false, err
	}

	m.mu.RLock()
	raw, ok := table[key]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, common.NewStorageError("decode", key, err)
	}
	return true, nil
}

// Delete removes key and its backup copy.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	delete(m.backups, key)
	return nil
}

// Close is a no-op.
func (m *MemoryStore) Close() error {
	return nil
}
