package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// HistoryKey is the fixed key the conversation snapshot lives under
const HistoryKey = "chat-history"

// Storage drivers understood by OpenStore
const (
	DriverSQLite = "sqlite"
	DriverBolt   = "bolt"
	DriverMemory = "memory"
)

// KVStore is durable key-based storage of raw values
type KVStore interface {
	Get(key string) ([]byte, error)
	Put(key string, value []byte) error
	Delete(key string) error
	Close() error
}

// KeyLister is implemented by stores that can enumerate their keys
type KeyLister interface {
	Keys() ([]string, error)
}

// OpenStore opens the backend named by driver at path
func OpenStore(driver, path string) (KVStore, error) {
	switch driver {
	case DriverSQLite, "":
		return OpenSQLiteStore(path)
	case DriverBolt:
		return OpenBoltStore(path)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s (supported: sqlite, bolt, memory)", driver)
	}
}

// Load returns the value stored under key, or def when the key is absent or
// the stored bytes do not decode. Failures are logged, never returned.
func Load[T any](kv KVStore, key string, def T) T {
	data, err := kv.Get(key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			LogWarn("%v", &StorageError{Key: key, Op: "get", Err: err})
		}
		return def
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		LogWarn("%v", &StorageError{Key: key, Op: "decode", Err: err})
		return def
	}
	return value
}

// Save overwrites the value under key. It is best-effort: a failure is logged
// and reported to the caller only as false.
func Save(kv KVStore, key string, value any) bool {
	data, err := json.Marshal(value)
	if err != nil {
		LogError("%v", &StorageError{Key: key, Op: "encode", Err: err})
		return false
	}
	if err := kv.Put(key, data); err != nil {
		LogError("%v", &StorageError{Key: key, Op: "put", Err: err})
		return false
	}
	return true
}

// Clear removes the value under key entirely
func Clear(kv KVStore, key string) bool {
	if err := kv.Delete(key); err != nil && !errors.Is(err, ErrKeyNotFound) {
		LogError("%v", &StorageError{Key: key, Op: "delete", Err: err})
		return false
	}
	return true
}

// MemoryStore keeps values in process memory
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (s *MemoryStore) Get(key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (s *MemoryStore) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	s.values[key] = v
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

// Keys lists every key in sorted order
func (s *MemoryStore) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
