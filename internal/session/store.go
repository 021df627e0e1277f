package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	sessionBucket = []byte("session")
	recordKey     = []byte("record")
)

var _ RecordStore = (*BoltStore)(nil)

// BoltStore keeps the session record in a bbolt file.
type BoltStore struct {
	db *bolt.DB
}

// OpenBoltStore opens or creates the session file at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create session bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Load(_ context.Context) (Record, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(sessionBucket).Get(recordKey); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return Record{}, fmt.Errorf("failed to read session: %w", err)
	}
	if raw == nil {
		return Record{}, ErrNoSession
	}

	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		return Record{}, fmt.Errorf("failed to decode session: %w", err)
	}
	return record, nil
}

func (s *BoltStore) Save(_ context.Context, record Record) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Put(recordKey, raw)
	})
}

func (s *BoltStore) Clear(_ context.Context) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete(recordKey)
	})
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

var _ RecordStore = (*MemoryStore)(nil)

// MemoryStore keeps the record in memory.
type MemoryStore struct {
	mu     sync.Mutex
	record *Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(_ context.Context) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.record == nil {
		return Record{}, ErrNoSession
	}
	return *s.record, nil
}

func (s *MemoryStore) Save(_ context.Context, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = &record
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = nil
	return nil
}

var _ UnlockCache = (*MemoryCache)(nil)

// MemoryCache is the process-lifetime unlock cache.
type MemoryCache struct {
	mu      sync.RWMutex
	tickets map[string]string
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{tickets: make(map[string]string)}
}

func (c *MemoryCache) Get(address string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tickets[address]
	return t, ok
}

func (c *MemoryCache) Set(address, ticket string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickets[address] = ticket
}

func (c *MemoryCache) Delete(address string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tickets, address)
}
