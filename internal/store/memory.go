package store

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ginjaninja78/delivery-reconciler/internal/types"
)

// MemoryStore holds the serialized blob in memory. It goes through the same
// JSON encoding as the other backends.
type MemoryStore struct {
	mu   sync.Mutex
	blob []byte

	// SaveErr, when set, is returned by every Save.
	SaveErr error
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// NewMemoryStoreWithBlob returns a store preloaded with raw bytes.
func NewMemoryStoreWithBlob(blob []byte) *MemoryStore {
	return &MemoryStore{blob: blob}
}

// Load implements Store.
func (s *MemoryStore) Load(_ context.Context) (types.RecordSet, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.blob == nil {
		return nil, false, nil
	}
	records, ok := decode(s.blob, "memory", zerolog.Nop())
	return records, ok, nil
}

// Save implements Store.
func (s *MemoryStore) Save(_ context.Context, records types.RecordSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	data, err := encode(records)
	if err != nil {
		return err
	}
	s.blob = data
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = nil
	return nil
}

// Blob returns a copy of the stored bytes.
func (s *MemoryStore) Blob() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.blob...)
}

// SetBlob replaces the stored bytes without validation.
func (s *MemoryStore) SetBlob(blob []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blob = blob
}
