package session

import (
	"context"
	"sync"

	"github.com/vitrine/backend/internal/domain/shopping"
)

// MemorySnapshotStore implements shopping.SnapshotStore with an
// in-process map. Snapshots are kept in their encoded form so the
// memory adapter exercises the same codec as the durable ones.
// Suitable for development and tests; state does not survive restarts.
type MemorySnapshotStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemorySnapshotStore creates an empty in-memory snapshot store
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{
		data: make(map[string][]byte),
	}
}

// SaveCart stores the encoded cart snapshot under the session's cart key
func (s *MemorySnapshotStore) SaveCart(_ context.Context, key shopping.SessionKey, snap shopping.CartSnapshot) error {
	data, err := shopping.EncodeCartSnapshot(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key.CartKey()] = data
	return nil
}

// LoadCart returns the cart snapshot, with found=false for an absent key
func (s *MemorySnapshotStore) LoadCart(_ context.Context, key shopping.SessionKey) (shopping.CartSnapshot, bool, error) {
	s.mu.RLock()
	data, ok := s.data[key.CartKey()]
	s.mu.RUnlock()
	if !ok {
		return shopping.CartSnapshot{}, false, nil
	}
	snap, err := shopping.DecodeCartSnapshot(data)
	if err != nil {
		return shopping.CartSnapshot{}, false, err
	}
	return snap, true, nil
}

// DeleteCart removes the session's cart snapshot
func (s *MemorySnapshotStore) DeleteCart(_ context.Context, key shopping.SessionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key.CartKey())
	return nil
}

// SaveFavorites stores the encoded favorites snapshot
func (s *MemorySnapshotStore) SaveFavorites(_ context.Context, key shopping.SessionKey, snap shopping.FavoritesSnapshot) error {
	data, err := shopping.EncodeFavoritesSnapshot(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key.FavoritesKey()] = data
	return nil
}

// LoadFavorites returns the favorites snapshot, with found=false for an absent key
func (s *MemorySnapshotStore) LoadFavorites(_ context.Context, key shopping.SessionKey) (shopping.FavoritesSnapshot, bool, error) {
	s.mu.RLock()
	data, ok := s.data[key.FavoritesKey()]
	s.mu.RUnlock()
	if !ok {
		return shopping.FavoritesSnapshot{}, false, nil
	}
	snap, err := shopping.DecodeFavoritesSnapshot(data)
	if err != nil {
		return shopping.FavoritesSnapshot{}, false, err
	}
	return snap, true, nil
}

// DeleteFavorites removes the session's favorites snapshot
func (s *MemorySnapshotStore) DeleteFavorites(_ context.Context, key shopping.SessionKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key.FavoritesKey())
	return nil
}

// Len returns the number of stored snapshots (for tests/monitoring)
func (s *MemorySnapshotStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Ensure MemorySnapshotStore implements SnapshotStore
var _ shopping.SnapshotStore = (*MemorySnapshotStore)(nil)
