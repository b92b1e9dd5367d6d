package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"hotel-frontdesk/models"
)

// MemoryStore keeps sessions as encoded blobs so callers never share
// pointers with the cache.
type MemoryStore struct {
	mu    sync.RWMutex
	blobs map[uint][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{blobs: make(map[uint][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, roomID uint) (*models.CheckinSession, error) {
	m.mu.RLock()
	data, ok := m.blobs[roomID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	var s models.CheckinSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session %d: %w", roomID, err)
	}
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *models.CheckinSession) error {
	if s == nil || s.RoomID == 0 {
		return fmt.Errorf("save session: missing room id")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session %d: %w", s.RoomID, err)
	}
	m.mu.Lock()
	m.blobs[s.RoomID] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, roomID uint) error {
	m.mu.Lock()
	delete(m.blobs, roomID)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) List(ctx context.Context) (map[uint]*models.CheckinSession, error) {
	m.mu.RLock()
	ids := make([]uint, 0, len(m.blobs))
	for id := range m.blobs {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	out := make(map[uint]*models.CheckinSession, len(ids))
	for _, id := range ids {
		s, err := m.Get(ctx, id)
		if err != nil {
			continue
		}
		out[id] = s
	}
	return out, nil
}
