package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	errx "github.com/tripplanner-poc/server/internal/core/error"
	"github.com/tripplanner-poc/server/internal/planner/model"
)

// MemoryCheckpointStore keeps checkpoints in process memory. It backs local
// runs without Redis and the engine/session tests. Records are stored as
// marshalled JSON so a caller mutating a loaded session cannot corrupt the
// checkpoint, matching the Redis store's isolation.
type MemoryCheckpointStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{records: make(map[string][]byte)}
}

func (m *MemoryCheckpointStore) Save(ctx context.Context, s *model.Session) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[s.ID] = b
	return nil
}

func (m *MemoryCheckpointStore) Load(ctx context.Context, sessionID string) (*model.Session, error) {
	m.mu.RLock()
	b, ok := m.records[sessionID]
	m.mu.RUnlock()
	if !ok {
		return nil, errx.New(errx.ErrSessionNotFound, http.StatusNotFound, errx.SessionNotFoundMessage)
	}

	var s model.Session
	if err := json.Unmarshal(b, &s); err != nil {
		return nil, fmt.Errorf("unmarshal session %s: %w", sessionID, err)
	}
	return &s, nil
}

func (m *MemoryCheckpointStore) Delete(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, sessionID)
	return nil
}

// Len reports the number of stored checkpoints.
func (m *MemoryCheckpointStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

var _ model.CheckpointStore = (*MemoryCheckpointStore)(nil)
