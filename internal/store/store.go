// Package store persists table session state. Persistence is best
// effort: the server logs store failures and keeps playing, so a dead
// Redis or a full disk never blocks a round.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/lox/blackjack/internal/game"
)

// ErrInvalidID rejects session IDs the backends cannot use as keys.
var ErrInvalidID = errors.New("store: invalid session id")

// Record is the persisted form of a table session.
type Record struct {
	SessionID string        `json:"sessionId"`
	Player    string        `json:"player,omitempty"`
	Balance   int           `json:"balance"`
	Round     int           `json:"round"`
	Phase     string        `json:"phase"`
	UpdatedAt time.Time     `json:"updatedAt"`
	State     game.Snapshot `json:"state"`
}

// NewRecord builds a record from a session's snapshot.
func NewRecord(sessionID, player string, state game.Snapshot) Record {
	return Record{
		SessionID: sessionID,
		Player:    player,
		Balance:   state.Balance,
		Round:     state.Round,
		Phase:     state.Phase.String(),
		UpdatedAt: time.Now().UTC(),
		State:     state,
	}
}

// Store saves and loads session records. Load returns (nil, nil) when
// the session is unknown.
type Store interface {
	Save(ctx context.Context, rec Record) error
	Load(ctx context.Context, sessionID string) (*Record, error)
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]string, error)
}

func validID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}

// MemoryStore keeps records in process memory. It is the default when
// no store block is configured.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Save(ctx context.Context, rec Record) error {
	if !validID(rec.SessionID) {
		return ErrInvalidID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.SessionID] = rec
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[sessionID]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, sessionID)
	return nil
}

func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
