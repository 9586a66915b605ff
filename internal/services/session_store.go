package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"gepay-web/internal/models"
)

// SessionStore keeps the cached user of a browser session. Load returns
// (nil, nil) when the session holds no user.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (*models.User, error)
	Save(ctx context.Context, sessionID string, user *models.User) error
	Clear(ctx context.Context, sessionID string) error
}

// decodeSessionUser treats malformed content as an absent session.
func decodeSessionUser(sessionID string, data []byte) *models.User {
	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("Discarding malformed session")
		return nil
	}
	if user.ID == 0 {
		log.Warn().Str("session_id", sessionID).Msg("Discarding session without user id")
		return nil
	}
	return &user
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemorySessionStore is a process-local SessionStore for development and tests.
type MemorySessionStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemorySessionStore) Load(ctx context.Context, sessionID string) (*models.User, error) {
	s.mu.RLock()
	entry, ok := s.entries[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		s.Clear(ctx, sessionID)
		return nil, nil
	}

	user := decodeSessionUser(sessionID, entry.data)
	if user == nil {
		s.Clear(ctx, sessionID)
	}
	return user, nil
}

func (s *MemorySessionStore) Save(ctx context.Context, sessionID string, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	s.put(sessionID, data)
	return nil
}

func (s *MemorySessionStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.entries, sessionID)
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemorySessionStore) put(sessionID string, data []byte) {
	entry := memoryEntry{data: data}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[sessionID] = entry
	s.mu.Unlock()
}
