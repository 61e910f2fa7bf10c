package dialogue

import (
	"context"
	"sync"
	"time"
)

// SessionStore persists sessions between turns. Load returns a fresh
// general session for an identity it has never seen or whose session has
// expired.
type SessionStore interface {
	Load(ctx context.Context, key string) (*Session, error)
	Save(ctx context.Context, key string, sess *Session) error
	Delete(ctx context.Context, key string) error
}

type memoryEntry struct {
	sess      *Session
	expiresAt time.Time
}

// MemoryStore keeps sessions in process with a sliding TTL. Expired
// entries are dropped on access and by Run.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, key string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return NewSession(), nil
	}
	if s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return NewSession(), nil
	}
	return e.sess.Clone(), nil
}

func (s *MemoryStore) Save(_ context.Context, key string, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = memoryEntry{sess: sess.Clone(), expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Sweep removes expired sessions and returns how many it dropped.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	dropped := 0
	for key, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, key)
			dropped++
		}
	}
	return dropped
}

// Run sweeps on every tick until ctx is cancelled.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
