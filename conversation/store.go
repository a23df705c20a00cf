package conversation

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrNotFound is returned when an operation addresses an unknown
// conversation id.
var ErrNotFound = errors.New("conversation not found")

// Store is an in-memory conversation map shared across concurrent callers.
// One RWMutex is the sole synchronization point; the store owns every
// Conversation value and hands out clones, so callers can never mutate
// internal state without going through the store.
type Store struct {
	mu            sync.RWMutex
	conversations map[string]*Conversation
	maxAge        time.Duration
}

// NewStore creates an empty store. Conversations whose UpdatedAt is older
// than maxAge at sweep time are removed by SweepExpired. The store has no
// internal timer; call SweepExpired from a caller-owned ticker.
func NewStore(maxAge time.Duration) *Store {
	return &Store{
		conversations: make(map[string]*Conversation),
		maxAge:        maxAge,
	}
}

// MaxAge returns the configured expiry age.
func (s *Store) MaxAge() time.Duration { return s.maxAge }

// Create mints a new empty conversation, inserts it and returns a clone.
func (s *Store) Create() *Conversation {
	conv := NewConversation()
	s.mu.Lock()
	s.conversations[conv.ID] = conv
	s.mu.Unlock()
	return conv.Clone()
}

// Get returns a snapshot clone of the conversation. Mutations of the clone
// do not affect the store until written back via Update.
func (s *Store) Get(id string) (*Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil, false
	}
	return conv.Clone(), true
}

// Update overwrites the stored entry for conv.ID wholesale. Concurrent
// updates for the same id race and the later write wins; there is no
// conflict detection. Use AppendMessage when the read-modify-write of a
// single conversation must be atomic.
func (s *Store) Update(conv *Conversation) {
	clone := conv.Clone()
	s.mu.Lock()
	s.conversations[clone.ID] = clone
	s.mu.Unlock()
}

// AppendMessage atomically appends one message to the conversation and bumps
// UpdatedAt under the store's write lock. This is the only operation with an
// atomicity guarantee for a single conversation's read-modify-write.
func (s *Store) AppendMessage(id, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	conv.AddMessage(role, content)
	return nil
}

// Delete removes the conversation and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.conversations[id]
	if ok {
		delete(s.conversations, id)
	}
	return ok
}

// SweepExpired removes every conversation whose UpdatedAt is older than the
// configured max age and returns the removed count. Now is computed once and
// the whole sweep runs in a single critical section, so no entry is ever
// observed half-deleted by concurrent readers.
func (s *Store) SweepExpired() int {
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, conv := range s.conversations {
		if now.Sub(conv.UpdatedAt) > s.maxAge {
			delete(s.conversations, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored conversations.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.conversations)
}
