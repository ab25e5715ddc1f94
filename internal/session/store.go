// Package session keeps per-conversation honeypot state for the life of the
// process.
//
// Sessions are never expired or deleted: the store grows with every new
// conversation id it sees. That is intentional for a single short-lived
// honeypot process and is not meant to be "fixed" with eviction.
package session

import (
	"sync"
	"time"

	"github.com/MikeSquared-Agency/snare/internal/extractor"
)

// Session is the state held for one conversation id.
type Session struct {
	ConversationID string
	Turns          int
	StartedAt      time.Time
	Intel          extractor.Intelligence
}

// Snapshot is a copy of a Session taken inside the store's lock. It shares no
// memory with the live session, so later turns never change it.
type Snapshot Session

// Elapsed returns the whole seconds between StartedAt and now, never negative.
func (s Snapshot) Elapsed(now time.Time) int64 {
	d := now.Sub(s.StartedAt)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}

// Store is the only owner of Session records. One mutex serialises lookup,
// creation and accumulator updates.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewStore creates an empty store. now stamps session creation; nil means
// time.Now.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		sessions: make(map[string]*Session),
		now:      now,
	}
}

// GetOrCreate returns the session for id, creating it with zero turns and an
// empty dossier if this is the first time id is seen.
func (s *Store) GetOrCreate(id string) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(id).snapshot()
}

// RecordTurn counts one turn for id and appends the fragment to its dossier,
// creating the session first if needed. The returned snapshot reflects this
// turn.
func (s *Store) RecordTurn(id string, f extractor.Fragment) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.getOrCreateLocked(id)
	sess.Turns++
	sess.Intel.Merge(f)
	return sess.snapshot()
}

// Get returns the session for id without creating one.
func (s *Store) Get(id string) (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return Snapshot{}, false
	}
	return sess.snapshot(), true
}

// Len is the number of sessions created since the store was built.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Store) getOrCreateLocked(id string) *Session {
	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{
			ConversationID: id,
			StartedAt:      s.now(),
			Intel:          extractor.NewIntelligence(),
		}
		s.sessions[id] = sess
	}
	return sess
}

func (sess *Session) snapshot() Snapshot {
	snap := Snapshot(*sess)
	snap.Intel = sess.Intel.Clone()
	return snap
}
