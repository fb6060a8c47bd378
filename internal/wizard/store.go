package wizard

import (
	"sync"
	"time"

	"github.com/ppiankov/xpbridge/internal/cache"
)

// DefaultSessionTTL bounds how long a draft lives after it was started
const DefaultSessionTTL = 30 * time.Minute

// Store holds in-progress drafts keyed by user ID. Expired drafts are
// purged lazily by Sweep; there is no background timer.
type Store struct {
	mu     sync.Mutex
	drafts *cache.Memory[*Draft]
	ttl    time.Duration
	now    func() time.Time
}

// NewStore creates a Store. now defaults to time.Now.
func NewStore(ttl time.Duration, now func() time.Time) *Store {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if now == nil {
		now = time.Now
	}
	return &Store{
		drafts: cache.NewMemory[*Draft](),
		ttl:    ttl,
		now:    now,
	}
}

// Now returns the store clock's current time
func (s *Store) Now() time.Time {
	return s.now()
}

// Put stores d under its user ID, replacing any previous draft
func (s *Store) Put(d *Draft) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts.Set(d.UserID, d.Clone())
}

// Get returns a copy of the user's draft
func (s *Store) Get(userID string) (*Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts.Get(userID)
	if !ok {
		return nil, false
	}
	return d.Clone(), true
}

// Update applies fn to a copy of the user's draft and commits it only
// when fn succeeds. It returns a copy of the resulting draft.
func (s *Store) Update(userID string, fn func(d *Draft) error) (*Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.drafts.Get(userID)
	if !ok {
		return nil, &SessionNotFoundError{UserID: userID}
	}

	next := current.Clone()
	if err := fn(next); err != nil {
		return current.Clone(), err
	}
	s.drafts.Set(userID, next)
	return next.Clone(), nil
}

// Delete removes the user's draft and returns it
func (s *Store) Delete(userID string) (*Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts.Get(userID)
	if !ok {
		return nil, false
	}
	s.drafts.Delete(userID)
	return d, true
}

// deleteDraft removes the user's draft only if it is still the draft with id
func (s *Store) deleteDraft(userID, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.drafts.Get(userID)
	if !ok || d.ID != id {
		return false
	}
	s.drafts.Delete(userID)
	return true
}

// Sweep purges drafts older than the TTL and returns how many were removed
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for userID, d := range s.drafts.Items() {
		if now.Sub(d.CreatedAt) > s.ttl {
			s.drafts.Delete(userID)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored drafts
func (s *Store) Len() int {
	return s.drafts.Len()
}
