package service

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/noah-isme/sma-timetable-api/internal/timetable"
)

type sessionEntry struct {
	session  *timetable.Session
	ownerID  string
	lastUsed time.Time
}

// sessionStore keeps loaded draft sessions in memory. Entries idle for longer than ttl are dropped on
// lookup and swept whenever another session is saved.
type sessionStore struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[string]*sessionEntry
}

func newSessionStore(ttl time.Duration, now func() time.Time) *sessionStore {
	return &sessionStore{
		ttl:   ttl,
		now:   now,
		items: make(map[string]*sessionEntry),
	}
}

func (s *sessionStore) Save(draftID, ownerID string, session *timetable.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, entry := range s.items {
		if now.Sub(entry.lastUsed) > s.ttl {
			delete(s.items, id)
		}
	}
	s.items[draftID] = &sessionEntry{session: session, ownerID: ownerID, lastUsed: now}
}

func (s *sessionStore) Get(draftID string) (*sessionEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[draftID]
	if !ok {
		return nil, false
	}
	now := s.now()
	if now.Sub(entry.lastUsed) > s.ttl {
		delete(s.items, draftID)
		return nil, false
	}
	entry.lastUsed = now
	return entry, true
}

func (s *sessionStore) Delete(draftID string) {
	s.mu.Lock()
	delete(s.items, draftID)
	s.mu.Unlock()
}

// Clear drops every session and returns how many were held.
func (s *sessionStore) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.items)
	s.items = make(map[string]*sessionEntry)
	return n
}

func (s *sessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

type draftLock struct {
	sem  *semaphore.Weighted
	refs int
}

// draftLocks hands out one single-permit semaphore per draft. A semaphore lives only while some
// request holds or waits for it.
type draftLocks struct {
	mu    sync.Mutex
	locks map[string]*draftLock
}

func newDraftLocks() *draftLocks {
	return &draftLocks{locks: make(map[string]*draftLock)}
}

// acquire waits for the draft's permit. The returned func releases it.
func (l *draftLocks) acquire(ctx context.Context, draftID string) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[draftID]
	if !ok {
		lock = &draftLock{sem: semaphore.NewWeighted(1)}
		l.locks[draftID] = lock
	}
	lock.refs++
	l.mu.Unlock()

	if err := lock.sem.Acquire(ctx, 1); err != nil {
		l.unref(draftID, lock)
		return nil, err
	}
	return func() {
		lock.sem.Release(1)
		l.unref(draftID, lock)
	}, nil
}

func (l *draftLocks) unref(draftID string, lock *draftLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.refs--
	if lock.refs == 0 && l.locks[draftID] == lock {
		delete(l.locks, draftID)
	}
}

func (l *draftLocks) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
