package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/timetable"
)

func TestSessionStoreExpiresIdleEntries(t *testing.T) {
	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	store := newSessionStore(10*time.Minute, func() time.Time { return now })

	sess := &timetable.Session{}
	store.Save("draft-1", "user-1", sess)
	assert.Equal(t, 1, store.Len())

	now = now.Add(9 * time.Minute)
	entry, ok := store.Get("draft-1")
	require.True(t, ok)
	assert.Same(t, sess, entry.session)
	assert.Equal(t, "user-1", entry.ownerID)

	// the lookup above refreshed the entry
	now = now.Add(9 * time.Minute)
	_, ok = store.Get("draft-1")
	assert.True(t, ok)

	now = now.Add(11 * time.Minute)
	_, ok = store.Get("draft-1")
	assert.False(t, ok)
	assert.Zero(t, store.Len())
}

func TestSessionStoreDelete(t *testing.T) {
	store := newSessionStore(time.Minute, time.Now)
	store.Save("draft-1", "user-1", &timetable.Session{})
	store.Delete("draft-1")

	_, ok := store.Get("draft-1")
	assert.False(t, ok)
}

func TestSessionStoreSaveSweepsIdleEntries(t *testing.T) {
	now := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	store := newSessionStore(10*time.Minute, func() time.Time { return now })
	store.Save("draft-1", "user-1", &timetable.Session{})
	store.Save("draft-2", "user-1", &timetable.Session{})

	now = now.Add(11 * time.Minute)
	store.Save("draft-3", "user-2", &timetable.Session{})
	assert.Equal(t, 1, store.Len())
	_, ok := store.Get("draft-3")
	assert.True(t, ok)
}

func TestSessionStoreClear(t *testing.T) {
	store := newSessionStore(time.Minute, time.Now)
	store.Save("draft-1", "user-1", &timetable.Session{})
	store.Save("draft-2", "user-1", &timetable.Session{})

	assert.Equal(t, 2, store.Clear())
	assert.Zero(t, store.Len())
	assert.Zero(t, store.Clear())
}

func TestDraftLocksSerializePerDraft(t *testing.T) {
	locks := newDraftLocks()
	release, err := locks.acquire(context.Background(), "draft-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = locks.acquire(ctx, "draft-1")
	assert.Error(t, err)
	assert.Equal(t, 1, locks.len())

	other, err := locks.acquire(context.Background(), "draft-2")
	require.NoError(t, err)
	assert.Equal(t, 2, locks.len())
	other()

	release()
	assert.Zero(t, locks.len())

	again, err := locks.acquire(context.Background(), "draft-1")
	require.NoError(t, err)
	again()
	assert.Zero(t, locks.len())
}

func TestDraftLocksHandOffToWaiter(t *testing.T) {
	locks := newDraftLocks()
	release, err := locks.acquire(context.Background(), "draft-1")
	require.NoError(t, err)

	acquired := make(chan func())
	go func() {
		next, err := locks.acquire(context.Background(), "draft-1")
		if err == nil {
			acquired <- next
		}
		close(acquired)
	}()

	require.Eventually(t, func() bool {
		locks.mu.Lock()
		defer locks.mu.Unlock()
		lock, ok := locks.locks["draft-1"]
		return ok && lock.refs == 2
	}, time.Second, time.Millisecond)

	// the waiter keeps the entry alive so it is served by the same semaphore
	release()
	assert.Equal(t, 1, locks.len())

	select {
	case next := <-acquired:
		require.NotNil(t, next)
		next()
	case <-time.After(time.Second):
		t.Fatal("waiter never acquired the draft")
	}
	assert.Zero(t, locks.len())
}
