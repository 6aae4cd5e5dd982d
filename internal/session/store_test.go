package session

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGet(t *testing.T) {
	store := NewStore(time.Minute)

	sess := store.Create(uuid.New(), "dr.lee@example.com", []string{"psychologist"})

	got, ok := store.Get(sess.ID)
	require.True(t, ok)
	assert.Equal(t, sess.UserID, got.UserID)
	assert.Equal(t, "dr.lee@example.com", got.Email)
	assert.Equal(t, 1, store.Count())
}

func TestDeleteEndsSession(t *testing.T) {
	store := NewStore(time.Minute)
	sess := store.Create(uuid.New(), "a@example.com", nil)

	store.Delete(sess.ID)

	_, ok := store.Get(sess.ID)
	assert.False(t, ok)
	assert.Equal(t, 0, store.Count())
}

func TestAllReadersSeeTheSameState(t *testing.T) {
	store := NewStore(time.Minute)
	sess := store.Create(uuid.New(), "a@example.com", nil)

	// Two independent lookups observe the same store
	first, ok1 := store.Get(sess.ID)
	second, ok2 := store.Get(sess.ID)
	require.True(t, ok1)
	require.True(t, ok2)
	assert.Equal(t, first.ID, second.ID)

	store.Delete(sess.ID)
	_, ok1 = store.Get(sess.ID)
	_, ok2 = store.Get(sess.ID)
	assert.False(t, ok1)
	assert.False(t, ok2)
}

func TestSubscribeReceivesLoginAndLogout(t *testing.T) {
	store := NewStore(time.Minute)
	events, cancel := store.Subscribe()
	defer cancel()

	userID := uuid.New()
	sess := store.Create(userID, "a@example.com", nil)
	store.Delete(sess.ID)

	login := <-events
	assert.Equal(t, EventLogin, login.Type)
	assert.Equal(t, userID, login.UserID)

	logout := <-events
	assert.Equal(t, EventLogout, logout.Type)
	assert.Equal(t, sess.ID, logout.SessionID)
}

func TestCancelledSubscriberStopsReceiving(t *testing.T) {
	store := NewStore(time.Minute)
	events, cancel := store.Subscribe()
	cancel()

	store.Create(uuid.New(), "a@example.com", nil)

	_, open := <-events
	assert.False(t, open)
}

func TestSlowSubscriberDoesNotBlockLogin(t *testing.T) {
	store := NewStore(time.Minute)
	_, cancel := store.Subscribe() // never drained
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			store.Create(uuid.New(), "a@example.com", nil)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session creation blocked on a slow subscriber")
	}
}
