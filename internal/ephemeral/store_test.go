package ephemeral

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutAndGet(t *testing.T) {
	store := NewMemoryAnswerStore(30*time.Minute, nil)
	sessionID := uuid.New()

	store.Put(sessionID, Answer{QuestionIdx: 0, QuestionKey: "q1", Text: "first"})
	store.Put(sessionID, Answer{QuestionIdx: 1, QuestionKey: "q2", Text: "second"})

	answers := store.Get(sessionID)
	require.Len(t, answers, 2)
	assert.Equal(t, "first", answers[0].Text)
	assert.Equal(t, "second", answers[1].Text)
}

func TestGetUnknownSession(t *testing.T) {
	store := NewMemoryAnswerStore(30*time.Minute, nil)
	assert.Nil(t, store.Get(uuid.New()))
}

func TestGetReturnsCopy(t *testing.T) {
	store := NewMemoryAnswerStore(30*time.Minute, nil)
	sessionID := uuid.New()
	store.Put(sessionID, Answer{Text: "original"})

	answers := store.Get(sessionID)
	answers[0].Text = "mutated"

	assert.Equal(t, "original", store.Get(sessionID)[0].Text)
}

func TestPurgeIsIdempotent(t *testing.T) {
	store := NewMemoryAnswerStore(30*time.Minute, nil)
	sessionID := uuid.New()
	store.Put(sessionID, Answer{Text: "secret"})

	store.Purge(sessionID)
	assert.Nil(t, store.Get(sessionID))

	// Second purge of the same session is a no-op.
	store.Purge(sessionID)
	assert.Nil(t, store.Get(sessionID))
}

func TestSweepRemovesOnlyExpired(t *testing.T) {
	store := NewMemoryAnswerStore(time.Minute, nil)
	expired := uuid.New()
	fresh := uuid.New()

	store.Put(expired, Answer{Text: "old"})
	store.Put(fresh, Answer{Text: "new"})

	// Only the entry whose TTL has elapsed is dropped.
	removed := store.Sweep(time.Now().Add(2 * time.Minute))
	assert.Equal(t, 2, removed)

	store.Put(fresh, Answer{Text: "new again"})
	removed = store.Sweep(time.Now())
	assert.Equal(t, 0, removed)
	assert.Len(t, store.Get(fresh), 1)
}

func TestConcurrentSessions(t *testing.T) {
	store := NewMemoryAnswerStore(30*time.Minute, nil)

	var wg sync.WaitGroup
	sessions := make([]uuid.UUID, 16)
	for i := range sessions {
		sessions[i] = uuid.New()
	}

	for _, id := range sessions {
		wg.Add(1)
		go func(sessionID uuid.UUID) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				store.Put(sessionID, Answer{QuestionIdx: j, Text: "answer"})
			}
		}(id)
	}
	wg.Wait()

	for _, id := range sessions {
		assert.Len(t, store.Get(id), 10)
	}
}
