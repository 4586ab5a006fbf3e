// Package ephemeral holds raw answer text in process memory for the
// lifetime of a session. Nothing here is ever serialized to durable
// storage — completion reads the answers once, then purges them.
//
// The store is per-process: behind a load balancer each instance sees only
// its own sessions, and an in-flight session loses its answers on restart.
// Both are accepted limits of the design, not bugs to fix here.
package ephemeral

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Answer is one raw free-text answer held in memory.
type Answer struct {
	QuestionIdx int
	QuestionKey string
	Text        string
}

// AnswerStore is the holding area for raw answers, keyed by session ID.
// Implementations must be safe for concurrent use across sessions.
type AnswerStore interface {
	// Put appends one answer under the session, starting the session's TTL
	// window on first insert.
	Put(sessionID uuid.UUID, answer Answer)

	// Get returns the answers recorded for the session, in insertion order.
	// Returns nil if the session has no entries (unknown, purged or swept).
	Get(sessionID uuid.UUID) []Answer

	// Purge removes all answers for the session. Purging an absent session
	// is a no-op, so the call is idempotent.
	Purge(sessionID uuid.UUID)

	// Sweep removes every entry whose TTL elapsed before now and reports
	// how many sessions were dropped.
	Sweep(now time.Time) int
}

// entry groups a session's answers with its purge deadline.
type entry struct {
	answers   []Answer
	expiresAt time.Time
}

// MemoryAnswerStore is the process-local AnswerStore implementation.
type MemoryAnswerStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry
	ttl     time.Duration
	logger  *slog.Logger
}

// NewMemoryAnswerStore creates an answer store whose entries expire after
// the given TTL. If logger is nil, the default logger is used.
func NewMemoryAnswerStore(ttl time.Duration, logger *slog.Logger) *MemoryAnswerStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryAnswerStore{
		entries: make(map[uuid.UUID]*entry),
		ttl:     ttl,
		logger:  logger.With("component", "ephemeral_answer_store"),
	}
}

// Ensure MemoryAnswerStore implements the AnswerStore interface
var _ AnswerStore = (*MemoryAnswerStore)(nil)

// Put implements AnswerStore.Put.
func (s *MemoryAnswerStore) Put(sessionID uuid.UUID, answer Answer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok {
		e = &entry{expiresAt: time.Now().Add(s.ttl)}
		s.entries[sessionID] = e
	}
	e.answers = append(e.answers, answer)
}

// Get implements AnswerStore.Get.
func (s *MemoryAnswerStore) Get(sessionID uuid.UUID) []Answer {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sessionID]
	if !ok {
		return nil
	}

	// Copy so callers never share the internal slice.
	answers := make([]Answer, len(e.answers))
	copy(answers, e.answers)
	return answers
}

// Purge implements AnswerStore.Purge.
func (s *MemoryAnswerStore) Purge(sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
}

// Sweep implements AnswerStore.Sweep.
func (s *MemoryAnswerStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired entries at the given interval until the context is
// canceled. This bounds memory growth independent of request traffic —
// abandoned browsers never call purge.
func (s *MemoryAnswerStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := s.Sweep(now); removed > 0 {
				s.logger.Debug("swept expired ephemeral entries", "removed", removed)
			}
		}
	}
}
