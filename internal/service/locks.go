package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// recomputeLocks serializes rollup recomputation per (profile, date)
// key. The summary write is a read-then-overwrite with no optimistic
// concurrency check, so two concurrent recomputes for the same pair
// could leave the summary inconsistent with the entry set. Ingestions
// for different profiles or disjoint dates proceed independently.
type recomputeLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newRecomputeLocks() *recomputeLocks {
	return &recomputeLocks{locks: make(map[string]*sync.Mutex)}
}

func dayKey(profileID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("%s:%s", profileID, day.Format("2006-01-02"))
}

// Lock acquires the mutex for the given (profile, date) pair and
// returns the matching unlock function.
func (r *recomputeLocks) Lock(profileID uuid.UUID, day time.Time) func() {
	key := dayKey(profileID, day)

	r.mu.Lock()
	m, ok := r.locks[key]
	if !ok {
		m = &sync.Mutex{}
		r.locks[key] = m
	}
	r.mu.Unlock()

	m.Lock()
	return m.Unlock
}
