package jobs

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"thematica/internal/analysis"
)

// Status is a job's lifecycle state. A job is created pending, moves to
// processing exactly once, and terminates at completed or failed.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status ends the job's lifecycle.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job is the polling record for one bulk-analysis run. A failed job carries
// only the error string; partial results are never exposed.
type Job struct {
	ID        string           `json:"id"`
	Status    Status           `json:"status"`
	Result    *analysis.Result `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Store holds jobs in a bounded, TTL-evicting cache instead of an unbounded
// map, so a long-lived process does not grow without limit. An evicted job
// is indistinguishable from one that never existed; clients that poll within
// the TTL are unaffected.
type Store struct {
	mu       sync.Mutex
	cache    *expirable.LRU[string, Job]
	watchers map[string][]chan Job
}

// NewStore creates a store retaining at most size jobs for at most ttl.
// size <= 0 falls back to 1024; ttl <= 0 disables expiry.
func NewStore(size int, ttl time.Duration) *Store {
	if size <= 0 {
		size = 1024
	}
	return &Store{
		cache:    expirable.NewLRU[string, Job](size, nil, ttl),
		watchers: make(map[string][]chan Job),
	}
}

// Put inserts or replaces a job record.
func (s *Store) Put(job Job) {
	s.mu.Lock()
	s.cache.Add(job.ID, job)
	s.notifyLocked(job)
	s.mu.Unlock()
}

// Get returns the job if it is still retained.
func (s *Store) Get(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(id)
}

// Update applies fn to the stored job under the store lock. Only each job's
// own worker writes transitions, but the lock keeps the read-modify-write
// atomic under true OS threads.
func (s *Store) Update(id string, fn func(*Job)) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.cache.Get(id)
	if !ok {
		return Job{}, false
	}
	fn(&job)
	s.cache.Add(id, job)
	s.notifyLocked(job)
	return job, true
}

// Watch subscribes to a job's transitions. The channel receives every
// subsequent state (and is closed after a terminal one); cancel releases
// the subscription. ok is false for unknown jobs.
func (s *Store) Watch(id string) (updates <-chan Job, cancel func(), ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, found := s.cache.Get(id)
	if !found {
		return nil, nil, false
	}
	ch := make(chan Job, 8)
	ch <- job
	if job.Status.Terminal() {
		close(ch)
		return ch, func() {}, true
	}
	s.watchers[id] = append(s.watchers[id], ch)
	cancel = func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.watchers[id]
		for i, c := range subs {
			if c == ch {
				s.watchers[id] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
	}
	return ch, cancel, true
}

func (s *Store) notifyLocked(job Job) {
	subs := s.watchers[job.ID]
	if len(subs) == 0 {
		return
	}
	for _, ch := range subs {
		select {
		case ch <- job:
			continue
		default:
		}
		if !job.Status.Terminal() {
			// Slow watcher; intermediate states may be dropped.
			continue
		}
		// The terminal state must be delivered: evict the oldest buffered
		// state to make room.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- job:
		default:
		}
	}
	if job.Status.Terminal() {
		for _, ch := range subs {
			close(ch)
		}
		delete(s.watchers, job.ID)
	}
}
