package jobs

import (
	"testing"
	"time"
)

func TestStorePutGet(t *testing.T) {
	s := NewStore(8, 0)
	s.Put(Job{ID: "j1", Status: StatusPending, CreatedAt: time.Now()})

	job, ok := s.Get("j1")
	if !ok || job.Status != StatusPending {
		t.Fatalf("Get = %+v, %v", job, ok)
	}
	if _, ok := s.Get("missing"); ok {
		t.Fatal("unknown id must not resolve")
	}
}

func TestStoreUpdate(t *testing.T) {
	s := NewStore(8, 0)
	s.Put(Job{ID: "j1", Status: StatusPending})

	job, ok := s.Update("j1", func(j *Job) { j.Status = StatusProcessing })
	if !ok || job.Status != StatusProcessing {
		t.Fatalf("Update = %+v, %v", job, ok)
	}
	if _, ok := s.Update("missing", func(*Job) {}); ok {
		t.Fatal("updating an unknown id must report false")
	}
}

func TestStoreTTLEviction(t *testing.T) {
	s := NewStore(8, 20*time.Millisecond)
	s.Put(Job{ID: "j1", Status: StatusCompleted})

	if _, ok := s.Get("j1"); !ok {
		t.Fatal("job should be retained within the TTL")
	}
	time.Sleep(60 * time.Millisecond)
	if _, ok := s.Get("j1"); ok {
		t.Fatal("job should be evicted after the TTL")
	}
}

func TestStoreCapacityEviction(t *testing.T) {
	s := NewStore(2, 0)
	s.Put(Job{ID: "j1"})
	s.Put(Job{ID: "j2"})
	s.Put(Job{ID: "j3"})

	if _, ok := s.Get("j1"); ok {
		t.Fatal("oldest job should be evicted at capacity")
	}
	if _, ok := s.Get("j3"); !ok {
		t.Fatal("newest job must survive")
	}
}

func TestWatchDeliversTransitionsAndCloses(t *testing.T) {
	s := NewStore(8, 0)
	s.Put(Job{ID: "j1", Status: StatusPending})

	updates, cancel, ok := s.Watch("j1")
	if !ok {
		t.Fatal("watch on a known job must succeed")
	}
	defer cancel()

	if first := <-updates; first.Status != StatusPending {
		t.Fatalf("first update = %+v, want the current state", first)
	}

	s.Update("j1", func(j *Job) { j.Status = StatusProcessing })
	s.Update("j1", func(j *Job) { j.Status = StatusCompleted })

	var last Job
	for job := range updates {
		last = job
	}
	if last.Status != StatusCompleted {
		t.Fatalf("last update = %+v, want the terminal state", last)
	}
}

func TestWatchTerminalJobClosesImmediately(t *testing.T) {
	s := NewStore(8, 0)
	s.Put(Job{ID: "j1", Status: StatusFailed, Error: "boom"})

	updates, cancel, ok := s.Watch("j1")
	if !ok {
		t.Fatal("watch must succeed")
	}
	defer cancel()

	job, open := <-updates
	if !open || job.Status != StatusFailed {
		t.Fatalf("first receive = %+v, %v", job, open)
	}
	if _, open := <-updates; open {
		t.Fatal("channel must be closed after a terminal state")
	}
}

func TestWatchUnknownJob(t *testing.T) {
	s := NewStore(8, 0)
	if _, _, ok := s.Watch("ghost"); ok {
		t.Fatal("watching an unknown job must fail")
	}
}

func TestWatchSlowConsumerStillGetsTerminalState(t *testing.T) {
	s := NewStore(8, 0)
	s.Put(Job{ID: "j1", Status: StatusPending})

	updates, cancel, ok := s.Watch("j1")
	if !ok {
		t.Fatal("watch must succeed")
	}
	defer cancel()

	// Overflow the watcher buffer without reading.
	for i := 0; i < 20; i++ {
		s.Update("j1", func(j *Job) { j.Status = StatusProcessing })
	}
	s.Update("j1", func(j *Job) { j.Status = StatusCompleted })

	var last Job
	for job := range updates {
		last = job
	}
	if last.Status != StatusCompleted {
		t.Fatalf("terminal state lost for slow consumer, last = %+v", last)
	}
}

func TestStatusTerminal(t *testing.T) {
	for s, want := range map[Status]bool{
		StatusPending:    false,
		StatusProcessing: false,
		StatusCompleted:  true,
		StatusFailed:     true,
	} {
		if s.Terminal() != want {
			t.Errorf("%s.Terminal() = %v, want %v", s, s.Terminal(), want)
		}
	}
}
