package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"thematica/internal/analysis"
	llmclient "thematica/internal/llm/client"
)

// ErrQueueFull is returned when the pending backlog is saturated.
var ErrQueueFull = errors.New("jobs: queue is full")

// Runner executes one job's pipeline.
type Runner func(ctx context.Context, req analysis.Request) (analysis.Result, error)

type task struct {
	id  string
	req analysis.Request
}

// Queue admits jobs in FIFO order and runs them under a bounded worker
// pool, so bulk requests submitted close together cannot overwhelm the
// upstream LLM quota. There is no cancellation: an admitted job only leaves
// via completed or failed.
type Queue struct {
	store  *Store
	runner Runner
	log    zerolog.Logger

	tasks chan task
	wg    sync.WaitGroup
}

// NewQueue builds a queue with the given concurrency ceiling and backlog
// depth. concurrency <= 0 becomes 1; depth <= 0 becomes 256.
func NewQueue(store *Store, runner Runner, concurrency, depth int, log zerolog.Logger) *Queue {
	if concurrency <= 0 {
		concurrency = 1
	}
	if depth <= 0 {
		depth = 256
	}
	q := &Queue{
		store:  store,
		runner: runner,
		log:    log,
		tasks:  make(chan task, depth),
	}
	for i := 0; i < concurrency; i++ {
		q.wg.Add(1)
		go q.work()
	}
	return q
}

// Submit records a pending job and enqueues it, returning the job id
// immediately (202 semantics).
func (q *Queue) Submit(req analysis.Request) (string, error) {
	id := uuid.NewString()
	q.store.Put(Job{
		ID:        id,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	})
	select {
	case q.tasks <- task{id: id, req: req}:
		return id, nil
	default:
		q.store.Update(id, func(j *Job) {
			j.Status = StatusFailed
			j.Error = "server is at capacity, try again later"
		})
		return "", ErrQueueFull
	}
}

// Close stops admission and waits for in-flight jobs to finish.
func (q *Queue) Close() {
	close(q.tasks)
	q.wg.Wait()
}

func (q *Queue) work() {
	defer q.wg.Done()
	for t := range q.tasks {
		q.run(t)
	}
}

func (q *Queue) run(t task) {
	q.store.Update(t.id, func(j *Job) { j.Status = StatusProcessing })
	q.log.Info().Str("job", t.id).Int("units", len(t.req.Units)).Msg("job started")

	result, err := q.runner(context.Background(), t.req)
	if err != nil {
		q.log.Error().Str("job", t.id).Err(err).Msg("job failed")
		msg := llmclient.UserMessage(err)
		q.store.Update(t.id, func(j *Job) {
			j.Status = StatusFailed
			j.Error = msg
		})
		return
	}
	q.store.Update(t.id, func(j *Job) {
		j.Status = StatusCompleted
		j.Result = &result
	})
	q.log.Info().Str("job", t.id).Int("coded_units", len(result.CodedUnits)).Msg("job completed")
}
