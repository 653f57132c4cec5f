package conversation

import (
	"sync"

	"github.com/smith3v/tg-link-curator/pkg/logger"
)

// Queue runs jobs one at a time per user, in submission order. Different
// users are processed concurrently.
type Queue struct {
	mu      sync.Mutex
	pending map[int64][]func()
	wg      sync.WaitGroup
}

func NewQueue() *Queue {
	return &Queue{pending: make(map[int64][]func())}
}

func (q *Queue) Submit(userID int64, job func()) {
	q.mu.Lock()
	jobs, running := q.pending[userID]
	q.pending[userID] = append(jobs, job)
	if !running {
		q.wg.Add(1)
	}
	q.mu.Unlock()

	if !running {
		go q.drain(userID)
	}
}

// Wait blocks until every submitted job has finished.
func (q *Queue) Wait() {
	q.wg.Wait()
}

func (q *Queue) drain(userID int64) {
	defer q.wg.Done()
	for {
		q.mu.Lock()
		jobs := q.pending[userID]
		if len(jobs) == 0 {
			delete(q.pending, userID)
			q.mu.Unlock()
			return
		}
		job := jobs[0]
		q.pending[userID] = jobs[1:]
		q.mu.Unlock()

		run(userID, job)
	}
}

func run(userID int64, job func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic while handling update", "user_id", userID, "panic", r)
		}
	}()
	job()
}
