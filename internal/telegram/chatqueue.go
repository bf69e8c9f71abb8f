package telegram

import (
	"sync"

	"github.com/alitto/pond/v2"
)

const dispatchWorkers = 16

// chatQueue runs submitted jobs one at a time per chat, in submission order.
// Different chats are drained concurrently on a bounded worker pool.
type chatQueue struct {
	pool pond.Pool

	mu      sync.Mutex
	pending map[int64][]func()
	wg      sync.WaitGroup
}

func newChatQueue() *chatQueue {
	return &chatQueue{
		pool:    pond.NewPool(dispatchWorkers),
		pending: make(map[int64][]func()),
	}
}

// Submit appends job to the chat's queue, scheduling a drainer when the chat
// has none.
func (q *chatQueue) Submit(chatID int64, job func()) {
	q.mu.Lock()
	defer q.mu.Unlock()

	jobs, running := q.pending[chatID]
	q.pending[chatID] = append(jobs, job)
	if !running {
		q.wg.Add(1)
		q.pool.Submit(func() { q.drain(chatID) })
	}
}

func (q *chatQueue) drain(chatID int64) {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		jobs := q.pending[chatID]
		if len(jobs) == 0 {
			delete(q.pending, chatID)
			q.mu.Unlock()
			return
		}
		job := jobs[0]
		q.pending[chatID] = jobs[1:]
		q.mu.Unlock()

		job()
	}
}

// Wait blocks until every submitted job has finished.
func (q *chatQueue) Wait() {
	q.wg.Wait()
}
