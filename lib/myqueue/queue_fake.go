package myqueue

import (
	"context"
	"sync"
)

// FakeQueue remembers enqueued tasks so they can be inspected or replayed.
type FakeQueue struct {
	sync.Mutex
	Tasks []Task
}

func NewFakeQueue() *FakeQueue {
	return &FakeQueue{}
}

func (q *FakeQueue) Enqueue(c context.Context, task Task) error {
	q.Lock()
	defer q.Unlock()

	q.Tasks = append(q.Tasks, task)

	return nil
}
