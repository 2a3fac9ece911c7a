package notification

import (
	"context"
	"sync"
)

// DefaultQueueSize bounds how many undelivered toasts a panel keeps.
const DefaultQueueSize = 8

// Queue buffers notifications until the next render drains them.
// When full the oldest notification is dropped.
type Queue struct {
	mu    sync.Mutex
	items []Notification
	size  int
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{size: size}
}

func (q *Queue) Notify(_ context.Context, _ string, n Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == q.size {
		q.items = q.items[1:]
	}
	q.items = append(q.items, n)
}

// Drain returns the buffered notifications oldest first and empties the queue.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.items
	q.items = nil
	return items
}

// Len reports how many notifications are waiting.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Fanout delivers each notification to every sink in order.
type Fanout []Sink

func (f Fanout) Notify(ctx context.Context, userID string, n Notification) {
	for _, s := range f {
		if s != nil {
			s.Notify(ctx, userID, n)
		}
	}
}
