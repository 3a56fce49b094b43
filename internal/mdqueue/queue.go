// Package mdqueue implements the bounded multi-producer, single-consumer
// queue that carries MDResponse messages from ingestion tasks (and
// snapshot re-feeds) to the single reconciliation consumer. Capacity
// defaults to 100; producers use a non-blocking try-send so
// a full queue drops the newest message rather than blocking the producer.
package mdqueue

import (
	"sync"

	"github.com/BullionBear/depthsync/internal/depthbook"
)

// DefaultCapacity is the queue's default bound.
const DefaultCapacity = 100

// Queue is a bounded MPSC channel of MDResponse messages.
type Queue struct {
	ch     chan depthbook.MDResponse
	mu     sync.Mutex
	closed bool
}

// New builds a queue with the given capacity.
func New(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{ch: make(chan depthbook.MDResponse, capacity)}
}

// TrySend attempts a non-blocking enqueue. It returns (true, nil) on
// success, (false, nil) if the queue is full (caller should log and drop),
// and (false, ErrClosed) if the queue has been closed (caller should
// terminate).
func (q *Queue) TrySend(msg depthbook.MDResponse) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false, ErrClosed
	}

	select {
	case q.ch <- msg:
		return true, nil
	default:
		return false, nil
	}
}

// Recv blocks until a message is available or the queue is closed, in
// which case ok is false.
func (q *Queue) Recv() (msg depthbook.MDResponse, ok bool) {
	msg, ok = <-q.ch
	return
}

// Close closes the queue. It is idempotent. Once closed, producers'
// TrySend calls return ErrClosed and the consumer's Recv drains whatever
// was buffered before returning ok=false.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.closed = true
	close(q.ch)
}
