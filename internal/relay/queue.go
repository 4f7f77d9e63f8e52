package relay

import (
	"fmt"
	"sync"
)

// DropPolicy decides which event a full backup queue gives up.
type DropPolicy int

const (
	// DropOldest evicts the head to make room for the new event.
	DropOldest DropPolicy = iota
	// DropNewest keeps the queue as is and discards the new event.
	DropNewest
)

func (p DropPolicy) String() string {
	if p == DropNewest {
		return "newest"
	}
	return "oldest"
}

// ParseDropPolicy parses "oldest" or "newest".
func ParseDropPolicy(s string) (DropPolicy, error) {
	switch s {
	case "oldest", "":
		return DropOldest, nil
	case "newest":
		return DropNewest, nil
	default:
		return DropOldest, fmt.Errorf("relay: unknown drop policy %q", s)
	}
}

// Queue is a bounded FIFO of messages awaiting redelivery. It is safe for
// concurrent use.
type Queue struct {
	mu      sync.Mutex
	buf     []Message
	head    int
	size    int
	policy  DropPolicy
	dropped uint64
}

// NewQueue creates a queue holding at most capacity messages.
func NewQueue(capacity int, policy DropPolicy) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{buf: make([]Message, capacity), policy: policy}
}

// Push appends m. If the queue is full one message is discarded per the
// drop policy and returned with ok set.
func (q *Queue) Push(m Message) (dropped Message, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.size == len(q.buf) {
		q.dropped++
		if q.policy == DropNewest {
			return m, true
		}
		dropped, ok = q.buf[q.head], true
		q.buf[q.head] = Message{}
		q.head = (q.head + 1) % len(q.buf)
		q.size--
	}
	q.buf[(q.head+q.size)%len(q.buf)] = m
	q.size++
	return dropped, ok
}

// Peek returns the head without removing it.
func (q *Queue) Peek() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.size == 0 {
		return Message{}, false
	}
	return q.buf[q.head], true
}

// Pop removes the head.
func (q *Queue) Pop() (Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.size == 0 {
		return Message{}, false
	}
	m := q.buf[q.head]
	q.buf[q.head] = Message{}
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return m, true
}

// Len returns the number of queued messages.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Cap returns the capacity.
func (q *Queue) Cap() int { return len(q.buf) }

// Dropped returns how many messages the queue has discarded.
func (q *Queue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

// Snapshot returns the queued messages in order.
func (q *Queue) Snapshot() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Message, q.size)
	for i := range q.size {
		out[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	return out
}
