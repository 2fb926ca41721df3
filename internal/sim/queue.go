package sim

import "sync"

// SeedRequest is a brush stroke in grid coordinates.
type SeedRequest struct {
	X, Y, Radius float64
}

// SeedQueue collects brush input from any goroutine. The owner of the engine
// drains it between steps, so the engine keeps a single writer.
type SeedQueue struct {
	mu      sync.Mutex
	pending []SeedRequest
}

func NewSeedQueue() *SeedQueue {
	return &SeedQueue{pending: make([]SeedRequest, 0, 16)}
}

func (q *SeedQueue) Push(x, y, radius float64) {
	q.mu.Lock()
	q.pending = append(q.pending, SeedRequest{X: x, Y: y, Radius: radius})
	q.mu.Unlock()
}

func (q *SeedQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Drain applies queued requests in arrival order and returns how many ran.
func (q *SeedQueue) Drain(e Engine) int {
	q.mu.Lock()
	batch := q.pending
	q.pending = make([]SeedRequest, 0, cap(batch))
	q.mu.Unlock()

	for _, r := range batch {
		e.Seed(r.X, r.Y, r.Radius)
	}
	return len(batch)
}
