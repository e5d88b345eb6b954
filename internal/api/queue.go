package api

import "sync"

// refreshResult is the shared outcome of a token refresh, delivered to
// every request that was queued behind it.
type refreshResult struct {
	token string
	err   error
}

// refreshQueue serializes token refresh across concurrently failing
// requests. The first caller to Begin becomes the leader and performs
// the refresh; every later caller enqueues and awaits the leader's
// outcome. Invariant: at most one refresh is in flight at any time.
type refreshQueue struct {
	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshResult
}

func newRefreshQueue() *refreshQueue {
	return &refreshQueue{}
}

// Begin claims the refresh slot. The leader receives leader=true and a
// nil channel; it must call Finish exactly once. Followers receive a
// buffered channel that Finish will deliver the shared result on.
func (q *refreshQueue) Begin() (leader bool, wait <-chan refreshResult) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.refreshing {
		q.refreshing = true
		return true, nil
	}

	ch := make(chan refreshResult, 1)
	q.waiters = append(q.waiters, ch)
	return false, ch
}

// Finish drains the queue: delivers the outcome to every waiter and
// releases the refresh slot. Channels are buffered, so delivery never
// blocks on a waiter that gave up.
func (q *refreshQueue) Finish(token string, err error) {
	q.mu.Lock()
	waiters := q.waiters
	q.waiters = nil
	q.refreshing = false
	q.mu.Unlock()

	for _, ch := range waiters {
		ch <- refreshResult{token: token, err: err}
	}
}

// Pending returns the number of queued waiters. Used by logging and
// tests.
func (q *refreshQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiters)
}

// Refreshing reports whether a refresh is currently in flight.
func (q *refreshQueue) Refreshing() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.refreshing
}
