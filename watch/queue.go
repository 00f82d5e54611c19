package watch

import (
	"path/filepath"
	"sync"
)

// PathQueue runs work one call at a time per path. Calls for different paths
// run concurrently.
type PathQueue struct {
	mu    sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	mu   sync.Mutex
	refs int
}

// NewPathQueue returns an empty queue.
func NewPathQueue() *PathQueue {
	return &PathQueue{locks: make(map[string]*pathLock)}
}

// Do runs fn once every earlier call for the same path has returned.
func (q *PathQueue) Do(path string, fn func() error) error {
	key := filepath.Clean(path)

	q.mu.Lock()
	l, ok := q.locks[key]
	if !ok {
		l = &pathLock{}
		q.locks[key] = l
	}
	l.refs++
	q.mu.Unlock()

	l.mu.Lock()
	defer func() {
		l.mu.Unlock()
		q.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(q.locks, key)
		}
		q.mu.Unlock()
	}()

	return fn()
}

// Len returns the number of paths with work queued or running.
func (q *PathQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.locks)
}
