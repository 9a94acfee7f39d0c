package util

import "sync"

// SerialQueue runs submitted tasks one at a time in submission order on a
// background goroutine. Submit never blocks and the goroutine exits once
// the queue is drained.
type SerialQueue struct {
	mutex   sync.Mutex
	pending []func()
	running bool
}

func (q *SerialQueue) Submit(task func()) {
	q.mutex.Lock()
	defer q.mutex.Unlock()

	q.pending = append(q.pending, task)

	if !q.running {
		q.running = true
		go q.drain()
	}
}

func (q *SerialQueue) drain() {
	for {
		q.mutex.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.mutex.Unlock()
			return
		}

		task := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mutex.Unlock()

		task()
	}
}
