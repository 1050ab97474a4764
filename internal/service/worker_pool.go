package service

import (
	"sync"
)

// workerPool fans per-user jobs out to a bounded set of goroutines. With one
// worker the batch processes users strictly sequentially.
type workerPool struct {
	jobs     chan func()
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func newWorkerPool(workers int) *workerPool {
	if workers < 1 {
		workers = 1
	}
	wp := &workerPool{
		jobs: make(chan func(), workers*2),
	}
	for i := 0; i < workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
	return wp
}

func (wp *workerPool) worker() {
	defer wp.wg.Done()
	for job := range wp.jobs {
		job()
	}
}

// Submit blocks when all workers are busy and the buffer is full, which
// naturally throttles user enumeration to processing speed.
func (wp *workerPool) Submit(job func()) {
	wp.jobs <- job
}

// Wait drains queued jobs and blocks until all workers exit. Submit must not
// be called after Wait.
func (wp *workerPool) Wait() {
	wp.stopOnce.Do(func() {
		close(wp.jobs)
	})
	wp.wg.Wait()
}
