package notify

import "sync"

// WorkerPool runs queued jobs on a fixed number of goroutines. Used to
// keep notification sends off the request path.
type WorkerPool struct {
	jobs       chan func()
	wg         sync.WaitGroup
	stopOnce   sync.Once
	stopSignal chan struct{}
}

func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	wp := &WorkerPool{
		jobs:       make(chan func(), workers*2),
		stopSignal: make(chan struct{}),
	}

	for i := 0; i < workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}

	return wp
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case <-wp.stopSignal:
			return
		case job, ok := <-wp.jobs:
			if !ok {
				return
			}
			job()
		}
	}
}

// Submit queues a job. Jobs submitted after Stop are dropped.
func (wp *WorkerPool) Submit(job func()) {
	select {
	case <-wp.stopSignal:
		return
	default:
	}
	select {
	case <-wp.stopSignal:
	case wp.jobs <- job:
	}
}

// Stop drains the queue and waits for in-flight jobs.
func (wp *WorkerPool) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.stopSignal)
		close(wp.jobs)
	})
	wp.wg.Wait()
}
