package analyzer

import (
	"errors"
	"runtime"
	"sync"
)

// ErrPoolClosed is returned when submitting to a closed pool
var ErrPoolClosed = errors.New("worker pool is closed")

// WorkerPool manages concurrent analysis jobs
type WorkerPool struct {
	workers  int
	jobQueue chan func()
	jobs     sync.WaitGroup
	running  sync.WaitGroup
	start    sync.Once
	mu       sync.RWMutex
	closed   bool
}

// NewWorkerPool creates a new worker pool with the specified number of workers
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return &WorkerPool{
		workers:  workers,
		jobQueue: make(chan func(), workers*2),
	}
}

// Workers returns the number of workers
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

// Start initializes and starts all workers in the pool
func (wp *WorkerPool) Start() {
	wp.start.Do(func() {
		wp.running.Add(wp.workers)
		for i := 0; i < wp.workers; i++ {
			go wp.worker()
		}
	})
}

// worker processes jobs from the job queue
func (wp *WorkerPool) worker() {
	defer wp.running.Done()
	for job := range wp.jobQueue {
		job()
	}
}

// Submit adds a job to the worker pool queue
func (wp *WorkerPool) Submit(job func()) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return ErrPoolClosed
	}

	wp.jobs.Add(1)
	wp.jobQueue <- func() {
		defer wp.jobs.Done()
		job()
	}
	return nil
}

// Wait waits for all submitted jobs to complete
func (wp *WorkerPool) Wait() {
	wp.jobs.Wait()
}

// Close stops accepting jobs, drains the queue and waits for workers to exit
func (wp *WorkerPool) Close() {
	wp.mu.Lock()
	if wp.closed {
		wp.mu.Unlock()
		return
	}
	wp.closed = true
	close(wp.jobQueue)
	wp.mu.Unlock()

	wp.running.Wait()
}
