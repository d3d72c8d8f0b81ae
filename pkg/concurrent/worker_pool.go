package concurrent

import "sync"

// WorkerPool runs a fixed number of workers over a buffered job queue. Usage:
//
//	workers := NewWorkerPool[T, G](n, len(items))
//	for _, it := range items { workers.AddJob(it) }
//	workers.Close()
//	workers.Start(fn)
//	workers.Wait()
//	for res := range workers.CollectResults() { ... }
type WorkerPool[T any, G any] struct {
	numWorkers int
	jobQueue   chan Job[T]
	results    chan G
	wg         sync.WaitGroup
	nextID     int
}

func NewWorkerPool[T any, G any](numWorkers, jobCount int) *WorkerPool[T, G] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &WorkerPool[T, G]{
		numWorkers: numWorkers,
		jobQueue:   make(chan Job[T], jobCount),
		results:    make(chan G, jobCount),
	}
}

// AddJob must not be called after Close, and no more than jobCount times before Start.
func (wp *WorkerPool[T, G]) AddJob(item T) {
	wp.jobQueue <- Job[T]{ID: wp.nextID, JobItem: item}
	wp.nextID++
}

func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobQueue)
}

func (wp *WorkerPool[T, G]) Start(fn JobFunc[T, G]) {
	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(fn)
	}
}

func (wp *WorkerPool[T, G]) worker(fn JobFunc[T, G]) {
	defer wp.wg.Done()
	for job := range wp.jobQueue {
		wp.results <- fn(job.JobItem)
	}
}

// Wait blocks until every job has run, then closes the result channel.
func (wp *WorkerPool[T, G]) Wait() {
	wp.wg.Wait()
	close(wp.results)
}

func (wp *WorkerPool[T, G]) CollectResults() <-chan G {
	return wp.results
}
