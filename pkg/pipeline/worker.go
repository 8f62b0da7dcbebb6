package pipeline

import (
	"context"
	"sync"
)

// WorkerPool drains the job queue with a fixed number of goroutines. Pool
// size is the service's bound on simultaneously executing extractions.
type WorkerPool struct {
	workers    int
	queue      <-chan *job
	workerFunc func(context.Context, *job)
	wg         sync.WaitGroup
}

func NewWorkerPool(workers int, queue <-chan *job, workerFunc func(context.Context, *job)) *WorkerPool {
	return &WorkerPool{
		workers:    workers,
		queue:      queue,
		workerFunc: workerFunc,
	}
}

func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx)
	}
}

func (wp *WorkerPool) Wait() {
	wp.wg.Wait()
}

func (wp *WorkerPool) worker(ctx context.Context) {
	defer wp.wg.Done()

	for {
		select {
		case j, ok := <-wp.queue:
			if !ok {
				return
			}
			wp.workerFunc(ctx, j)

		case <-ctx.Done():
			return
		}
	}
}
