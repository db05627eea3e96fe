package sync

import (
	"context"
	"sync"

	"github.com/sdejongh/copypix/pkg/models"
)

// runParallel reconciles candidates on a pool of workers. Events are
// yielded on the calling goroutine in completion order. Tasks are grouped
// by folded destination name so no two workers touch the same destination.
// Work already started always finishes: stopping only prevents new
// candidates from being picked up.
func (b *Batch) runParallel(ctx context.Context, candidates []*models.CandidateFile, workers int, yield func(models.Event) bool) bool {
	stopCtx, stop := context.WithCancel(ctx)
	defer stop()

	tasks := groupTasks(candidates)
	if workers > len(tasks) {
		workers = len(tasks)
	}

	taskQueue := make(chan *copyTask)
	results := make(chan *models.CandidateFile, workers)

	// Producer
	go func() {
		defer close(taskQueue)
		for _, task := range tasks {
			select {
			case <-stopCtx.Done():
				return
			case taskQueue <- task:
			}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range taskQueue {
				for _, c := range task.candidates {
					if stopCtx.Err() != nil {
						break
					}
					b.engine.policy.Reconcile(ctx, c)
					results <- c
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	index := 0
	stopped := false
	for c := range results {
		if stopped {
			continue
		}
		index++
		b.engine.logOutcome(ctx, c)
		if !yield(models.NewEvent(index, len(candidates), c)) {
			stopped = true
			stop()
		}
	}

	return !stopped && index == len(candidates)
}
