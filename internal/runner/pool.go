package runner

import (
	"context"
	"sync"
)

type Job func()

// RunPool executes jobs with at most maxWorkers concurrently. Once ctx
// is cancelled no new jobs are started; in-flight jobs are expected to
// observe ctx themselves.
func RunPool(ctx context.Context, maxWorkers int, jobs []Job) {
	if maxWorkers < 1 {
		maxWorkers = 1
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, maxWorkers)

	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(j Job) {
			defer wg.Done()
			defer func() { <-sem }()
			j()
		}(job)
	}
	wg.Wait()
}
