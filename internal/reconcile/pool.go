package reconcile

import (
	"context"
	"sync"
)

// fanOut processes items on a fixed-size goroutine pool. The handler owns
// its own error handling; a failure on one item never affects its siblings.
func fanOut[T any](ctx context.Context, size int, items []T, handle func(context.Context, T)) {
	if len(items) == 0 {
		return
	}
	if size < 1 {
		size = 1
	}

	jobs := make(chan T, len(items))
	var wg sync.WaitGroup
	for i := 0; i < size; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				handle(ctx, item)
			}
		}()
	}

	for _, item := range items {
		jobs <- item
	}
	close(jobs)
	wg.Wait()
}
