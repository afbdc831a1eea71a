package async

import (
	"context"
	"errors"
	"sync"
)

type EachAsyncIteratee[T any] func(context.Context, T) error

// WorkerPool calls fn for every item with at most concurrency calls in flight and
// waits for all of them. A failing call does not stop the others; all errors are
// joined into the result.
func WorkerPool[T any](ctx context.Context, concurrency int, items []T, fn EachAsyncIteratee[T]) error {
	if concurrency < 1 {
		concurrency = 1
	}

	semaphore := make(chan struct{}, concurrency)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for _, item := range items {
		semaphore <- struct{}{}
		wg.Add(1)

		go func(item T) {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			if err := fn(ctx, item); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(item)
	}

	wg.Wait()

	return errors.Join(errs...)
}
