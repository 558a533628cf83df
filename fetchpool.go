package tinvest

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// FetchPool runs independent fetches against one external host with a
// bounded number of workers, a fixed delay between requests to the host, a
// per-attempt timeout and bounded retries with exponential backoff.
//
// A key whose fetch exhausts all retries is skipped and logged; it never
// fails the whole run.
type FetchPool struct {
	Workers int           // concurrent workers; 1 serializes everything
	Delay   time.Duration // minimal delay between two requests to the host
	Timeout time.Duration // per-attempt timeout
	Retries int           // attempts after the first one
	Backoff time.Duration // initial backoff, doubled after each failure
}

// DefaultFetchPool is a conservative setting for scraped sources.
func DefaultFetchPool() FetchPool {
	return FetchPool{
		Workers: 4,
		Delay:   500 * time.Millisecond,
		Timeout: 30 * time.Second,
		Retries: 3,
		Backoff: time.Second,
	}
}

// Run fetches every key and returns the keys that permanently failed.
// Fetches for different keys run in parallel; the shared limiter keeps the
// aggregate request rate to the host below one per Delay.
func (p FetchPool) Run(ctx context.Context, keys []string, fetch func(ctx context.Context, key string) error) (failed []string) {
	workers := p.Workers
	if workers <= 0 {
		workers = 1
	}
	limiter := rate.NewLimiter(rate.Every(p.Delay), 1)

	var mu sync.Mutex
	var wg sync.WaitGroup
	tasks := make(chan string)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range tasks {
				if err := p.fetchOne(ctx, limiter, key, fetch); err != nil {
					log.Printf("warning: skipping %q: %v", key, err)
					mu.Lock()
					failed = append(failed, key)
					mu.Unlock()
				}
			}
		}()
	}

	for _, key := range keys {
		tasks <- key
	}
	close(tasks)
	wg.Wait()
	return failed
}

func (p FetchPool) fetchOne(ctx context.Context, limiter *rate.Limiter, key string, fetch func(ctx context.Context, key string) error) error {
	backoff := p.Backoff
	var err error
	for attempt := 0; attempt <= p.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
			backoff *= 2
		}
		if err = limiter.Wait(ctx); err != nil {
			return err
		}

		attemptCtx := ctx
		if p.Timeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, p.Timeout)
			err = fetch(attemptCtx, key)
			cancel()
		} else {
			err = fetch(attemptCtx, key)
		}
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return err
}
