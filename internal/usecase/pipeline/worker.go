package pipeline

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"findoc-pipeline/internal/domain/document"
)

// sourceErrBackoff paces the loop when the event source itself misbehaves.
const sourceErrBackoff = 1 * time.Second

// RunWorkers runs n independent workers consuming file events until ctx is
// cancelled. Workers share nothing in memory; all coordination goes through
// the processing ledger.
func RunWorkers(ctx context.Context, n int, src document.Source, c *Coordinator) {
	if n <= 0 {
		n = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			runWorker(ctx, worker, src, c)
		}(i)
	}
	wg.Wait()
}

func runWorker(ctx context.Context, worker int, src document.Source, c *Coordinator) {
	for {
		ev, err := src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("worker %d: source: %v", worker, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(sourceErrBackoff):
			}
			continue
		}

		switch err := c.ProcessFile(ctx, ev); {
		case err == nil:
		case errors.Is(err, ErrRetryLater):
			if rqErr := src.Requeue(ctx, ev); rqErr != nil {
				log.Printf("worker %d: requeue %s/%s: %v", worker, ev.DocumentType, ev.Filename, rqErr)
			}
		default:
			log.Printf("worker %d: process %s/%s: %v", worker, ev.DocumentType, ev.Filename, err)
		}
	}
}
