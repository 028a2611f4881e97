package pipeline

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/dgallion1/docread/internal/extractor"
)

// Extractor is the single-document operation the runner fans out.
type Extractor interface {
	Extract(ctx context.Context, req extractor.DocumentRequest) extractor.Result
}

// Runner processes a batch of documents with a bounded number of workers.
type Runner struct {
	extractor Extractor
	workers   int
	log       *slog.Logger

	// OnResult, if set, is called once per finished request in input order.
	OnResult func(extractor.Result)
}

// NewRunner returns a Runner. workers <= 1 processes documents one by one.
func NewRunner(ex Extractor, workers int, log *slog.Logger) *Runner {
	if workers <= 0 {
		workers = 1
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{extractor: ex, workers: workers, log: log}
}

// Run extracts every request and returns results in input order. A cancelled
// context stops dispatching; requests never started are reported as failed.
func (r *Runner) Run(ctx context.Context, reqs []extractor.DocumentRequest) []extractor.Result {
	results := make([]extractor.Result, len(reqs))
	done := make([]chan struct{}, len(reqs))
	for i := range done {
		done[i] = make(chan struct{})
	}

	queue := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(r.workers, max(len(reqs), 1)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				results[i] = r.extractor.Extract(ctx, reqs[i])
				close(done[i])
			}
		}()
	}

	go func() {
		defer close(queue)
		for i := range reqs {
			select {
			case <-ctx.Done():
				for j := i; j < len(reqs); j++ {
					results[j] = extractor.Result{
						Request:  reqs[j],
						Error:    ctx.Err().Error(),
						Attempts: []extractor.Attempt{},
					}
					close(done[j])
				}
				return
			case queue <- i:
			}
		}
	}()

	for i := range reqs {
		<-done[i]
		if r.OnResult != nil {
			r.OnResult(results[i])
		}
	}
	wg.Wait()

	succeeded := 0
	for _, res := range results {
		if res.Succeeded {
			succeeded++
		}
	}
	r.log.Info("batch complete", "documents", len(reqs), "succeeded", succeeded, "workers", r.workers)
	return results
}
