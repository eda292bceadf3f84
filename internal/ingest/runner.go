package ingest

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Reporter receives lifecycle callbacks from the runner. Calls may come
// from several goroutines at once.
type Reporter interface {
	OnRunStart(total int)
	OnImported(source string, res *Result)
	OnFailed(source string, err error)
	OnRunComplete(imported, failed int)
}

// Runner imports many sources with bounded concurrency.
type Runner struct {
	importer    *Importer
	concurrency int
}

// NewRunner creates a runner. concurrency below 1 means one at a time.
func NewRunner(importer *Importer, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{importer: importer, concurrency: concurrency}
}

// Run fetches and imports every source. A failing source is reported and
// skipped; Run returns an error only when the context ends or nothing at all
// could be imported.
func (r *Runner) Run(ctx context.Context, sources []Source, reporter Reporter) error {
	if reporter == nil {
		reporter = nopReporter{}
	}
	reporter.OnRunStart(len(sources))

	var (
		mu       sync.Mutex
		imported int
		failed   int
		lastErr  error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			res, err := r.importOne(gctx, src)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				lastErr = err
				reporter.OnFailed(src.Name(), err)
				return nil
			}
			imported++
			reporter.OnImported(src.Name(), res)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	reporter.OnRunComplete(imported, failed)
	if imported == 0 && failed > 0 {
		return fmt.Errorf("all %d sources failed, last error: %w", failed, lastErr)
	}
	return nil
}

func (r *Runner) importOne(ctx context.Context, src Source) (*Result, error) {
	box, err := src.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src.Name(), err)
	}
	return r.importer.Import(ctx, box)
}

type nopReporter struct{}

func (nopReporter) OnRunStart(int)             {}
func (nopReporter) OnImported(string, *Result) {}
func (nopReporter) OnFailed(string, error)     {}
func (nopReporter) OnRunComplete(int, int)     {}
