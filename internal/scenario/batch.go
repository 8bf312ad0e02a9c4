package scenario

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"faultline/internal/errhandle"
	"faultline/internal/trace"
)

// Options are shared by every run in a batch. Tracer and Journal must be
// safe for concurrent use.
type Options struct {
	Tracer   trace.Tracer
	Journal  errhandle.Recorder
	Defaults ConfigDecl // applied to every scenario before it is built
}

// RunAll loads, builds and executes the scenarios at paths in parallel.
// Results are in input order. A scenario that fails to load or build gets a
// result with Err set; the returned error is only the context's.
func RunAll(ctx context.Context, paths []string, jobs int, opts Options) ([]*Result, error) {
	results := make([]*Result, len(paths))
	if len(paths) == 0 {
		return results, nil
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := runFile(gctx, path, opts)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				res = &Result{Path: path, Name: path, Err: err}
			}
			// each goroutine owns results[i]
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func runFile(ctx context.Context, path string, opts Options) (*Result, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	f.ApplyDefaults(opts.Defaults)
	run, err := f.Build()
	if err != nil {
		return nil, err
	}
	run.WithTracer(opts.Tracer)
	if opts.Journal != nil {
		run.WithJournal(opts.Journal)
	}
	return run.Execute(ctx, nil)
}
