package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/signalnine/puzzlebench/internal/bench"
	"github.com/signalnine/puzzlebench/internal/config"
	"github.com/signalnine/puzzlebench/internal/executil"
	"github.com/signalnine/puzzlebench/internal/registry"
	"github.com/signalnine/puzzlebench/internal/report"
	"github.com/signalnine/puzzlebench/internal/sandbox"
)

// Invoker runs one solution binary once. Process and container
// execution both satisfy it.
type Invoker interface {
	Run(ctx context.Context, path string) *executil.Outcome
}

type Options struct {
	// Bench selects calibrated benchmark mode over a single
	// verification run per solution.
	Bench bool
	// Iterations overrides automatic derivation when positive.
	Iterations int
	// Warmup and TimeLimit override the configured budgets when
	// non-nil. An explicit zero warmup disables the warmup phase.
	Warmup    *time.Duration
	TimeLimit *time.Duration
	// Args are forwarded verbatim to every solution invocation.
	Args []string
	// Progress, when non-nil, receives a line per started solution.
	Progress io.Writer
}

// Run executes every solution and aggregates their summaries into one
// report. Solutions run concurrently up to cfg.Parallel; completed
// summaries flow through a single aggregation goroutine, so the report
// is never written from more than one goroutine. A cancelled ctx stops
// scheduling, kills in-flight children, and yields a partial report
// marked incomplete.
func Run(ctx context.Context, cfg *config.Config, opts Options, solutions []registry.Solution) *report.Report {
	summaries := make(chan report.Summary)
	rep := &report.Report{}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for s := range summaries {
			rep.Add(s)
		}
	}()

	jobs := make([]Job, 0, len(solutions))
	for _, sol := range solutions {
		sol := sol
		jobs = append(jobs, func() {
			if opts.Progress != nil {
				fmt.Fprintf(opts.Progress, "running %s\n", sol.ID())
			}
			summary, ok := runOne(ctx, cfg, opts, sol)
			if !ok {
				return
			}
			select {
			case summaries <- summary:
			case <-ctx.Done():
			}
		})
	}
	RunPool(ctx, cfg.Parallel, jobs)

	close(summaries)
	<-done

	if ctx.Err() != nil {
		rep.Incomplete = true
	}
	return rep
}

// runOne produces the summary for a single solution. Reports ok=false
// when the run was cut short by cancellation and no summary should be
// recorded.
func runOne(ctx context.Context, cfg *config.Config, opts Options, sol registry.Solution) (report.Summary, bool) {
	inv := newInvoker(cfg, opts.Args)

	if !opts.Bench {
		o := inv.Run(ctx, sol.Path)
		// A per-run timeout leaves the parent ctx alive and is a real
		// per-solution failure; a dead parent ctx means the whole run
		// was cut short and this outcome must not count against it.
		if ctx.Err() != nil {
			return report.Summary{}, false
		}
		return report.SingleRun(sol.Project, sol.Name, o), true
	}

	run := func(ctx context.Context) *executil.Outcome {
		return inv.Run(ctx, sol.Path)
	}
	bo := bench.Options{
		Warmup:          cfg.Bench.Warmup(),
		TimeLimit:       cfg.Bench.TimeLimit(),
		FloorResolution: cfg.Bench.FloorResolution(),
		MaxIterations:   cfg.Bench.MaxIterations,
		Iterations:      opts.Iterations,
		CheckAnswer:     cfg.Bench.CheckAnswers,
	}
	if opts.Warmup != nil {
		bo.Warmup = *opts.Warmup
	}
	if opts.TimeLimit != nil {
		bo.TimeLimit = *opts.TimeLimit
	}
	result, err := bench.Measure(ctx, run, bo)
	if err != nil {
		if ctx.Err() != nil {
			return report.Summary{}, false
		}
		return failedSummary(sol, err), true
	}
	return report.Measured(sol.Project, sol.Name, result.Answer, result.Durations), true
}

func failedSummary(sol registry.Solution, err error) report.Summary {
	var failure *bench.Failure
	if errors.As(err, &failure) {
		return report.Failed(sol.Project, sol.Name, string(failure.Outcome.Status), err.Error())
	}
	return report.Failed(sol.Project, sol.Name, string(executil.StatusFailed), err.Error())
}

func newInvoker(cfg *config.Config, args []string) Invoker {
	timeout := cfg.Bench.RunTimeout()
	if cfg.Bench.Isolation == config.IsolationContainer {
		return &sandbox.Driver{
			Image:       cfg.Container.Image,
			CPULimit:    cfg.Container.CPULimit,
			MemoryLimit: cfg.Container.MemoryLimit,
			Timeout:     timeout,
			Args:        args,
		}
	}
	return &executil.Driver{Timeout: timeout, Args: args}
}
