// Package bench turns a solution of unknown cost into a bounded-time
// measurement: probe once, derive an iteration count from the time
// budget, warm up, then record exactly that many repetitions.
package bench

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/signalnine/puzzlebench/internal/executil"
)

// Runner executes one repetition of a solution. Implementations are a
// process spawn, a container run, or an in-process function call.
type Runner func(ctx context.Context) *executil.Outcome

var (
	ErrCalibrationAborted = errors.New("calibration aborted")
	ErrPartialBenchmark   = errors.New("partial benchmark discarded")
	ErrAnswerMismatch     = errors.New("answer mismatch")
)

type Options struct {
	Warmup          time.Duration
	TimeLimit       time.Duration
	FloorResolution time.Duration
	MaxIterations   int
	// Iterations, when positive, bypasses automatic derivation.
	Iterations  int
	CheckAnswer bool
}

// Plan is the derived per-solution measurement plan.
type Plan struct {
	ProbeCost  time.Duration
	Iterations int
	Warmup     time.Duration
	TimeLimit  time.Duration
}

// Result holds the measured sample. Durations has exactly
// Plan.Iterations entries; warmup timings never appear in it.
type Result struct {
	Plan      Plan
	Durations []time.Duration
	Answer    string
}

// Failure describes a failed calibration phase and carries the outcome
// that caused it. Unwraps to the matching sentinel.
type Failure struct {
	Phase   string
	Outcome *executil.Outcome
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s run %s: %s", f.Phase, f.Outcome.Status, f.Outcome.Err)
}

func (f *Failure) Unwrap() error {
	if f.Phase == "measure" {
		return ErrPartialBenchmark
	}
	return ErrCalibrationAborted
}

// plan derives the iteration count from the probed single-run cost:
// floor(timeLimit/cost) clamped to [1, maxIterations], with cost held
// at the floor resolution so near-zero runs cannot explode the count.
// A probe cost above the time limit degrades to a single measured run.
func (o Options) plan(probe time.Duration) Plan {
	n := o.Iterations
	if n < 1 {
		cost := probe
		if cost < o.FloorResolution {
			cost = o.FloorResolution
		}
		n = int(o.TimeLimit / cost)
		if n < 1 {
			n = 1
		}
		if o.MaxIterations > 0 && n > o.MaxIterations {
			n = o.MaxIterations
		}
	}
	return Plan{
		ProbeCost:  probe,
		Iterations: n,
		Warmup:     o.Warmup,
		TimeLimit:  o.TimeLimit,
	}
}

// Measure runs probe, warmup and measurement strictly in that order.
// Any failed repetition fails the whole benchmark for this solution:
// the caller gets either a complete sample or nothing.
func Measure(ctx context.Context, run Runner, opts Options) (*Result, error) {
	probe := run(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !probe.OK() {
		return nil, &Failure{Phase: "probe", Outcome: probe}
	}

	plan := opts.plan(probe.Duration)

	if opts.Warmup > 0 {
		deadline := time.Now().Add(opts.Warmup)
		for time.Now().Before(deadline) {
			o := run(ctx)
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if !o.OK() {
				return nil, &Failure{Phase: "warmup", Outcome: o}
			}
		}
	}

	result := &Result{
		Plan:      plan,
		Durations: make([]time.Duration, 0, plan.Iterations),
		Answer:    probe.Answer(),
	}
	for i := 0; i < plan.Iterations; i++ {
		o := run(ctx)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !o.OK() {
			return nil, &Failure{Phase: "measure", Outcome: o}
		}
		if opts.CheckAnswer && i == 0 && o.Answer() != probe.Answer() {
			return nil, fmt.Errorf("%w: probe printed %q, measured run printed %q",
				ErrAnswerMismatch, probe.Answer(), o.Answer())
		}
		result.Durations = append(result.Durations, o.Duration)
	}
	return result, nil
}
