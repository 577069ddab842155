// Package solution lets a puzzle solution binary wire its entrypoint
// to the harness invocation contract once and gain the run and
// benchmark modes for free:
//
//	func main() {
//		solution.Register("y2022", "d01", solve)
//		solution.Main()
//	}
//
// The registered function runs in-process, so benchmark repetitions
// skip process-spawn overhead entirely. Stateful solutions that cannot
// tolerate being re-run in one process should be benchmarked through
// the harness's process isolation instead.
package solution

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/signalnine/puzzlebench/internal/bench"
	"github.com/signalnine/puzzlebench/internal/executil"
	"github.com/signalnine/puzzlebench/internal/report"
)

// Func computes the solution's answer.
type Func func(ctx context.Context) (string, error)

type entry struct {
	project string
	name    string
	fn      Func
}

var registered *entry

// Register binds fn as this binary's entrypoint. Call it exactly once,
// before Main.
func Register(project, name string, fn Func) {
	registered = &entry{project: project, name: name, fn: fn}
}

// Main parses the standard solution flags, runs the registered
// entrypoint and exits: 0 on success, 1 on failure.
func Main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	if registered == nil {
		return fmt.Errorf("no solution registered")
	}

	fs := flag.NewFlagSet(registered.name, flag.ContinueOnError)
	benchMode := fs.Bool("bench", false, "benchmark instead of a single run")
	jsonOut := fs.Bool("json", false, "emit the structured report")
	verbose := fs.Bool("verbose", false, "show spread statistics")
	warmup := fs.Duration("warmup", 400*time.Millisecond, "warmup budget")
	timeLimit := fs.Duration("time-limit", 100*time.Millisecond, "measurement time budget")
	iterations := fs.Int("iterations", 0, "fixed iteration count, bypasses calibration")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()

	if !*benchMode {
		answer, err := registered.fn(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, answer)
		return nil
	}

	result, err := bench.Measure(ctx, inProcess(registered.fn), bench.Options{
		Warmup:          *warmup,
		TimeLimit:       *timeLimit,
		FloorResolution: time.Microsecond,
		MaxIterations:   1_000_000,
		Iterations:      *iterations,
	})
	if err != nil {
		return err
	}

	rep := &report.Report{}
	rep.Add(report.Measured(registered.project, registered.name, result.Answer, result.Durations))

	format := report.FormatTable
	if *jsonOut {
		format = report.FormatJSON
	}
	return report.Render(stdout, rep, report.RenderOpts{Format: format, Verbose: *verbose})
}

// inProcess adapts the entrypoint to a bench repetition: one function
// call, timed, with the answer captured as the run's output.
func inProcess(fn Func) bench.Runner {
	return func(ctx context.Context) *executil.Outcome {
		start := time.Now()
		answer, err := fn(ctx)
		elapsed := time.Since(start)
		if err != nil {
			return &executil.Outcome{
				Status:   executil.StatusFailed,
				Err:      err.Error(),
				Duration: elapsed,
			}
		}
		return &executil.Outcome{
			Stdout:   []byte(answer),
			Status:   executil.StatusOK,
			Duration: elapsed,
		}
	}
}
