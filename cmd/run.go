package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/signalnine/puzzlebench/internal/config"
	"github.com/signalnine/puzzlebench/internal/registry"
	"github.com/signalnine/puzzlebench/internal/report"
	"github.com/signalnine/puzzlebench/internal/runner"
	"github.com/spf13/cobra"
)

var (
	flagBench      bool
	flagVerbose    bool
	flagQuiet      bool
	flagJSON       bool
	flagWarmup     time.Duration
	flagTimeLimit  time.Duration
	flagIterations int
	flagParallel   int
	flagTimeout    time.Duration
	flagProject    string
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [names...] [-- solution args]",
		Short: "Run or benchmark discovered solutions",
		Long: `Run every discovered solution binary, or only the named ones.
With --bench each solution is calibrated first: one probe run derives an
iteration count that fits the time limit, a warmup phase absorbs
cold-start effects, and exactly that many repetitions are measured.
Arguments after -- are forwarded verbatim to each solution.`,
		RunE:         runSolutions,
		SilenceUsage: true,
	}
	cmd.Flags().BoolVar(&flagBench, "bench", false, "benchmark solutions instead of running them once")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "V", false, "show per-solution spread statistics")
	cmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "show only failures and totals")
	cmd.Flags().BoolVar(&flagJSON, "json", false, "emit the structured report")
	cmd.Flags().DurationVar(&flagWarmup, "warmup", 0, "warmup budget (default from config, 400ms)")
	cmd.Flags().DurationVar(&flagTimeLimit, "time-limit", 0, "measurement time budget (default from config, 100ms)")
	cmd.Flags().IntVar(&flagIterations, "iterations", 0, "fixed iteration count, bypasses calibration")
	cmd.Flags().IntVar(&flagParallel, "parallel", 0, "max concurrent solutions (default from config)")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "global run deadline (0 means none)")
	cmd.Flags().StringVarP(&flagProject, "project", "p", "", "restrict to one project")
	return cmd
}

func runSolutions(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if flagParallel > 0 {
		cfg.Parallel = flagParallel
	}
	quiet := flagQuiet || cfg.Production

	names := args
	var passthrough []string
	if at := cmd.ArgsLenAtDash(); at >= 0 {
		names = args[:at]
		passthrough = args[at:]
	}
	project := flagProject
	if project == "" {
		project = cfg.Solutions.DefaultProject
	}

	solutions, err := registry.Discover(cfg.Solutions.Dir)
	if err != nil {
		return err
	}
	solutions = registry.Filter(solutions, project, names)
	if len(solutions) == 0 {
		return fmt.Errorf("no solutions found under %s", cfg.Solutions.Dir)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	if flagTimeout > 0 {
		var cancel func()
		ctx, cancel = context.WithTimeout(ctx, flagTimeout)
		defer cancel()
	}

	opts := runner.Options{
		Bench:      flagBench,
		Iterations: flagIterations,
		Args:       passthrough,
	}
	// Budgets carry sub-millisecond precision, and an explicit
	// --warmup 0 means "no warmup" rather than "use the config".
	if cmd.Flags().Changed("warmup") {
		opts.Warmup = &flagWarmup
	}
	if cmd.Flags().Changed("time-limit") {
		opts.TimeLimit = &flagTimeLimit
	}
	if !flagJSON && !quiet {
		opts.Progress = os.Stdout
	}

	rep := runner.Run(ctx, cfg, opts, solutions)

	format := report.FormatTable
	if flagJSON {
		format = report.FormatJSON
	}
	if err := report.Render(os.Stdout, rep, report.RenderOpts{
		Format:  format,
		Quiet:   quiet,
		Verbose: flagVerbose && !quiet,
	}); err != nil {
		log.Printf("warning: rendering report: %v", err)
	}

	if rep.Total.Failures > 0 {
		return fmt.Errorf("%d of %d solutions failed", rep.Total.Failures, rep.Total.Solutions)
	}
	if rep.Incomplete {
		return fmt.Errorf("run interrupted before all solutions completed")
	}
	return nil
}
