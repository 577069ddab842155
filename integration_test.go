//go:build integration

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/signalnine/puzzlebench/internal/config"
	"github.com/signalnine/puzzlebench/internal/registry"
	"github.com/signalnine/puzzlebench/internal/runner"
)

// createFixtureSolutions lays out a solutions tree with known per-run
// costs so calibration behavior can be checked end to end.
func createFixtureSolutions(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	scripts := map[string]string{
		"y2021/d01": "#!/bin/sh\necho 100\n",
		"y2022/d01": "#!/bin/sh\nsleep 0.05\necho 200\n",
		"y2022/d02": "#!/bin/sh\nsleep 0.2\necho 300\n",
		"y2022/d03": "#!/bin/sh\nexit 1\n",
	}
	for id, body := range scripts {
		path := filepath.Join(root, id)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestBenchRunIntegration(t *testing.T) {
	root := createFixtureSolutions(t)
	cfg := &config.Config{
		Solutions: config.Solutions{Dir: root},
		Bench: config.Bench{
			WarmupMS:          50,
			TimeLimitMS:       100,
			FloorResolutionUS: 1000,
			MaxIterations:     20,
			RunTimeoutS:       30,
			Isolation:         config.IsolationProcess,
		},
		Parallel: 2,
	}

	solutions, err := registry.Discover(root)
	if err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	rep := runner.Run(context.Background(), cfg, runner.Options{Bench: true}, solutions)
	elapsed := time.Since(start)

	if rep.Total.Solutions != 4 {
		t.Fatalf("expected 4 solutions, got %d", rep.Total.Solutions)
	}
	if rep.Total.Failures != 1 {
		t.Errorf("expected 1 failure, got %d", rep.Total.Failures)
	}

	for _, s := range rep.Solutions {
		if !s.OK() {
			continue
		}
		// The measured sampling time should sit near the budget:
		// n*cost within a small factor of the time limit, except for
		// the single-run degradation.
		if s.Iterations > 1 && s.Total > 4*cfg.Bench.TimeLimit() {
			t.Errorf("%s: sampling took %v for a %v budget", s.ID(), s.Total, cfg.Bench.TimeLimit())
		}
	}

	// Slowest solution sleeps 200ms per run and degrades to one
	// measured run.
	for _, s := range rep.Solutions {
		if s.ID() == "y2022/d02" && s.Iterations != 1 {
			t.Errorf("expected single-run degradation for y2022/d02, got %d iterations", s.Iterations)
		}
	}

	if elapsed > 2*time.Minute {
		t.Errorf("run took %v, calibration is not bounding time", elapsed)
	}
}
