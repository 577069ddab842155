package sandbox_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/signalnine/puzzlebench/internal/executil"
	"github.com/signalnine/puzzlebench/internal/sandbox"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "solution")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func dockerGuard(t *testing.T) {
	t.Helper()
	if os.Getenv("PUZZLEBENCH_DOCKER_TESTS") == "" {
		t.Skip("set PUZZLEBENCH_DOCKER_TESTS=1 to run Docker tests")
	}
}

func TestRunCapturesAnswer(t *testing.T) {
	dockerGuard(t)
	path := writeScript(t, `echo "4711"`)
	d := &sandbox.Driver{Image: "alpine:latest", Timeout: 30 * time.Second}

	o := d.Run(context.Background(), path)
	if !o.OK() {
		t.Fatalf("status = %q (%s), want ok", o.Status, o.Err)
	}
	if o.Answer() != "4711" {
		t.Errorf("answer = %q, want %q", o.Answer(), "4711")
	}
	if o.Duration <= 0 {
		t.Errorf("duration = %v, want > 0", o.Duration)
	}
}

func TestRunNonZeroExit(t *testing.T) {
	dockerGuard(t)
	path := writeScript(t, `exit 1`)
	d := &sandbox.Driver{Image: "alpine:latest", Timeout: 30 * time.Second}

	o := d.Run(context.Background(), path)
	if o.Status != executil.StatusFailed {
		t.Fatalf("status = %q, want failed", o.Status)
	}
	if o.ExitCode != 1 {
		t.Errorf("exit code = %d, want 1", o.ExitCode)
	}
}

func TestRunTimeout(t *testing.T) {
	dockerGuard(t)
	path := writeScript(t, `sleep 300`)
	d := &sandbox.Driver{Image: "alpine:latest", Timeout: 2 * time.Second}

	o := d.Run(context.Background(), path)
	if o.Status != executil.StatusTimedOut {
		t.Fatalf("status = %q, want timeout", o.Status)
	}
}
