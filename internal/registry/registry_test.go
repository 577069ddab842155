package registry_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/signalnine/puzzlebench/internal/registry"
)

func writeSolution(t *testing.T, root, project, name string) {
	t.Helper()
	dir := filepath.Join(root, project)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	writeSolution(t, root, "y2022", "d02")
	writeSolution(t, root, "y2022", "d01")
	writeSolution(t, root, "y2021", "d01")
	// Non-executable files are skipped.
	os.WriteFile(filepath.Join(root, "y2022", "notes.txt"), []byte("x"), 0o644)
	// Stray top-level files are skipped.
	os.WriteFile(filepath.Join(root, "README"), []byte("x"), 0o644)

	solutions, err := registry.Discover(root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(solutions) != 3 {
		t.Fatalf("expected 3 solutions, got %d: %v", len(solutions), solutions)
	}

	want := []string{"y2021/d01", "y2022/d01", "y2022/d02"}
	for i, w := range want {
		if solutions[i].ID() != w {
			t.Errorf("solution %d = %q, want %q", i, solutions[i].ID(), w)
		}
	}
	if solutions[0].Path != filepath.Join(root, "y2021", "d01") {
		t.Errorf("unexpected path %q", solutions[0].Path)
	}
}

func TestDiscoverMissingRoot(t *testing.T) {
	if _, err := registry.Discover(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing root")
	}
}

func TestDiscoverReenumerable(t *testing.T) {
	root := t.TempDir()
	writeSolution(t, root, "y2022", "d01")

	first, err := registry.Discover(root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	writeSolution(t, root, "y2022", "d02")
	second, err := registry.Discover(root)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(first) != 1 || len(second) != 2 {
		t.Errorf("expected 1 then 2 solutions, got %d then %d", len(first), len(second))
	}
}

func TestFilter(t *testing.T) {
	solutions := []registry.Solution{
		{Project: "y2021", Name: "d01"},
		{Project: "y2022", Name: "d01"},
		{Project: "y2022", Name: "d02"},
	}

	tests := []struct {
		name    string
		project string
		names   []string
		want    int
	}{
		{"no filters returns all", "", nil, 3},
		{"project filter", "y2022", nil, 2},
		{"name filter spans projects", "", []string{"d01"}, 2},
		{"project and name", "y2022", []string{"d02"}, 1},
		{"no match", "y2023", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := registry.Filter(solutions, tt.project, tt.names)
			if len(got) != tt.want {
				t.Errorf("Filter(%q, %v) returned %d, want %d", tt.project, tt.names, len(got), tt.want)
			}
		})
	}
}
