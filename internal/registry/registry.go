package registry

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Solution identifies one discovered solution binary. Immutable after
// discovery.
type Solution struct {
	Project string
	Name    string
	Path    string
}

func (s Solution) ID() string {
	return s.Project + "/" + s.Name
}

// Discover enumerates solution binaries under root. Layout is one
// directory per project with one executable file per solution. The
// result is sorted by project then name; callers must not rely on any
// particular execution order.
func Discover(root string) ([]Solution, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading solutions dir %s: %w", root, err)
	}

	var solutions []Solution
	for _, project := range entries {
		if !project.IsDir() {
			continue
		}
		projectDir := filepath.Join(root, project.Name())
		files, err := os.ReadDir(projectDir)
		if err != nil {
			return nil, fmt.Errorf("reading project dir %s: %w", projectDir, err)
		}
		for _, f := range files {
			if f.IsDir() {
				continue
			}
			info, err := f.Info()
			if err != nil {
				return nil, fmt.Errorf("stat %s: %w", filepath.Join(projectDir, f.Name()), err)
			}
			if !executable(info) {
				continue
			}
			solutions = append(solutions, Solution{
				Project: project.Name(),
				Name:    f.Name(),
				Path:    filepath.Join(projectDir, f.Name()),
			})
		}
	}

	sort.Slice(solutions, func(i, j int) bool {
		if solutions[i].Project != solutions[j].Project {
			return solutions[i].Project < solutions[j].Project
		}
		return solutions[i].Name < solutions[j].Name
	})
	return solutions, nil
}

func executable(info fs.FileInfo) bool {
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}

// Filter narrows solutions to a project and/or a set of solution names.
// An empty project or name set means no filtering on that axis.
func Filter(solutions []Solution, project string, names []string) []Solution {
	nameSet := make(map[string]bool, len(names))
	for _, n := range names {
		nameSet[n] = true
	}

	var filtered []Solution
	for _, s := range solutions {
		if project != "" && s.Project != project {
			continue
		}
		if len(nameSet) > 0 && !nameSet[s.Name] {
			continue
		}
		filtered = append(filtered, s)
	}
	return filtered
}
