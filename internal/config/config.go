package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	IsolationProcess   = "process"
	IsolationContainer = "container"
)

type Config struct {
	Solutions  Solutions `yaml:"solutions"`
	Bench      Bench     `yaml:"bench"`
	Container  Container `yaml:"container"`
	Parallel   int       `yaml:"parallel"`
	Production bool      `yaml:"production"`
}

// Solutions describes where solution binaries live: one directory per
// project under Dir, one executable per solution inside it.
type Solutions struct {
	Dir            string `yaml:"dir"`
	DefaultProject string `yaml:"default_project"`
}

type Bench struct {
	WarmupMS          int    `yaml:"warmup_ms"`
	TimeLimitMS       int    `yaml:"time_limit_ms"`
	FloorResolutionUS int    `yaml:"floor_resolution_us"`
	MaxIterations     int    `yaml:"max_iterations"`
	RunTimeoutS       int    `yaml:"run_timeout_s"`
	Isolation         string `yaml:"isolation"`
	CheckAnswers      bool   `yaml:"check_answers"`
}

func (b Bench) Warmup() time.Duration { return time.Duration(b.WarmupMS) * time.Millisecond }

func (b Bench) TimeLimit() time.Duration { return time.Duration(b.TimeLimitMS) * time.Millisecond }

func (b Bench) FloorResolution() time.Duration {
	return time.Duration(b.FloorResolutionUS) * time.Microsecond
}

func (b Bench) RunTimeout() time.Duration { return time.Duration(b.RunTimeoutS) * time.Second }

type Container struct {
	Image       string  `yaml:"image"`
	CPULimit    float64 `yaml:"cpu_limit"`
	MemoryLimit int64   `yaml:"memory_limit"`
}

// Load reads the YAML config at path. A missing file is not an error:
// the harness works from defaults alone.
func Load(path string) (*Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Solutions: Solutions{Dir: "bin"},
		Bench: Bench{
			WarmupMS:          400,
			TimeLimitMS:       100,
			FloorResolutionUS: 1000,
			MaxIterations:     1000,
			RunTimeoutS:       60,
			Isolation:         IsolationProcess,
		},
		Container: Container{Image: "alpine:latest"},
		Parallel:  1,
	}
}

func validate(cfg *Config) error {
	if cfg.Solutions.Dir == "" {
		return fmt.Errorf("solutions dir is required")
	}
	if cfg.Bench.TimeLimitMS <= 0 {
		return fmt.Errorf("bench time_limit_ms must be positive")
	}
	if cfg.Bench.WarmupMS < 0 {
		return fmt.Errorf("bench warmup_ms must not be negative")
	}
	if cfg.Bench.FloorResolutionUS <= 0 {
		return fmt.Errorf("bench floor_resolution_us must be positive")
	}
	if cfg.Bench.MaxIterations < 1 {
		return fmt.Errorf("bench max_iterations must be at least 1")
	}
	switch cfg.Bench.Isolation {
	case IsolationProcess, IsolationContainer:
	default:
		return fmt.Errorf("bench isolation must be %q or %q, got %q",
			IsolationProcess, IsolationContainer, cfg.Bench.Isolation)
	}
	if cfg.Bench.Isolation == IsolationContainer && cfg.Container.Image == "" {
		return fmt.Errorf("container image is required for container isolation")
	}
	if cfg.Parallel < 1 {
		return fmt.Errorf("parallel must be at least 1")
	}
	return nil
}
