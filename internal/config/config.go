// FILENAME: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

// Global Configuration
const (
	// Benchmark
	DefaultMechanism   = "futex"
	DefaultDuration    = 60 * time.Second
	DefaultFootprintKB = 256
	MinWorkers         = 1

	// Wake channels
	// PollTimeout caps one multiplexed readiness wait so the stop flag is re-read.
	PollTimeout   = 100 * time.Millisecond
	MaxPollEvents = 64
	// PingPayloadSize is the worker index, a native-endian int32.
	PingPayloadSize = 4

	// Iterations before checking context for safety
	SpinBarrierCheck = 1024

	// Artifacts
	ArtifactPrefix = "gbench"
)

// Report Colors (Palette)
var ColorHeader = lipgloss.Color("39") // Vivid Blue

// ErrInvalidConfig is wrapped by every configuration error.
var ErrInvalidConfig = errors.New("invalid configuration")

// Mechanism selects how tasks wake each other.
type Mechanism int

const (
	Futex Mechanism = iota // atomic word + futex wait/wake
	Pipe                   // pipe pairs + epoll
	Sock                   // placeholder, calls are no-ops
)

var mechanismNames = [...]string{"futex", "pipe", "sock"}

func (m Mechanism) String() string {
	if m < 0 || int(m) >= len(mechanismNames) {
		return "mechanism(" + strconv.Itoa(int(m)) + ")"
	}
	return mechanismNames[m]
}

// ParseMechanism maps a selector name to its Mechanism.
func ParseMechanism(s string) (Mechanism, error) {
	for i, name := range mechanismNames {
		if s == name {
			return Mechanism(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown ipc type %q (want futex, pipe or sock)", ErrInvalidConfig, s)
}

// Budget is one task's per-iteration timing, in microseconds.
type Budget struct {
	Run  uint64 `yaml:"run"`
	Wait uint64 `yaml:"wait"`
}

// Config is fixed once the benchmark starts and shared read-only by every task.
type Config struct {
	Mechanism   Mechanism
	Coordinator Budget
	Workers     []Budget
	Duration    time.Duration
	FootprintKB uint64
	Pin         bool // pin task i to CPU i mod NumCPU
	KeepGC      bool // leave the Go GC running during the measurement
}

// Default returns a config with the built-in defaults and no workload.
func Default() Config {
	m, _ := ParseMechanism(DefaultMechanism)
	return Config{
		Mechanism:   m,
		Duration:    DefaultDuration,
		FootprintKB: DefaultFootprintKB,
	}
}

// Validate checks the config before any thread is launched.
func (c *Config) Validate() error {
	if c.Mechanism < Futex || c.Mechanism > Sock {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, c.Mechanism)
	}
	if len(c.Workers) < MinWorkers {
		return fmt.Errorf("%w: need at least %d worker (got %d run:wait pairs)", ErrInvalidConfig, MinWorkers, len(c.Workers)+1)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("%w: benchmark time must be positive, got %v", ErrInvalidConfig, c.Duration)
	}
	return nil
}

// CPUFor returns the CPU task i is pinned to, or -1 when pinning is off.
// The coordinator is task 0 and worker k is task k+1.
func (c *Config) CPUFor(i int) int {
	if !c.Pin {
		return -1
	}
	return i % runtime.NumCPU()
}

// ParseWorkload tokenizes "r0:w0,r1:w1,..." into the coordinator budget and one
// budget per worker.
func ParseWorkload(s string) (Budget, []Budget, error) {
	pairs := strings.Split(s, ",")
	budgets := make([]Budget, 0, len(pairs))
	for i, pair := range pairs {
		run, wait, ok := strings.Cut(strings.TrimSpace(pair), ":")
		if !ok {
			return Budget{}, nil, fmt.Errorf("%w: pair %d %q is not run:wait", ErrInvalidConfig, i, pair)
		}
		r, err := strconv.ParseUint(strings.TrimSpace(run), 10, 64)
		if err != nil {
			return Budget{}, nil, fmt.Errorf("%w: pair %d run time: %v", ErrInvalidConfig, i, err)
		}
		w, err := strconv.ParseUint(strings.TrimSpace(wait), 10, 64)
		if err != nil {
			return Budget{}, nil, fmt.Errorf("%w: pair %d wait time: %v", ErrInvalidConfig, i, err)
		}
		budgets = append(budgets, Budget{Run: r, Wait: w})
	}
	if len(budgets) < MinWorkers+1 {
		return Budget{}, nil, fmt.Errorf("%w: workload %q needs a coordinator pair and at least %d worker pair", ErrInvalidConfig, s, MinWorkers)
	}
	return budgets[0], budgets[1:], nil
}

// ParseFootprint reads a cache footprint. A bare number is kilobytes;
// anything with a unit ("512KiB", "1MB") goes through humanize.
func ParseFootprint(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if kb, err := strconv.ParseUint(s, 10, 64); err == nil {
		return kb, nil
	}
	b, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("%w: cache footprint %q: %v", ErrInvalidConfig, s, err)
	}
	return b / 1024, nil
}

// File is the YAML form of a config. Unset fields keep their defaults.
type File struct {
	IPC            string   `yaml:"ipc"`
	Star           string   `yaml:"star"`
	Coordinator    *Budget  `yaml:"coordinator"`
	Workers        []Budget `yaml:"workers"`
	TimeSec        int      `yaml:"time"`
	CacheFootprint string   `yaml:"cache_footprint"`
	Pin            *bool    `yaml:"pin"`
	KeepGC         *bool    `yaml:"gc"`
}

// LoadFile reads a YAML config file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return &f, nil
}

// Apply overlays the file's settings onto c.
func (f *File) Apply(c *Config) error {
	if f.IPC != "" {
		m, err := ParseMechanism(f.IPC)
		if err != nil {
			return err
		}
		c.Mechanism = m
	}
	if f.Star != "" {
		coord, workers, err := ParseWorkload(f.Star)
		if err != nil {
			return err
		}
		c.Coordinator, c.Workers = coord, workers
	}
	if f.Coordinator != nil {
		c.Coordinator = *f.Coordinator
	}
	if len(f.Workers) > 0 {
		c.Workers = append([]Budget(nil), f.Workers...)
	}
	if f.TimeSec != 0 {
		c.Duration = time.Duration(f.TimeSec) * time.Second
	}
	if f.CacheFootprint != "" {
		kb, err := ParseFootprint(f.CacheFootprint)
		if err != nil {
			return err
		}
		c.FootprintKB = kb
	}
	if f.Pin != nil {
		c.Pin = *f.Pin
	}
	if f.KeepGC != nil {
		c.KeepGC = *f.KeepGC
	}
	return nil
}
