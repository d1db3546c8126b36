// FILENAME: internal/config/config_test.go
package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xkilldash9x/gbench/internal/config"
)

func TestParseMechanism(t *testing.T) {
	for _, name := range []string{"futex", "pipe", "sock"} {
		m, err := config.ParseMechanism(name)
		if err != nil {
			t.Fatalf("ParseMechanism(%q): %v", name, err)
		}
		if m.String() != name {
			t.Errorf("Round trip mismatch: %q -> %q", name, m.String())
		}
	}

	if _, err := config.ParseMechanism("shm"); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for unknown mechanism, got %v", err)
	}
	if s := config.Mechanism(9).String(); s != "mechanism(9)" {
		t.Errorf("Unexpected name for unknown mechanism: %q", s)
	}
}

func TestParseWorkload(t *testing.T) {
	coord, workers, err := config.ParseWorkload("1000:2000, 300:400,5:0")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if coord != (config.Budget{Run: 1000, Wait: 2000}) {
		t.Errorf("Coordinator budget mismatch: %+v", coord)
	}
	if len(workers) != 2 {
		t.Fatalf("Expected 2 workers, got %d", len(workers))
	}
	if workers[0] != (config.Budget{Run: 300, Wait: 400}) || workers[1] != (config.Budget{Run: 5, Wait: 0}) {
		t.Errorf("Worker budgets mismatch: %+v", workers)
	}
}

func TestParseWorkload_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Empty", ""},
		{"Single pair", "1000:1000"},
		{"Missing colon", "1000:1000,1000"},
		{"Negative", "1000:1000,-5:10"},
		{"Not a number", "1000:1000,abc:10"},
		{"Empty wait", "1000:1000,10:"},
		{"Trailing comma", "1000:1000,10:10,"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := config.ParseWorkload(tt.input); !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig for %q, got %v", tt.input, err)
			}
		})
	}
}

func FuzzParseWorkload(f *testing.F) {
	f.Add("1000:1000,1000:1000")
	f.Add("0:0,0:0,0:0")
	f.Add("1:2")
	f.Add(",:,")
	f.Fuzz(func(t *testing.T, s string) {
		coord, workers, err := config.ParseWorkload(s)
		if err != nil {
			if !errors.Is(err, config.ErrInvalidConfig) {
				t.Fatalf("Unwrapped error for %q: %v", s, err)
			}
			return
		}
		if len(workers) < config.MinWorkers {
			t.Fatalf("Accepted %q with %d workers", s, len(workers))
		}
		if strings.Count(s, ",") != len(workers) {
			t.Fatalf("Pair count mismatch for %q: coordinator %+v, %d workers", s, coord, len(workers))
		}
	})
}

func TestParseFootprint(t *testing.T) {
	tests := []struct {
		input string
		want  uint64
	}{
		{"256", 256},
		{" 64 ", 64},
		{"1MiB", 1024},
		{"512KiB", 512},
		{"1MB", 976},
	}
	for _, tt := range tests {
		got, err := config.ParseFootprint(tt.input)
		if err != nil {
			t.Errorf("ParseFootprint(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFootprint(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}

	if _, err := config.ParseFootprint("plenty"); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := config.Default()
	valid.Workers = []config.Budget{{Run: 1, Wait: 1}}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Expected valid config, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"No workers", func(c *config.Config) { c.Workers = nil }},
		{"Zero duration", func(c *config.Config) { c.Duration = 0 }},
		{"Unknown mechanism", func(c *config.Config) { c.Mechanism = 5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			if err := c.Validate(); !errors.Is(err, config.ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestConfig_CPUFor(t *testing.T) {
	c := config.Default()
	if cpu := c.CPUFor(3); cpu != -1 {
		t.Errorf("Expected -1 without pinning, got %d", cpu)
	}
	c.Pin = true
	if cpu := c.CPUFor(0); cpu != 0 {
		t.Errorf("Expected CPU 0 for the coordinator, got %d", cpu)
	}
	if cpu := c.CPUFor(1 << 20); cpu < 0 {
		t.Errorf("Expected a wrapped CPU index, got %d", cpu)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gbench.yaml")
	body := `ipc: pipe
coordinator: {run: 100, wait: 200}
workers:
  - {run: 10, wait: 20}
  - {run: 30, wait: 40}
time: 5
cache_footprint: 1MiB
pin: true
`
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	f, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	c := config.Default()
	if err := f.Apply(&c); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if c.Mechanism != config.Pipe {
		t.Errorf("Expected pipe, got %v", c.Mechanism)
	}
	if c.Coordinator != (config.Budget{Run: 100, Wait: 200}) {
		t.Errorf("Coordinator mismatch: %+v", c.Coordinator)
	}
	if len(c.Workers) != 2 || c.Workers[1].Wait != 40 {
		t.Errorf("Workers mismatch: %+v", c.Workers)
	}
	if c.Duration != 5*time.Second {
		t.Errorf("Duration mismatch: %v", c.Duration)
	}
	if c.FootprintKB != 1024 {
		t.Errorf("Footprint mismatch: %d", c.FootprintKB)
	}
	if !c.Pin || c.KeepGC {
		t.Errorf("Expected pin on and gc off, got pin=%v gc=%v", c.Pin, c.KeepGC)
	}
}

func TestLoadFile_StarKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gbench.yaml")
	if err := os.WriteFile(path, []byte("star: 1:2,3:4\n"), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := config.LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	c := config.Default()
	if err := f.Apply(&c); err != nil {
		t.Fatal(err)
	}
	if c.Mechanism != config.Futex || c.Duration != config.DefaultDuration || c.FootprintKB != config.DefaultFootprintKB {
		t.Errorf("Unset fields should keep defaults: %+v", c)
	}
	if len(c.Workers) != 1 || c.Coordinator.Run != 1 {
		t.Errorf("Workload mismatch: %+v", c)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := config.LoadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Expected error for a missing file")
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("time: [not, a, number]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.LoadFile(bad); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}

	unknown := filepath.Join(dir, "unknown.yaml")
	if err := os.WriteFile(unknown, []byte("ipc: carrier-pigeon\n"), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := config.LoadFile(unknown)
	if err != nil {
		t.Fatal(err)
	}
	c := config.Default()
	if err := f.Apply(&c); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig from Apply, got %v", err)
	}
}
