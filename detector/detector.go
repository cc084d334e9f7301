package detector

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sys/cpu"
)

/* ---------- public API ---------- */

// WorkersEnv overrides the recommended batch worker count.
const WorkersEnv = "AUGMENT_WORKERS"

// Report is a portable summary of the host CPU as seen by batch transforms.
type Report struct {
	WhenISO     string            `json:"when_iso"`
	Runtime     string            `json:"runtime"` // "native" or "wasm" (best-effort)
	OS          string            `json:"os"`
	Arch        string            `json:"arch"`
	NumCPU      int               `json:"num_cpu"`
	MaxProcs    int               `json:"max_procs"`
	Recommended Recommendations   `json:"recommended"`
	Features    []string          `json:"features"`
	Env         map[string]string `json:"env,omitempty"`
}

type Recommendations struct {
	// Concurrent per-sample transforms for a batch.
	Workers int `json:"workers"`
	// Samples per worker before the pool is worth spinning up.
	MinSamplesPerWorker int `json:"min_samples_per_worker"`
}

// DetectJSON runs a probe and returns the JSON string.
func DetectJSON() (string, error) {
	rep, err := Detect()
	if err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Detect probes the host and synthesizes a report.
func Detect() (*Report, error) {
	maxProcs := runtime.GOMAXPROCS(0)
	workers, err := chooseWorkers(maxProcs, os.Getenv(WorkersEnv))
	if err != nil {
		return nil, err
	}

	return &Report{
		WhenISO:  time.Now().UTC().Format(time.RFC3339),
		Runtime:  detectRuntime(),
		OS:       runtime.GOOS,
		Arch:     runtime.GOARCH,
		NumCPU:   runtime.NumCPU(),
		MaxProcs: maxProcs,
		Recommended: Recommendations{
			Workers:             workers,
			MinSamplesPerWorker: minSamplesPerWorker(),
		},
		Features: cpuFeatures(),
		Env:      pickEnv([]string{WorkersEnv}),
	}, nil
}

// WorkersFor returns how many workers a batch of n samples should use.
func (r *Report) WorkersFor(n int) int {
	if r == nil || n <= 0 {
		return 1
	}
	w := r.Recommended.Workers
	if per := r.Recommended.MinSamplesPerWorker; per > 0 && n/per < w {
		w = n / per
	}
	if w < 1 {
		w = 1
	}
	return w
}

/* ---------- helpers ---------- */

func chooseWorkers(maxProcs int, override string) (int, error) {
	if override != "" {
		n, err := strconv.Atoi(override)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("%s=%q: want a positive integer", WorkersEnv, override)
		}
		return n, nil
	}
	if maxProcs < 1 {
		return 1, nil
	}
	return maxProcs, nil
}

// Wider vectors make a single transform cheaper, so each worker needs more
// samples before parallelism pays off.
func minSamplesPerWorker() int {
	switch {
	case cpu.X86.HasAVX512F:
		return 4
	case cpu.X86.HasAVX2, cpu.ARM64.HasASIMD:
		return 2
	}
	return 1
}

func cpuFeatures() []string {
	var feats []string
	add := func(ok bool, name string) {
		if ok {
			feats = append(feats, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64", "386":
		add(cpu.X86.HasSSE2, "sse2")
		add(cpu.X86.HasSSE41, "sse4.1")
		add(cpu.X86.HasAVX, "avx")
		add(cpu.X86.HasAVX2, "avx2")
		add(cpu.X86.HasFMA, "fma")
		add(cpu.X86.HasAVX512F, "avx512f")
		add(cpu.X86.HasAVX512BW, "avx512bw")
	case "arm64":
		add(cpu.ARM64.HasASIMD, "asimd")
		add(cpu.ARM64.HasFPHP, "fphp")
		add(cpu.ARM64.HasASIMDHP, "asimdhp")
		add(cpu.ARM64.HasSVE, "sve")
	}
	return feats
}

func detectRuntime() string {
	// Simple heuristic; use build tags later if you like.
	if runtime.GOOS == "js" {
		return "wasm"
	}
	return "native"
}

func pickEnv(keys []string) map[string]string {
	out := map[string]string{}
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
