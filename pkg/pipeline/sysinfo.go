package pipeline

import (
	"fmt"
	"io"
	"runtime"
)

const (
	mb = 1024 * 1024
	gb = 1024 * mb
)

// SystemInfo describes the machine the pipeline runs on
type SystemInfo struct {
	CPUs            int
	PerfCores       int // 0 when the CPU is not hybrid
	TotalMemory     int64
	AvailableMemory int64
}

// DetectSystem probes CPU and memory; undetectable memory is reported as 0
func DetectSystem() SystemInfo {
	total, available := detectMemory()
	return SystemInfo{
		CPUs:            runtime.NumCPU(),
		PerfCores:       detectPerfCores(),
		TotalMemory:     total,
		AvailableMemory: available,
	}
}

// OptimalWorkers prefers performance cores, then all logical CPUs
func (s SystemInfo) OptimalWorkers() int {
	if s.PerfCores > 0 && s.PerfCores < s.CPUs {
		return s.PerfCores
	}
	return s.CPUs
}

// Print writes a short system summary
func (s SystemInfo) Print(w io.Writer) {
	fmt.Fprintf(w, "System Information:\n")
	if s.TotalMemory > 0 {
		fmt.Fprintf(w, "  Total RAM: %.1f GB\n", float64(s.TotalMemory)/gb)
		fmt.Fprintf(w, "  Available RAM: %.1f GB\n", float64(s.AvailableMemory)/gb)
	}
	if opt := s.OptimalWorkers(); opt < s.CPUs {
		fmt.Fprintf(w, "  CPU cores: %d total (%d performance, %d efficiency)\n", s.CPUs, opt, s.CPUs-opt)
	} else {
		fmt.Fprintf(w, "  CPU cores: %d\n", s.CPUs)
	}
	fmt.Fprintf(w, "\n")
}
