//go:build linux

package pipeline

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// detectPerfCores counts the fast cores of a hybrid CPU from /proc/cpuinfo.
// It returns 0 on homogeneous machines or when the file cannot be read.
func detectPerfCores() int {
	f, err := os.Open("/proc/cpuinfo")
	if err != nil {
		return 0
	}
	defer f.Close()
	return perfCoresFromCPUInfo(bufio.NewScanner(f))
}

func perfCoresFromCPUInfo(sc *bufio.Scanner) int {
	// fastest clock seen per physical core
	freqs := make(map[int]float64)
	coreID := -1
	var pending []float64

	flush := func() {
		if coreID < 0 {
			return
		}
		for _, f := range pending {
			if f > freqs[coreID] {
				freqs[coreID] = f
			}
		}
		pending = pending[:0]
	}

	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		switch key {
		case "processor":
			flush()
			coreID = -1
		case "core id":
			if id, err := strconv.Atoi(value); err == nil {
				coreID = id
			}
		case "cpu MHz":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				pending = append(pending, f)
			}
		}
	}
	flush()

	if len(freqs) <= 2 {
		return 0
	}
	var sum float64
	for _, f := range freqs {
		sum += f
	}
	avg := sum / float64(len(freqs))

	perf := 0
	for _, f := range freqs {
		if f >= avg*0.9 {
			perf++
		}
	}
	if perf == len(freqs) {
		return 0
	}
	return perf
}
