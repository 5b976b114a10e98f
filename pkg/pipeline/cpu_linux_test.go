//go:build linux

package pipeline

import (
	"bufio"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func cpuinfo(mhz ...float64) string {
	var b strings.Builder
	for i, f := range mhz {
		fmt.Fprintf(&b, "processor\t: %d\nmodel name\t: test\ncpu MHz\t\t: %.3f\ncore id\t\t: %d\n\n", i, f, i)
	}
	return b.String()
}

func TestPerfCoresFromCPUInfo(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"hybrid", cpuinfo(4800, 4800, 4800, 4800, 2400, 2400, 2400, 2400), 4},
		{"homogeneous", cpuinfo(3000, 3000, 3000, 3000), 0},
		{"too few cores", cpuinfo(4800, 2400), 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := perfCoresFromCPUInfo(bufio.NewScanner(strings.NewReader(tt.in)))
			assert.Equal(t, tt.want, got)
		})
	}
}
