//go:build darwin

package pipeline

import "syscall"

// detectPerfCores returns the performance core count on Apple Silicon, the
// physical core count elsewhere, or 0 when sysctl fails
func detectPerfCores() int {
	for _, name := range []string{"hw.perflevel0.physicalcpu", "hw.physicalcpu"} {
		raw, err := syscall.Sysctl(name)
		if err != nil || len(raw) == 0 {
			continue
		}
		n := int(raw[0])
		if len(raw) > 1 {
			n |= int(raw[1]) << 8
		}
		if n > 0 {
			return n
		}
	}
	return 0
}
