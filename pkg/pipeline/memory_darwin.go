//go:build darwin

package pipeline

import "syscall"

// detectMemory reads hw.memsize; available memory is estimated as 3/4 of it
func detectMemory() (total, available int64) {
	raw, err := syscall.Sysctl("hw.memsize")
	if err != nil {
		return 0, 0
	}
	var n uint64
	for i := 0; i < len(raw) && i < 8; i++ {
		n |= uint64(raw[i]) << (uint(i) * 8)
	}
	total = int64(n)
	return total, total * 3 / 4
}
