//go:build !darwin && !linux

package pipeline

func detectPerfCores() int {
	return 0
}
