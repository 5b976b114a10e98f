package bridge

import "fmt"

// stackSentinel fills the seed stack so that any real edge weight displaces it
const stackSentinel = 999999

// Stack holds the weakest edge weights seen along a DP path, ascending.
// Comparing two stacks lexicographically rewards paths whose weakest
// edges are strongest.
type Stack []int

// NewStack returns a seed stack of the given width
func NewStack(width int) Stack {
	s := make(Stack, width)
	for i := range s {
		s[i] = stackSentinel
	}
	return s
}

// Push returns a new stack with w inserted in order and the largest value dropped
func (s Stack) Push(w int) Stack {
	out := make(Stack, len(s))
	j := 0
	inserted := false
	for i := 0; j < len(out); j++ {
		if !inserted && (i >= len(s) || s[i] > w) {
			out[j] = w
			inserted = true
			continue
		}
		out[j] = s[i]
		i++
	}
	return out
}

// Weakest returns the smallest weight on the stack
func (s Stack) Weakest() int {
	return s[0]
}

// CompareStack returns +1 if x ranks above y, -1 if below, 0 if equal.
// Both stacks must have the same width and be ascending.
func CompareStack(x, y Stack) int {
	if len(x) != len(y) {
		panic(fmt.Sprintf("bridge: comparing stacks of width %d and %d", len(x), len(y)))
	}
	for i := range x {
		if x[i] > y[i] {
			return 1
		}
		if x[i] < y[i] {
			return -1
		}
	}
	return 0
}

// compareEntry orders DP entries: larger stack first, then shorter length
func compareEntry(x, y *Entry) int {
	if c := CompareStack(x.Stack, y.Stack); c != 0 {
		return -c
	}
	switch {
	case x.Length < y.Length:
		return -1
	case x.Length > y.Length:
		return 1
	}
	return 0
}
