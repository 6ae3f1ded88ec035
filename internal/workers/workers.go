package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count sizes a worker pool from the CPUs the process may use.
// GOMAXPROCS reflects container CPU limits, so the pool shrinks with
// the cgroup quota rather than the host core count.
//
// The multiplier scales the pool for the workload: 1.0 when every
// worker saturates a core (transcoding), 2.0 when workers mostly wait
// on disk or network, 1.5 in between. A limit above 0 caps the result.
//
// ENCODE_WORKERS overrides the calculation entirely; the limit still
// applies to the override.
func Count(multiplier float64, limit int) int {
	if n, ok := override(); ok {
		return capped(n, limit)
	}

	n := int(float64(runtime.GOMAXPROCS(0)) * multiplier)
	if n < 1 {
		n = 1
	}
	return capped(n, limit)
}

// override reads the ENCODE_WORKERS escape hatch. Zero, negative and
// unparseable values are ignored.
func override() (int, bool) {
	v := os.Getenv("ENCODE_WORKERS")
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func capped(n, limit int) int {
	if limit > 0 && n > limit {
		return limit
	}
	return n
}

// ForCPU sizes a pool for core-saturating work such as audio and
// video encoding, one worker per CPU.
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO sizes a pool for work dominated by disk or network waits,
// two workers per CPU.
func ForIO(limit int) int {
	return Count(2.0, limit)
}

// ForMixed sizes a pool for work that alternates between computing
// and waiting, like preview extraction that reads far into a source
// file before decoding one frame.
func ForMixed(limit int) int {
	return Count(1.5, limit)
}
