package workers

import (
	"os"
	"runtime"
	"strconv"
)

// EnvOverride names the environment variable that pins the worker count.
const EnvOverride = "INDEXER_WORKERS"

// Count sizes a pool at multiplier workers per available CPU, at least one
// and at most limit (0 means no cap). GOMAXPROCS already reflects a
// container CPU quota. A positive INDEXER_WORKERS replaces the computed
// value but is still capped by limit.
func Count(multiplier float64, limit int) int {
	n, ok := override()
	if !ok {
		n = max(1, int(float64(runtime.GOMAXPROCS(0))*multiplier))
	}
	if limit > 0 {
		n = min(n, limit)
	}
	return n
}

// ForIO sizes a pool for I/O-bound work: two workers per CPU.
func ForIO(limit int) int {
	return Count(2.0, limit)
}

func override() (int, bool) {
	n, err := strconv.Atoi(os.Getenv(EnvOverride))
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}
