package rand

import (
	"math/rand/v2"
)

// Int64 returns a uniformly distributed int64, negative values
// included. Safe for concurrent use.
func Int64() int64 {
	return int64(rand.Uint64())
}

// Int64n returns a value in [0, n).
func Int64n(n int64) int64 {
	return rand.Int64N(n)
}
