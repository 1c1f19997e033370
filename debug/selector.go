package debug

type Tselector string

// ALWAYS
const (
	ALWAYS Tselector = "ALWAYS"
	ERROR  Tselector = "ERROR"
	NEVER  Tselector = "NEVER"
)

// Tests
const (
	TEST  Tselector = "TEST"
	TEST1 Tselector = "TEST1"
)

// Handle table
const (
	HANDLETBL       Tselector = "HANDLETBL"
	HANDLETBL_PURGE Tselector = HANDLETBL + "_PURGE"
	UPGRADELOCK     Tselector = "UPGRADELOCK"
)

// Benchmarks
const (
	LOADGEN Tselector = "LOADGEN"
	BENCH   Tselector = "BENCH"
)
