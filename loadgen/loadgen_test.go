package loadgen

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	db "weakdict/debug"
)

func TestRun(t *testing.T) {
	var n atomic.Int64
	lg := NewLoadGenerator(200*time.Millisecond, 100, func() {
		n.Add(1)
		time.Sleep(time.Millisecond)
	})
	st, err := lg.Run()
	require.Nil(t, err)
	db.DPrintf(db.TEST, "stats %v", st)
	assert.Equal(t, int(n.Load()), st.N)
	assert.True(t, st.N > 0)
	assert.True(t, st.N <= 25, "N %d", st.N)
	assert.True(t, st.Mean >= 1.0, "mean %v", st.Mean)
	assert.True(t, st.P50 <= st.P99)
	assert.True(t, st.P99 <= st.Max)
}

func TestStatsEmpty(t *testing.T) {
	lg := NewLoadGenerator(time.Second, 10, func() {})
	_, err := lg.Stats(time.Second)
	assert.NotNil(t, err)
}

func TestBadRate(t *testing.T) {
	assert.Panics(t, func() { NewLoadGenerator(time.Second, 0, func() {}) })
	assert.Panics(t, func() { NewLoadGenerator(time.Second, -5, func() {}) })
}
