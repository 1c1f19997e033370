package handletbl

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

//go:noinline
func newOrphanSlot() *slot[tobj] {
	return newSlot("/orphan", newObj("orphan"))
}

//go:noinline
func alive(s *slot[tobj]) bool {
	return s.target() != nil
}

func TestSlotReleaseOnce(t *testing.T) {
	o := newObj("o")
	s := newSlot("/o", o)
	assert.True(t, s.holding())
	assert.Same(t, o, s.target())
	assert.False(t, s.holding())
	assert.Same(t, o, s.target())
	assert.Same(t, o, s.target())
}

func TestSlotStrongUntilFirstRead(t *testing.T) {
	s := newOrphanSlot()
	gc()
	// Only the strong hold keeps the object alive.
	assert.True(t, s.holding())
	assert.True(t, alive(s))
	assert.False(t, s.holding())
	gc()
	assert.False(t, alive(s))
	assert.Equal(t, "/orphan", s.getPath())
}

func TestSlotConcurrentFirstRead(t *testing.T) {
	for i := 0; i < 100; i++ {
		o := newObj("o")
		s := newSlot("/o", o)
		var wg sync.WaitGroup
		for j := 0; j < 8; j++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.Same(t, o, s.target())
			}()
		}
		wg.Wait()
		assert.False(t, s.holding())
	}
}

func TestSlotPath(t *testing.T) {
	o := newObj("o")
	s := newSlot("/a", o)
	assert.Equal(t, "/a", s.getPath())
	s.setPath("/b")
	assert.Equal(t, "/b", s.getPath())
	assert.Equal(t, `{"/b" holding true}`, s.String())
}
