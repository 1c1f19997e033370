package handletbl

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"weak"
)

// A slot observes its object through a weak pointer. The strong
// pointer keeps the object alive until the first call to target, which
// drops it for good.
type slot[T any] struct {
	wp     weak.Pointer[T]
	strong atomic.Pointer[T]
	path   atomic.Pointer[string]
}

func newSlot[T any](path string, obj *T) *slot[T] {
	s := &slot[T]{wp: weak.Make(obj)}
	s.strong.Store(obj)
	s.path.Store(&path)
	return s
}

// target returns the object if it is still alive, nil otherwise.
func (s *slot[T]) target() *T {
	p := s.strong.Swap(nil)
	v := s.wp.Value()
	runtime.KeepAlive(p)
	return v
}

func (s *slot[T]) holding() bool {
	return s.strong.Load() != nil
}

func (s *slot[T]) getPath() string {
	return *s.path.Load()
}

func (s *slot[T]) setPath(path string) {
	s.path.Store(&path)
}

func (s *slot[T]) String() string {
	return fmt.Sprintf("{%q holding %v}", s.getPath(), s.holding())
}
