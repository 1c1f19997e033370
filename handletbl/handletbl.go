package handletbl

import (
	"fmt"
	"slices"
	"sync/atomic"

	"golang.org/x/exp/maps"

	db "weakdict/debug"
	"weakdict/util/rand"
	"weakdict/util/upgradelock"
)

//
// A table of weakly-held objects indexed by random handles.  The
// table does not keep its objects alive: once nothing else refers to
// an object, its slot goes dead and TryGet, GetPath and SetPath treat
// it as missing.  Dead slots stay in the table (Contains still reports
// them) until Add runs a purge sweep; see purge.go.
//
// Readers (TryGet, Contains, GetPath, SetPath) share the lock.  Add
// holds it upgradeable while it purges and picks a handle, and
// upgrades only to swap in a purged table or insert the new slot.
//

type Thandle int64

// HandleGen produces candidate handles. Must be safe for concurrent
// use; Add retries on collision.
type HandleGen func() Thandle

func randHandle() Thandle {
	return Thandle(rand.Int64())
}

type Tstats struct {
	Nadd       uint64 // calls to Add
	Ncollision uint64 // handles drawn that were already in use
	Nsweep     uint64 // purge sweeps run
	Nswap      uint64 // sweeps that removed slots
	Nswept     uint64 // dead slots removed
}

func (st Tstats) String() string {
	return fmt.Sprintf("{add %d collision %d sweep %d swap %d swept %d}",
		st.Nadd, st.Ncollision, st.Nsweep, st.Nswap, st.Nswept)
}

type HandleTable[T any] struct {
	lk        *upgradelock.UpgradeLock
	params    Params
	gen       HandleGen
	slots     map[Thandle]*slot[T]
	threshold int // guarded by the upgradeable side of lk
	nadd      atomic.Uint64
	ncoll     atomic.Uint64
	nsweep    atomic.Uint64
	nswap     atomic.Uint64
	nswept    atomic.Uint64
}

func NewHandleTable[T any](p *Params) *HandleTable[T] {
	return NewHandleTableGen[T](p, randHandle)
}

func NewHandleTableGen[T any](p *Params, gen HandleGen) *HandleTable[T] {
	if p == nil {
		p = DefaultParams()
	}
	if err := p.Validate(); err != nil {
		db.DFatalf("NewHandleTable: %v", err)
	}
	ht := &HandleTable[T]{
		lk:        upgradelock.NewUpgradeLock(),
		params:    *p,
		gen:       gen,
		slots:     make(map[Thandle]*slot[T]),
		threshold: p.Purge.BASE,
	}
	return ht
}

// TryGet returns the object for h, if h is in the table and its object
// is still alive.
func (ht *HandleTable[T]) TryGet(h Thandle) (*T, bool) {
	ht.lk.RLock()
	defer ht.lk.RUnlock()

	s, ok := ht.slots[h]
	if !ok {
		return nil, false
	}
	if v := s.target(); v != nil {
		return v, true
	}
	return nil, false
}

// Add stores obj, which must not be nil, under a fresh handle.
func (ht *HandleTable[T]) Add(path string, obj *T) Thandle {
	if obj == nil {
		db.DFatalf("Add %q: nil object", path)
	}
	ht.nadd.Add(1)

	ht.lk.ULock()
	defer ht.lk.UUnlock()

	ht.purgeU()
	h := ht.allocHandleU()
	s := newSlot(path, obj)

	ht.lk.Upgrade()
	ht.slots[h] = s
	ht.lk.Downgrade()

	db.DPrintf(db.HANDLETBL, "Add %v %v", h, s)
	return h
}

// Caller holds lk upgradeable.
func (ht *HandleTable[T]) allocHandleU() Thandle {
	for i := 0; i < ht.params.Handle.MAX_TRIES; i++ {
		h := ht.gen()
		if _, ok := ht.slots[h]; !ok {
			return h
		}
		ht.ncoll.Add(1)
		db.DPrintf(db.HANDLETBL, "allocHandle: collision %v", h)
	}
	db.DFatalf("allocHandle: no free handle after %d tries (%d slots)", ht.params.Handle.MAX_TRIES, len(ht.slots))
	return 0
}

// Contains reports whether h is in the table, whether or not its
// object is still alive.
func (ht *HandleTable[T]) Contains(h Thandle) bool {
	ht.lk.RLock()
	defer ht.lk.RUnlock()

	_, ok := ht.slots[h]
	return ok
}

// GetPath returns the path for h, or "" if h is missing or dead.
func (ht *HandleTable[T]) GetPath(h Thandle) string {
	ht.lk.RLock()
	defer ht.lk.RUnlock()

	s, ok := ht.slots[h]
	if !ok || s.target() == nil {
		return ""
	}
	return s.getPath()
}

// SetPath sets the path for a live h. Concurrent SetPaths on the same
// handle race; the last one wins.
func (ht *HandleTable[T]) SetPath(h Thandle, path string) bool {
	ht.lk.RLock()
	defer ht.lk.RUnlock()

	s, ok := ht.slots[h]
	if !ok || s.target() == nil {
		return false
	}
	s.setPath(path)
	return true
}

// Len returns the number of slots, dead ones included.
func (ht *HandleTable[T]) Len() int {
	ht.lk.RLock()
	defer ht.lk.RUnlock()
	return len(ht.slots)
}

func (ht *HandleTable[T]) Threshold() int {
	ht.lk.ULock()
	defer ht.lk.UUnlock()
	return ht.threshold
}

func (ht *HandleTable[T]) Stats() Tstats {
	return Tstats{
		Nadd:       ht.nadd.Load(),
		Ncollision: ht.ncoll.Load(),
		Nsweep:     ht.nsweep.Load(),
		Nswap:      ht.nswap.Load(),
		Nswept:     ht.nswept.Load(),
	}
}

func (ht *HandleTable[T]) String() string {
	ht.lk.RLock()
	defer ht.lk.RUnlock()

	hs := maps.Keys(ht.slots)
	slices.Sort(hs)
	s := "["
	for _, h := range hs {
		s += fmt.Sprintf("%v %v, ", h, ht.slots[h])
	}
	return s + "]"
}
