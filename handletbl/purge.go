package handletbl

import (
	"math"

	db "weakdict/debug"
)

//
// Sweeping is O(len(slots)), so Add sweeps only once the table has
// grown to the purge threshold.  Each sweep moves the threshold
// toward VALID_RECIPROCAL times the number of survivors, so that at
// the next sweep about 1/VALID_RECIPROCAL of the table is live.
// Between sweeps the threshold decays by one per Add back toward
// BASE.
//

// Caller holds lk upgradeable.
func (ht *HandleTable[T]) purgeU() {
	n := len(ht.slots)
	if n < ht.threshold {
		if ht.threshold > ht.params.Purge.BASE {
			ht.threshold -= 1
		}
		return
	}

	// Readers may run while we scan; only the swap excludes them.
	live := make(map[Thandle]*slot[T], n)
	for h, s := range ht.slots {
		if s.target() != nil {
			live[h] = s
		}
	}
	m := len(live)
	old := ht.threshold
	ht.threshold = ht.nextThreshold(m)
	ht.nsweep.Add(1)

	db.DPrintf(db.HANDLETBL_PURGE, "sweep %d -> %d live, threshold %d -> %d", n, m, old, ht.threshold)

	if m == n {
		return
	}
	ht.lk.Upgrade()
	ht.slots = live
	ht.lk.Downgrade()
	ht.nswap.Add(1)
	ht.nswept.Add(uint64(n - m))
}

// nextThreshold smooths the threshold toward the size at which live
// slots would make up 1/VALID_RECIPROCAL of the table, never going
// below BASE.
func (ht *HandleTable[T]) nextThreshold(live int) int {
	pp := ht.params.Purge
	ideal := live * pp.VALID_RECIPROCAL
	t := ht.threshold + int(math.Floor(float64(ideal-ht.threshold)*pp.MU))
	if t < pp.BASE {
		t = pp.BASE
	}
	return t
}
