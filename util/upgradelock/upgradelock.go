package upgradelock

import (
	"sync"
)

//
// A reader/writer lock with a third, upgradeable-read mode.  Any
// number of readers may hold the lock in shared mode together with at
// most one upgradeable reader.  Only the upgradeable reader may
// escalate to exclusive mode (Upgrade), and it does so without giving
// up its upgradeable status, so no other writer can slip in between.
// Lock order is always u before rw.
//

type UpgradeLock struct {
	u  sync.Mutex   // held by the upgradeable reader or a writer
	rw sync.RWMutex // shared by readers; exclusive while upgraded
}

func NewUpgradeLock() *UpgradeLock {
	return &UpgradeLock{}
}

func (l *UpgradeLock) RLock() {
	l.rw.RLock()
}

func (l *UpgradeLock) RUnlock() {
	l.rw.RUnlock()
}

// ULock acquires the lock in upgradeable-read mode.
func (l *UpgradeLock) ULock() {
	l.u.Lock()
	l.rw.RLock()
}

func (l *UpgradeLock) UUnlock() {
	l.rw.RUnlock()
	l.u.Unlock()
}

// Upgrade escalates an upgradeable read to exclusive mode. Caller
// must hold the lock through ULock. Every path to rw.Lock goes
// through u, so dropping the read share here cannot admit another
// writer.
func (l *UpgradeLock) Upgrade() {
	l.rw.RUnlock()
	l.rw.Lock()
}

// Downgrade returns from exclusive mode to upgradeable-read mode.
func (l *UpgradeLock) Downgrade() {
	l.rw.Unlock()
	l.rw.RLock()
}

// Lock acquires the lock exclusively without an upgradeable phase.
func (l *UpgradeLock) Lock() {
	l.u.Lock()
	l.rw.Lock()
}

func (l *UpgradeLock) Unlock() {
	l.rw.Unlock()
	l.u.Unlock()
}
