package reconcile

import "sync"

// bookingLocks hands out one mutex per booking code so that ledger
// mutations on the same booking serialize in-process before they even
// reach the database row lock, while operations on different bookings
// proceed in parallel.  Mutexes are created lazily and never removed;
// the set of codes a single instance touches is small enough that the
// map does not need eviction.
type bookingLocks struct {
    mu    sync.Mutex
    byKey map[string]*sync.Mutex
}

func newBookingLocks() *bookingLocks {
    return &bookingLocks{byKey: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for code and returns the matching unlock func.
func (l *bookingLocks) acquire(code string) func() {
    l.mu.Lock()
    m, ok := l.byKey[code]
    if !ok {
        m = &sync.Mutex{}
        l.byKey[code] = m
    }
    l.mu.Unlock()
    m.Lock()
    return m.Unlock
}
