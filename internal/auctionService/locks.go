package auction

import "sync"

// listingLocks serializes state changes per listing within this process.
type listingLocks struct {
	mu    sync.Mutex
	locks map[uint]*listingLock
}

type listingLock struct {
	mu   sync.Mutex
	refs int
}

func newListingLocks() *listingLocks {
	return &listingLocks{locks: make(map[uint]*listingLock)}
}

// lock blocks until the listing is free and returns the matching unlock.
func (l *listingLocks) lock(listingID uint) func() {
	l.mu.Lock()
	entry, ok := l.locks[listingID]
	if !ok {
		entry = &listingLock{}
		l.locks[listingID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, listingID)
		}
		l.mu.Unlock()
	}
}
