package preview

import "sync"

// buildStatus tracks the outcome of the most recent build for the error page.
type buildStatus struct {
	mu        sync.RWMutex
	lastError error
	builds    int
}

func (bs *buildStatus) record(err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.builds++
	bs.lastError = err
}

func (bs *buildStatus) err() error {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.lastError
}

func (bs *buildStatus) count() int {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	return bs.builds
}
