package concept

import "sync"

// History keeps the results produced during this session, most recent first.
// It is never persisted.
type History struct {
	mu      sync.RWMutex
	results []*Result
}

// Add archives a result at the front of the history. Nil is ignored.
func (h *History) Add(r *Result) {
	if r == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.results = append([]*Result{r}, h.results...)
}

// All returns a copy of the archived results, most recent first.
func (h *History) All() []*Result {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]*Result(nil), h.results...)
}

// Len returns the number of archived results.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.results)
}
