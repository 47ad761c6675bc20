package scene

import (
	"sort"
	"sync"
)

// FrameQueue holds one-shot frame requests for a surface. Requests made while a batch is
// being dispatched wait for the next batch.
type FrameQueue struct {
	mu        sync.Mutex
	next      FrameID
	pending   map[FrameID]FrameFunc
	cancelled []FrameID
}

// Request queues fn for the next dispatch.
func (q *FrameQueue) Request(fn FrameFunc) FrameID {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == nil {
		q.pending = make(map[FrameID]FrameFunc)
	}
	q.next++
	q.pending[q.next] = fn
	return q.next
}

// Cancel drops a pending request. Unknown ids are ignored.
func (q *FrameQueue) Cancel(id FrameID) {
	q.mu.Lock()
	defer q.mu.Unlock()
	delete(q.pending, id)
	q.cancelled = append(q.cancelled, id)
}

// Dispatch runs every pending request once, oldest first, and returns how many ran.
func (q *FrameQueue) Dispatch(dt float32) int {
	q.mu.Lock()
	ids := make([]FrameID, 0, len(q.pending))
	for id := range q.pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]FrameFunc, len(ids))
	for i, id := range ids {
		fns[i] = q.pending[id]
		delete(q.pending, id)
	}
	q.mu.Unlock()

	for _, fn := range fns {
		fn(dt)
	}
	return len(fns)
}

// Pending returns the number of queued requests.
func (q *FrameQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Cancelled returns every id passed to Cancel.
func (q *FrameQueue) Cancelled() []FrameID {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]FrameID(nil), q.cancelled...)
}

// ResizeHub fans size changes out to subscribers.
type ResizeHub struct {
	mu   sync.Mutex
	next int
	subs map[int]func(width, height int)
}

// Subscribe adds fn and returns a function that removes it.
func (h *ResizeHub) Subscribe(fn func(width, height int)) (remove func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs == nil {
		h.subs = make(map[int]func(int, int))
	}
	h.next++
	id := h.next
	h.subs[id] = fn
	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// Notify calls every subscriber with the new size.
func (h *ResizeHub) Notify(width, height int) {
	h.mu.Lock()
	subs := make([]func(int, int), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	h.mu.Unlock()
	for _, fn := range subs {
		fn(width, height)
	}
}

// Len returns the number of subscribers.
func (h *ResizeHub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
