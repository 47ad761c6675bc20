package scene

import (
	"errors"
	"fmt"
	"sync"
)

// FrameID identifies a pending frame request on a surface.
type FrameID uint64

// FrameFunc runs once on the frame it was requested for. dt is seconds since the previous frame.
type FrameFunc func(dt float32)

// Animation is per-frame work registered by a unit. A returned error cancels it.
type Animation func(dt float32) error

// CallbackID identifies a registered animation.
type CallbackID uint64

type animation struct {
	id  CallbackID
	gen uint64
	fn  Animation
}

// Animator is the runtime-owned frame callback dispatcher. Every registration is tagged
// with the generation current at registration time, so a whole generation can be
// cancelled when the content it animates is swapped out.
type Animator struct {
	mu         sync.Mutex
	generation uint64
	nextID     CallbackID
	order      []CallbackID
	entries    map[CallbackID]animation
}

// NewAnimator returns an empty dispatcher at generation 0.
func NewAnimator() *Animator {
	return &Animator{entries: make(map[CallbackID]animation)}
}

// Generation returns the current generation.
func (a *Animator) Generation() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.generation
}

// Register adds fn under the current generation.
func (a *Animator) Register(fn Animation) CallbackID {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nextID++
	id := a.nextID
	a.entries[id] = animation{id: id, gen: a.generation, fn: fn}
	a.order = append(a.order, id)
	return id
}

// Cancel removes the callback. It reports false when id is not registered.
func (a *Animator) Cancel(id CallbackID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancelLocked(id)
}

func (a *Animator) cancelLocked(id CallbackID) bool {
	if _, ok := a.entries[id]; !ok {
		return false
	}
	delete(a.entries, id)
	for i, o := range a.order {
		if o == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			break
		}
	}
	return true
}

// Advance starts a new generation and cancels every callback registered under older ones.
func (a *Animator) Advance() (generation uint64, cancelled int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generation++
	cancelled = a.clearLocked()
	return a.generation, cancelled
}

// CancelAll removes every callback regardless of generation.
func (a *Animator) CancelAll() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.clearLocked()
}

func (a *Animator) clearLocked() int {
	n := len(a.entries)
	a.entries = make(map[CallbackID]animation)
	a.order = nil
	return n
}

// Len returns the number of live callbacks.
func (a *Animator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.entries)
}

// Run invokes every live callback in registration order. Callbacks may register or cancel
// others; a callback cancelled earlier in the same run is skipped. Failing or panicking
// callbacks are cancelled and their errors joined into the result.
func (a *Animator) Run(dt float32) error {
	a.mu.Lock()
	ids := make([]CallbackID, len(a.order))
	copy(ids, a.order)
	a.mu.Unlock()

	var errs []error
	for _, id := range ids {
		a.mu.Lock()
		entry, ok := a.entries[id]
		a.mu.Unlock()
		if !ok {
			continue
		}
		if err := invoke(entry.fn, dt); err != nil {
			a.Cancel(id)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func invoke(fn Animation, dt float32) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("animation panicked: %v", r)
		}
	}()
	return fn(dt)
}
