package script

import (
	"sync"

	"scene-studio/internal/physics"
	"scene-studio/internal/primitives"
	"scene-studio/internal/scene"
)

// Engine is the first handle every unit receives: primitive construction and per-frame
// work registration. Units never schedule frames themselves; they register into the
// runtime's Animator so the runtime can cancel their work when their content is swapped out.
type Engine struct {
	Primitives *primitives.Catalogue
	frames     *scene.Animator

	mu       sync.Mutex
	world    *physics.World
	worldGen uint64
	bindings map[*scene.Node][]func()
	bindGen  uint64
}

// NewEngine returns an engine registering into frames. Nil arguments get defaults.
func NewEngine(frames *scene.Animator, cat *primitives.Catalogue) *Engine {
	if frames == nil {
		frames = scene.NewAnimator()
	}
	if cat == nil {
		cat = primitives.Default()
	}
	return &Engine{Primitives: cat, frames: frames}
}

// OnFrame registers fn to run every frame until the next unit is applied. Work registered
// here is not tied to any node; statements that animate a node also bind the callback to it
// so Release stops it when the node is removed.
func (e *Engine) OnFrame(fn scene.Animation) scene.CallbackID {
	return e.frames.Register(fn)
}

// CancelFrame stops a callback registered with OnFrame.
func (e *Engine) CancelFrame(id scene.CallbackID) bool {
	return e.frames.Cancel(id)
}

// Frames returns the dispatcher units register into.
func (e *Engine) Frames() *scene.Animator { return e.frames }

// World returns the physics world of the current generation, creating it and registering
// its step on first use. Applying the next unit advances the generation, which cancels the
// step and makes the next call start an empty world.
func (e *Engine) World() *physics.World {
	e.mu.Lock()
	defer e.mu.Unlock()
	gen := e.frames.Generation()
	if e.world == nil || e.worldGen != gen {
		w := physics.NewWorld()
		e.world, e.worldGen = w, gen
		e.frames.Register(func(dt float32) error {
			w.Step(dt)
			return nil
		})
	}
	return e.world
}

// bind ties release to n for the current generation. Bindings from older generations are
// dropped, their callbacks are already cancelled.
func (e *Engine) bind(n *scene.Node, release func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	gen := e.frames.Generation()
	if e.bindings == nil || e.bindGen != gen {
		e.bindings = make(map[*scene.Node][]func())
		e.bindGen = gen
	}
	e.bindings[n] = append(e.bindings[n], release)
}

// Release stops the per-frame work bound to nodes and their descendants: animations are
// cancelled and physics bodies leave the world. It returns how many bindings were released.
func (e *Engine) Release(nodes ...*scene.Node) int {
	var fns []func()
	e.mu.Lock()
	if e.bindGen == e.frames.Generation() {
		for _, n := range nodes {
			n.Traverse(func(c *scene.Node) {
				fns = append(fns, e.bindings[c]...)
				delete(e.bindings, c)
			})
		}
	}
	e.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
	return len(fns)
}
