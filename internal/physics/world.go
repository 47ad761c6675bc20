package physics

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxStep bounds a single integration step in seconds. Longer frames are split so a stalled
// frame does not tunnel bodies through each other.
const MaxStep = float32(1) / 30

// DefaultGravity pulls toward -Y, the scene's down.
var DefaultGravity = mgl32.Vec3{0, -9.8, 0}

// World holds a set of bodies and runs a simple step: gravity, integration and AABB
// separation along the axis of least penetration.
type World struct {
	mu      sync.Mutex
	gravity mgl32.Vec3
	bodies  []*Body
}

// NewWorld returns an empty world with DefaultGravity.
func NewWorld() *World {
	return &World{gravity: DefaultGravity}
}

// SetGravity replaces the gravity vector.
func (w *World) SetGravity(g mgl32.Vec3) {
	w.mu.Lock()
	w.gravity = g
	w.mu.Unlock()
}

// Gravity returns the gravity vector.
func (w *World) Gravity() mgl32.Vec3 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gravity
}

// Add appends b. Bodies are resolved in insertion order.
func (w *World) Add(b *Body) {
	w.mu.Lock()
	w.bodies = append(w.bodies, b)
	w.mu.Unlock()
}

// Remove takes b out of the world. It reports false when b was not in it.
func (w *World) Remove(b *Body) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, o := range w.bodies {
		if o == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of bodies.
func (w *World) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.bodies)
}

// Step advances the simulation by dt seconds in chunks of at most MaxStep. There is no
// global floor: a dynamic body falls until it rests on another body.
func (w *World) Step(dt float32) {
	if dt <= 0 {
		return
	}
	w.mu.Lock()
	bodies := append([]*Body(nil), w.bodies...)
	g := w.gravity
	w.mu.Unlock()

	before := make([]mgl32.Vec3, len(bodies))
	for i, b := range bodies {
		before[i] = b.Position
	}
	for dt > 0 {
		h := min(dt, MaxStep)
		dt -= h
		integrate(bodies, g, h)
		separate(bodies)
	}
	for i, b := range bodies {
		if b.OnMove != nil && b.Position != before[i] {
			b.OnMove(b.Position)
		}
	}
}

func integrate(bodies []*Body, g mgl32.Vec3, h float32) {
	for _, b := range bodies {
		if b.Static {
			continue
		}
		b.Velocity = b.Velocity.Add(g.Mul(h))
		b.Position = b.Position.Add(b.Velocity.Mul(h))
	}
}

func separate(bodies []*Body) {
	for i := 0; i < len(bodies); i++ {
		bi := bodies[i]
		for j := i + 1; j < len(bodies); j++ {
			bj := bodies[j]
			if bi.Static && bj.Static {
				continue
			}
			depth, axis := penetration(bi.Bounds(), bj.Bounds())
			if axis < 0 {
				continue
			}
			// Push i toward lower coordinates when it sits below j on the axis.
			sign := float32(1)
			if bi.Position[axis] < bj.Position[axis] {
				sign = -1
			}
			var moveI, moveJ float32
			switch {
			case bi.Static:
				moveJ = -sign * depth
			case bj.Static:
				moveI = sign * depth
			default:
				total := bi.Mass + bj.Mass
				moveI = sign * depth * (bj.Mass / total)
				moveJ = -sign * depth * (bi.Mass / total)
			}
			bi.Position[axis] += moveI
			bj.Position[axis] += moveJ
			if !bi.Static {
				bi.Velocity[axis] = 0
			}
			if !bj.Static {
				bj.Velocity[axis] = 0
			}
		}
	}
}

// penetration returns the overlap depth and the axis (0=X, 1=Y, 2=Z) of least penetration,
// or (0, -1) when the boxes do not overlap.
func penetration(a, b Box) (depth float32, axis int) {
	axis = -1
	for i := range 3 {
		o := min(a.Max[i], b.Max[i]) - max(a.Min[i], b.Min[i])
		if o <= 0 {
			return 0, -1
		}
		if axis < 0 || o < depth {
			depth, axis = o, i
		}
	}
	return depth, axis
}
