package physics

import "github.com/go-gl/mathgl/mgl32"

// Body is an axis-aligned box with a position, a velocity and a mass. Size is the full
// extent of the box along each axis. Static bodies do not move and are not affected by
// gravity.
type Body struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Size     mgl32.Vec3
	Mass     float32
	Static   bool

	// OnMove, when set, receives the position after every step that moved the body.
	OnMove func(mgl32.Vec3)
}

// NewBody returns a body at rest. A mass of zero or less becomes 1.
func NewBody(position, size mgl32.Vec3, mass float32, static bool) *Body {
	if mass <= 0 {
		mass = 1
	}
	return &Body{Position: position, Size: size, Mass: mass, Static: static}
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max mgl32.Vec3
}

// Bounds returns the box the body occupies.
func (b *Body) Bounds() Box {
	half := b.Size.Mul(0.5)
	return Box{Min: b.Position.Sub(half), Max: b.Position.Add(half)}
}

// Overlaps reports whether the boxes intersect with positive volume.
func (a Box) Overlaps(b Box) bool {
	_, axis := penetration(a, b)
	return axis >= 0
}
