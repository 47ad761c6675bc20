package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodyRestsOnStaticFloor(t *testing.T) {
	w := NewWorld()
	floor := NewBody(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{10, 0.2, 10}, 0, true)
	crate := NewBody(mgl32.Vec3{0, 2, 0}, mgl32.Vec3{1, 1, 1}, 1, false)
	w.Add(floor)
	w.Add(crate)

	for range 180 {
		w.Step(1.0 / 60)
	}
	assert.InDelta(t, 0.6, crate.Position.Y(), 1e-4)
	assert.InDelta(t, 0, crate.Velocity.Y(), 1e-6)
	assert.Equal(t, mgl32.Vec3{0, 0, 0}, floor.Position)
	assert.Equal(t, float32(1), floor.Mass)
}

func TestLongStepsAreSplit(t *testing.T) {
	whole, chunked := NewWorld(), NewWorld()
	a := NewBody(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 1, false)
	b := NewBody(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1}, 1, false)
	whole.Add(a)
	chunked.Add(b)

	whole.Step(1)
	for range 30 {
		chunked.Step(MaxStep)
	}
	assert.InDelta(t, b.Position.Y(), a.Position.Y(), 1e-3)
	assert.InDelta(t, -9.8, a.Velocity.Y(), 1e-3)
}

func TestOverlapSplitByMass(t *testing.T) {
	w := NewWorld()
	w.SetGravity(mgl32.Vec3{})
	light := NewBody(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}, 1, false)
	heavy := NewBody(mgl32.Vec3{0.5, 0, 0}, mgl32.Vec3{1, 1, 1}, 3, false)
	w.Add(light)
	w.Add(heavy)

	w.Step(0.01)
	assert.InDelta(t, -0.375, light.Position.X(), 1e-5)
	assert.InDelta(t, 0.625, heavy.Position.X(), 1e-5)
	assert.False(t, light.Bounds().Overlaps(heavy.Bounds()))
}

func TestOnMoveOnlyForMovedBodies(t *testing.T) {
	w := NewWorld()
	var moved []mgl32.Vec3
	var staticMoved bool
	ground := NewBody(mgl32.Vec3{0, -5, 0}, mgl32.Vec3{4, 1, 4}, 1, true)
	ground.OnMove = func(mgl32.Vec3) { staticMoved = true }
	ball := NewBody(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{1, 1, 1}, 1, false)
	ball.OnMove = func(p mgl32.Vec3) { moved = append(moved, p) }
	w.Add(ground)
	w.Add(ball)

	w.Step(0.1)
	w.Step(0)
	require.Len(t, moved, 1)
	assert.Equal(t, ball.Position, moved[0])
	assert.False(t, staticMoved)
	assert.Equal(t, 2, w.Len())
	assert.Equal(t, DefaultGravity, w.Gravity())
}

func TestPenetration(t *testing.T) {
	a := Box{Min: mgl32.Vec3{0, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}

	touching := Box{Min: mgl32.Vec3{1, 0, 0}, Max: mgl32.Vec3{2, 1, 1}}
	_, axis := penetration(a, touching)
	assert.Equal(t, -1, axis)
	assert.False(t, a.Overlaps(touching))

	above := Box{Min: mgl32.Vec3{0, 0.9, 0}, Max: mgl32.Vec3{1, 1.9, 1}}
	depth, axis := penetration(a, above)
	assert.Equal(t, 1, axis)
	assert.InDelta(t, 0.1, depth, 1e-6)
}
