package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Input is the pointer state an input controller reads once per frame.
type Input interface {
	PointerDelta() (dx, dy float32)
	Rotating() bool
	Panning() bool
	Zoom() float32
}

const (
	minPolar = 1e-3
	maxPolar = math32.Pi - 1e-3
	// settle is the delta magnitude under which a damped motion is considered finished.
	settle = 1e-5
)

// OrbitController moves a camera around its target from pointer drags and wheel input.
// With damping enabled the motion eases out over several frames instead of stopping dead.
type OrbitController struct {
	Camera      *Camera
	Enabled     bool
	Damping     bool
	DampFactor  float32
	RotateSpeed float32 // radians per pointer pixel
	PanSpeed    float32 // world units per pointer pixel at distance 1
	ZoomSpeed   float32
	MinDistance float32
	MaxDistance float32

	input  Input
	dTheta float32
	dPhi   float32
	scale  float32
	pan    mgl32.Vec3
}

// NewOrbitController returns a damped controller for cam reading in. in may be nil, in
// which case the controller only settles pending motion.
func NewOrbitController(cam *Camera, in Input) *OrbitController {
	return &OrbitController{
		Camera:      cam,
		Enabled:     true,
		Damping:     true,
		DampFactor:  0.05,
		RotateSpeed: 0.005,
		PanSpeed:    0.002,
		ZoomSpeed:   0.05,
		MinDistance: 0.1,
		MaxDistance: 500,
		input:       in,
		scale:       1,
	}
}

// Rotate queues an orbit by the given azimuth and polar deltas (radians).
func (o *OrbitController) Rotate(dTheta, dPhi float32) {
	o.dTheta += dTheta
	o.dPhi += dPhi
}

// Dolly queues a distance change; factors below 1 move closer.
func (o *OrbitController) Dolly(factor float32) {
	if factor > 0 {
		o.scale *= factor
	}
}

// Update reads input and advances the camera one frame. It leaves the camera untouched
// when there is no pending motion.
func (o *OrbitController) Update() {
	if !o.Enabled || o.Camera == nil {
		return
	}
	o.readInput()
	if o.idle() {
		o.reset()
		return
	}

	cam := o.Camera
	offset := cam.Position.Sub(cam.Target)
	radius := offset.Len()
	if radius == 0 {
		radius = o.MinDistance
	}
	theta := math32.Atan2(offset.X(), offset.Z())
	phi := math32.Acos(clamp(offset.Y()/radius, -1, 1))

	f := float32(1)
	if o.Damping {
		f = o.DampFactor
	}
	theta += o.dTheta * f
	phi = clamp(phi+o.dPhi*f, minPolar, maxPolar)
	radius = clamp(radius*(1+(o.scale-1)*f), o.MinDistance, o.MaxDistance)
	cam.Target = cam.Target.Add(o.pan.Mul(f))

	sinPhi := math32.Sin(phi)
	cam.Position = cam.Target.Add(mgl32.Vec3{
		radius * sinPhi * math32.Sin(theta),
		radius * math32.Cos(phi),
		radius * sinPhi * math32.Cos(theta),
	})

	if o.Damping {
		keep := 1 - o.DampFactor
		o.dTheta *= keep
		o.dPhi *= keep
		o.scale = 1 + (o.scale-1)*keep
		o.pan = o.pan.Mul(keep)
		return
	}
	o.reset()
}

func (o *OrbitController) readInput() {
	if o.input == nil {
		return
	}
	dx, dy := o.input.PointerDelta()
	switch {
	case o.input.Rotating():
		o.Rotate(-dx*o.RotateSpeed, -dy*o.RotateSpeed)
	case o.input.Panning():
		o.queuePan(dx, dy)
	}
	if z := o.input.Zoom(); z != 0 {
		o.Dolly(math32.Pow(1-o.ZoomSpeed, z))
	}
}

// queuePan moves the target in the camera's screen plane.
func (o *OrbitController) queuePan(dx, dy float32) {
	cam := o.Camera
	forward := cam.Target.Sub(cam.Position)
	dist := forward.Len()
	if dist == 0 {
		return
	}
	forward = forward.Normalize()
	right := forward.Cross(cam.Up).Normalize()
	up := right.Cross(forward)
	step := o.PanSpeed * dist
	o.pan = o.pan.Add(right.Mul(-dx * step)).Add(up.Mul(dy * step))
}

func (o *OrbitController) idle() bool {
	return math32.Abs(o.dTheta) < settle &&
		math32.Abs(o.dPhi) < settle &&
		math32.Abs(o.scale-1) < settle &&
		o.pan.Len() < settle
}

func (o *OrbitController) reset() {
	o.dTheta, o.dPhi, o.scale = 0, 0, 1
	o.pan = mgl32.Vec3{}
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
