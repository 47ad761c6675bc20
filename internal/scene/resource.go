package scene

import "github.com/go-gl/mathgl/mgl32"

// Shape names a primitive geometry.
type Shape string

const (
	ShapeBox      Shape = "box"
	ShapeSphere   Shape = "sphere"
	ShapeCylinder Shape = "cylinder"
	ShapeCone     Shape = "cone"
	ShapePlane    Shape = "plane"
	ShapeTorus    Shape = "torus"
	ShapeLine     Shape = "line"
)

// Geometry describes mesh data by shape and size parameters; the renderer turns it into GPU
// buffers on first draw and registers a release hook so Dispose frees them.
type Geometry struct {
	Shape    Shape
	Params   []float32
	Segments int
	Points   []mgl32.Vec3 // ShapeLine only

	disposed bool
	releases []func()
}

// NewGeometry returns a geometry of the given shape. Params are shape specific, e.g.
// width/height/depth for a box or radius for a sphere.
func NewGeometry(shape Shape, params ...float32) *Geometry {
	return &Geometry{Shape: shape, Params: params}
}

// OnDispose registers fn to run once when the geometry is disposed.
func (g *Geometry) OnDispose(fn func()) {
	if g.disposed {
		fn()
		return
	}
	g.releases = append(g.releases, fn)
}

// Dispose releases GPU resources bound to the geometry. Calling it again is a no-op.
func (g *Geometry) Dispose() {
	if g.disposed {
		return
	}
	g.disposed = true
	for _, fn := range g.releases {
		fn()
	}
	g.releases = nil
}

// Disposed reports whether Dispose has run.
func (g *Geometry) Disposed() bool { return g.disposed }

// Material holds surface appearance for meshes and lines.
type Material struct {
	Color       Color
	Metalness   float32
	Roughness   float32
	Opacity     float32
	Wireframe   bool
	DoubleSided bool

	disposed bool
	releases []func()
}

// NewMaterial returns an opaque standard material of the given color.
func NewMaterial(c Color) *Material {
	return &Material{Color: c, Roughness: 1, Opacity: 1}
}

// OnDispose registers fn to run once when the material is disposed.
func (m *Material) OnDispose(fn func()) {
	if m.disposed {
		fn()
		return
	}
	m.releases = append(m.releases, fn)
}

// Dispose releases resources bound to the material. Calling it again is a no-op.
func (m *Material) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	for _, fn := range m.releases {
		fn()
	}
	m.releases = nil
}

// Disposed reports whether Dispose has run.
func (m *Material) Disposed() bool { return m.disposed }

// LightType names the supported light models.
type LightType string

const (
	LightAmbient     LightType = "ambient"
	LightDirectional LightType = "directional"
	LightPoint       LightType = "point"
	LightHemisphere  LightType = "hemisphere"
)

// Light is the payload of a KindLight node. Directional and point lights take their
// position from the node.
type Light struct {
	Type      LightType
	Color     Color
	Intensity float32
}

// DisposeAll disposes every distinct geometry and material reachable from nodes, each
// exactly once, and returns how many resources were released.
func DisposeAll(nodes ...*Node) int {
	geoms := make(map[*Geometry]struct{})
	mats := make(map[*Material]struct{})
	n := 0
	for _, root := range nodes {
		root.Traverse(func(node *Node) {
			if g := node.Geometry; g != nil {
				if _, seen := geoms[g]; !seen {
					geoms[g] = struct{}{}
					if !g.Disposed() {
						g.Dispose()
						n++
					}
				}
			}
			if m := node.Material; m != nil {
				if _, seen := mats[m]; !seen {
					mats[m] = struct{}{}
					if !m.Disposed() {
						m.Dispose()
						n++
					}
				}
			}
		})
	}
	return n
}

// DisposeUnreachable disposes the geometries and materials of the detached subtrees that
// are no longer referenced from anywhere under root. Shared resources stay alive.
func DisposeUnreachable(root *Node, detached ...*Node) int {
	if root == nil {
		return DisposeAll(detached...)
	}
	geoms := make(map[*Geometry]struct{})
	mats := make(map[*Material]struct{})
	root.Traverse(func(n *Node) {
		if n.Geometry != nil {
			geoms[n.Geometry] = struct{}{}
		}
		if n.Material != nil {
			mats[n.Material] = struct{}{}
		}
	})
	n := 0
	for _, d := range detached {
		d.Traverse(func(node *Node) {
			if g := node.Geometry; g != nil && !g.Disposed() {
				if _, live := geoms[g]; !live {
					g.Dispose()
					n++
				}
			}
			if m := node.Material; m != nil && !m.Disposed() {
				if _, live := mats[m]; !live {
					m.Dispose()
					n++
				}
			}
		})
	}
	return n
}
