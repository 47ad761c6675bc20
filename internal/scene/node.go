package scene

import "github.com/go-gl/mathgl/mgl32"

// Kind classifies a node in the scene graph.
type Kind int

const (
	KindRoot Kind = iota
	KindGroup
	KindMesh
	KindLine
	KindLight
)

func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindGroup:
		return "group"
	case KindMesh:
		return "mesh"
	case KindLine:
		return "line"
	case KindLight:
		return "light"
	}
	return "unknown"
}

// Transient reports whether nodes of this kind are swapped out when a new unit is applied.
func (k Kind) Transient() bool {
	return k == KindMesh || k == KindGroup || k == KindLine
}

// Node is one element of the scene graph. Rotation is Euler XYZ in radians.
type Node struct {
	Name     string
	Kind     Kind
	Position mgl32.Vec3
	Rotation mgl32.Vec3
	Scale    mgl32.Vec3
	Visible  bool

	Geometry *Geometry
	Material *Material
	Light    *Light

	parent   *Node
	children []*Node
}

func newNode(name string, kind Kind) *Node {
	return &Node{Name: name, Kind: kind, Scale: mgl32.Vec3{1, 1, 1}, Visible: true}
}

// NewRoot returns an empty scene graph root.
func NewRoot() *Node { return newNode("scene", KindRoot) }

// NewGroup returns an empty group node.
func NewGroup(name string) *Node { return newNode(name, KindGroup) }

// NewMesh returns a mesh node drawing g with m.
func NewMesh(name string, g *Geometry, m *Material) *Node {
	n := newNode(name, KindMesh)
	n.Geometry = g
	n.Material = m
	return n
}

// NewLine returns a polyline node through points.
func NewLine(name string, points []mgl32.Vec3, m *Material) *Node {
	n := newNode(name, KindLine)
	n.Geometry = &Geometry{Shape: ShapeLine, Points: points}
	n.Material = m
	return n
}

// NewLight returns a light node.
func NewLight(name string, l *Light) *Node {
	n := newNode(name, KindLight)
	n.Light = l
	return n
}

// Parent returns the node's parent, or nil when detached.
func (n *Node) Parent() *Node { return n.parent }

// Children returns a copy of the node's children.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Add attaches child as the last child of n, detaching it from any previous parent.
func (n *Node) Add(child *Node) {
	if child == nil || child == n {
		return
	}
	child.RemoveFromParent()
	child.parent = n
	n.children = append(n.children, child)
}

// Remove detaches child from n. It reports false when child is not a direct child.
func (n *Node) Remove(child *Node) bool {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			child.parent = nil
			return true
		}
	}
	return false
}

// RemoveFromParent detaches n from its parent, if any.
func (n *Node) RemoveFromParent() {
	if n.parent != nil {
		n.parent.Remove(n)
	}
}

// Clear detaches every child of n and returns them.
func (n *Node) Clear() []*Node {
	out := n.children
	for _, c := range out {
		c.parent = nil
	}
	n.children = nil
	return out
}

// Traverse calls fn for n and every descendant in pre-order.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children() {
		c.Traverse(fn)
	}
}

// Find returns the first node named name in pre-order, or nil.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}

// LocalMatrix returns translation * rotation(XYZ) * scale.
func (n *Node) LocalMatrix() mgl32.Mat4 {
	t := mgl32.Translate3D(n.Position.X(), n.Position.Y(), n.Position.Z())
	r := mgl32.HomogRotate3DX(n.Rotation.X()).
		Mul4(mgl32.HomogRotate3DY(n.Rotation.Y())).
		Mul4(mgl32.HomogRotate3DZ(n.Rotation.Z()))
	s := mgl32.Scale3D(n.Scale.X(), n.Scale.Y(), n.Scale.Z())
	return t.Mul4(r).Mul4(s)
}

// WorldMatrix composes the local matrices from the root down to n.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	m := n.LocalMatrix()
	for p := n.parent; p != nil; p = p.parent {
		m = p.LocalMatrix().Mul4(m)
	}
	return m
}

// WorldPosition returns the node's origin in world space.
func (n *Node) WorldPosition() mgl32.Vec3 {
	return n.WorldMatrix().Col(3).Vec3()
}

// Census counts nodes by kind.
type Census struct {
	Meshes int
	Groups int
	Lines  int
	Lights int
}

// Count returns the census of every descendant of root.
func Count(root *Node) Census {
	var c Census
	root.Traverse(func(n *Node) {
		switch n.Kind {
		case KindMesh:
			c.Meshes++
		case KindGroup:
			c.Groups++
		case KindLine:
			c.Lines++
		case KindLight:
			c.Lights++
		}
	})
	return c
}
