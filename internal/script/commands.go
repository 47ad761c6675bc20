package script

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/jinzhu/copier"

	"scene-studio/internal/physics"
	"scene-studio/internal/primitives"
	"scene-studio/internal/scene"
)

// runContext carries the four handles a unit runs against.
type runContext struct {
	eng      *Engine
	root     *scene.Node
	cam      *scene.Camera
	renderer scene.Renderer
}

func (rc *runContext) lookup(name string) (*scene.Node, error) {
	if rc.root == nil {
		return nil, errors.New("no scene")
	}
	n := rc.root.Find(name)
	if n == nil || n == rc.root {
		return nil, fmt.Errorf("no node named %q", name)
	}
	return n, nil
}

func (rc *runContext) claim(name string) error {
	if rc.root == nil {
		return errors.New("no scene")
	}
	if rc.root.Find(name) != nil {
		return fmt.Errorf("a node named %q already exists", name)
	}
	return nil
}

type statement struct {
	line int
	verb string
	exec func(rc *runContext) error
}

type compileFunc func(d directive) (func(*runContext) error, error)

var verbs map[string]compileFunc

func init() {
	verbs = map[string]compileFunc{
		"add":        compileAdd,
		"group":      compileGroup,
		"line":       compileLine,
		"clone":      compileClone,
		"material":   compileMaterial,
		"light":      compileLight,
		"transform":  compileTransform,
		"animate":    compileAnimate,
		"physics":    compilePhysics,
		"camera":     compileCamera,
		"background": compileBackground,
		"remove":     compileRemove,
		"clear":      compileClear,
	}
}

// Verbs lists the statement verbs the interpreter understands.
func Verbs() []string {
	out := make([]string, 0, len(verbs))
	for v := range verbs {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func compile(d directive) (statement, error) {
	fn, ok := verbs[d.verb]
	if !ok {
		return statement{}, fmt.Errorf("unknown statement (want one of %s)", strings.Join(Verbs(), ", "))
	}
	exec, err := fn(d)
	if err != nil {
		return statement{}, err
	}
	return statement{line: d.line, verb: d.verb, exec: exec}, nil
}

var (
	transformKeys = []string{"position", "rotation", "scale", "visible", "parent"}
	materialKeys  = []string{"color", "metalness", "roughness", "opacity", "wireframe", "side"}
)

func allowProps(d directive, groups ...[]string) error {
	allowed := make(map[string]bool)
	for _, g := range groups {
		for _, k := range g {
			allowed[k] = true
		}
	}
	for k := range d.props {
		if !allowed[k] {
			return fmt.Errorf("unknown property %q", k)
		}
	}
	return nil
}

func wantArgs(d directive, min, max int, usage string) error {
	if len(d.args) < min || (max >= 0 && len(d.args) > max) {
		return fmt.Errorf("usage: %s %s", d.verb, usage)
	}
	return nil
}

// placement is the compiled form of the common transform properties.
type placement struct {
	position *mgl32.Vec3
	rotation *mgl32.Vec3
	scale    *mgl32.Vec3
	visible  *bool
	parent   string
}

func compilePlacement(d directive) (placement, error) {
	var p placement
	if s, ok := d.props["position"]; ok {
		v, err := parseVec3(s)
		if err != nil {
			return p, fmt.Errorf("position: %w", err)
		}
		p.position = &v
	}
	if s, ok := d.props["rotation"]; ok {
		v, err := parseVec3(s)
		if err != nil {
			return p, fmt.Errorf("rotation: %w", err)
		}
		p.rotation = &v
	}
	if s, ok := d.props["scale"]; ok {
		v, err := parseScale(s)
		if err != nil {
			return p, fmt.Errorf("scale: %w", err)
		}
		p.scale = &v
	}
	if s, ok := d.props["visible"]; ok {
		b, err := parseBool(s)
		if err != nil {
			return p, fmt.Errorf("visible: %w", err)
		}
		p.visible = &b
	}
	p.parent = d.props["parent"]
	return p, nil
}

func (p placement) apply(rc *runContext, n *scene.Node) error {
	if p.parent != "" {
		parent, err := rc.lookup(p.parent)
		if err != nil {
			return fmt.Errorf("parent: %w", err)
		}
		for q := parent; q != nil; q = q.Parent() {
			if q == n {
				return fmt.Errorf("cannot parent %q under its own descendant %q", n.Name, parent.Name)
			}
		}
		parent.Add(n)
	}
	if p.position != nil {
		n.Position = *p.position
	}
	if p.rotation != nil {
		n.Rotation = *p.rotation
	}
	if p.scale != nil {
		n.Scale = *p.scale
	}
	if p.visible != nil {
		n.Visible = *p.visible
	}
	return nil
}

// attach adds n under root unless placement moves it elsewhere.
func (p placement) attach(rc *runContext, n *scene.Node) error {
	if p.parent == "" {
		rc.root.Add(n)
	}
	return p.apply(rc, n)
}

// surface is the compiled form of the material properties.
type surface struct {
	color     *scene.Color
	metalness *float32
	roughness *float32
	opacity   *float32
	wireframe *bool
	double    *bool
}

func compileSurface(d directive) (surface, error) {
	var s surface
	if v, ok := d.props["color"]; ok {
		c, err := parseColor(v)
		if err != nil {
			return s, fmt.Errorf("color: %w", err)
		}
		s.color = &c
	}
	for key, dst := range map[string]**float32{
		"metalness": &s.metalness,
		"roughness": &s.roughness,
		"opacity":   &s.opacity,
	} {
		if v, ok := d.props[key]; ok {
			f, err := parseUnit(v)
			if err != nil {
				return s, fmt.Errorf("%s: %w", key, err)
			}
			*dst = &f
		}
	}
	if v, ok := d.props["wireframe"]; ok {
		b, err := parseBool(v)
		if err != nil {
			return s, fmt.Errorf("wireframe: %w", err)
		}
		s.wireframe = &b
	}
	if v, ok := d.props["side"]; ok {
		var double bool
		switch strings.ToLower(v) {
		case "double":
			double = true
		case "front":
		default:
			return s, fmt.Errorf("side: want front or double, got %q", v)
		}
		s.double = &double
	}
	return s, nil
}

func (s surface) apply(m *scene.Material) {
	if s.color != nil {
		m.Color = *s.color
	}
	if s.metalness != nil {
		m.Metalness = *s.metalness
	}
	if s.roughness != nil {
		m.Roughness = *s.roughness
	}
	if s.opacity != nil {
		m.Opacity = *s.opacity
	}
	if s.wireframe != nil {
		m.Wireframe = *s.wireframe
	}
	if s.double != nil {
		m.DoubleSided = *s.double
	}
}

// add <name> <shape> [size...] [segments=n] [material props] [transform props]
func compileAdd(d directive) (func(*runContext) error, error) {
	if err := wantArgs(d, 2, -1, "<name> <shape> [size...]"); err != nil {
		return nil, err
	}
	if err := allowProps(d, transformKeys, materialKeys, []string{"segments"}); err != nil {
		return nil, err
	}
	name, shape := d.args[0], strings.ToLower(d.args[1])
	if _, ok := primitives.Default().Def(shape); !ok {
		return nil, fmt.Errorf("unknown shape %q (want one of %s)", shape, strings.Join(primitives.Default().Shapes(), ", "))
	}
	sizes := make([]float32, 0, len(d.args)-2)
	for _, a := range d.args[2:] {
		v, err := parseNumber(a)
		if err != nil {
			return nil, err
		}
		sizes = append(sizes, v)
	}
	segments := 0
	if v, ok := d.props["segments"]; ok {
		f, err := parseNumber(v)
		if err != nil || f < 3 || f != math32.Floor(f) {
			return nil, fmt.Errorf("segments: want a whole number of at least 3, got %q", v)
		}
		segments = int(f)
	}
	surf, err := compileSurface(d)
	if err != nil {
		return nil, err
	}
	place, err := compilePlacement(d)
	if err != nil {
		return nil, err
	}
	return func(rc *runContext) error {
		if err := rc.claim(name); err != nil {
			return err
		}
		g, err := rc.eng.Primitives.Geometry(shape, sizes)
		if err != nil {
			return err
		}
		if segments > 0 {
			g.Segments = segments
		}
		m := rc.eng.Primitives.Material(shape)
		surf.apply(m)
		return place.attach(rc, scene.NewMesh(name, g, m))
	}, nil
}

// group <name> [transform props]
func compileGroup(d directive) (func(*runContext) error, error) {
	if err := wantArgs(d, 1, 1, "<name>"); err != nil {
		return nil, err
	}
	if err := allowProps(d, transformKeys); err != nil {
		return nil, err
	}
	name := d.args[0]
	place, err := compilePlacement(d)
	if err != nil {
		return nil, err
	}
	return func(rc *runContext) error {
		if err := rc.claim(name); err != nil {
			return err
		}
		return place.attach(rc, scene.NewGroup(name))
	}, nil
}

// line <name> x,y,z x,y,z... [color=] [opacity=] [transform props]
func compileLine(d directive) (func(*runContext) error, error) {
	if err := wantArgs(d, 3, -1, "<name> x,y,z x,y,z..."); err != nil {
		return nil, err
	}
	if err := allowProps(d, transformKeys, []string{"color", "opacity"}); err != nil {
		return nil, err
	}
	name := d.args[0]
	points := make([]mgl32.Vec3, 0, len(d.args)-1)
	for _, a := range d.args[1:] {
		p, err := parseVec3(a)
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	surf, err := compileSurface(d)
	if err != nil {
		return nil, err
	}
	place, err := compilePlacement(d)
	if err != nil {
		return nil, err
	}
	return func(rc *runContext) error {
		if err := rc.claim(name); err != nil {
			return err
		}
		m := scene.NewMaterial(scene.White)
		surf.apply(m)
		pts := make([]mgl32.Vec3, len(points))
		copy(pts, points)
		return place.attach(rc, scene.NewLine(name, pts, m))
	}, nil
}

// clone <src> <dst> [transform props]
func compileClone(d directive) (func(*runContext) error, error) {
	if err := wantArgs(d, 2, 2, "<source> <name>"); err != nil {
		return nil, err
	}
	if err := allowProps(d, transformKeys); err != nil {
		return nil, err
	}
	src, dst := d.args[0], d.args[1]
	place, err := compilePlacement(d)
	if err != nil {
		return nil, err
	}
	return func(rc *runContext) error {
		orig, err := rc.lookup(src)
		if err != nil {
			return err
		}
		if err := rc.claim(dst); err != nil {
			return err
		}
		dup, err := cloneNode(orig, dst)
		if err != nil {
			return err
		}
		if place.parent == "" && orig.Parent() != nil {
			orig.Parent().Add(dup)
		}
		return place.apply(rc, dup)
	}, nil
}

// cloneNode copies n and its subtree. Geometry is shared, materials are copied.
// Descendants are renamed "<name>/<child>" to keep names unique.
func cloneNode(n *scene.Node, name string) (*scene.Node, error) {
	dup := &scene.Node{
		Name:     name,
		Kind:     n.Kind,
		Position: n.Position,
		Rotation: n.Rotation,
		Scale:    n.Scale,
		Visible:  n.Visible,
		Geometry: n.Geometry,
	}
	if n.Material != nil {
		m := &scene.Material{}
		if err := copier.Copy(m, n.Material); err != nil {
			return nil, err
		}
		dup.Material = m
	}
	if n.Light != nil {
		l := *n.Light
		dup.Light = &l
	}
	for _, c := range n.Children() {
		cc, err := cloneNode(c, name+"/"+c.Name)
		if err != nil {
			return nil, err
		}
		dup.Add(cc)
	}
	return dup, nil
}

// material <name> [material props]
func compileMaterial(d directive) (func(*runContext) error, error) {
	if err := wantArgs(d, 1, 1, "<name> [color=] [metalness=] [roughness=] [opacity=] [wireframe=] [side=]"); err != nil {
		return nil, err
	}
	if err := allowProps(d, materialKeys); err != nil {
		return nil, err
	}
	if len(d.props) == 0 {
		return nil, errors.New("nothing to change")
	}
	name := d.args[0]
	surf, err := compileSurface(d)
	if err != nil {
		return nil, err
	}
	return func(rc *runContext) error {
		n, err := rc.lookup(name)
		if err != nil {
			return err
		}
		if n.Material == nil {
			return fmt.Errorf("%q is a %s and has no material", name, n.Kind)
		}
		surf.apply(n.Material)
		return nil
	}, nil
}

// light <name> [type] [color=] [intensity=] [transform props]
// Creates the light when name is new, otherwise updates it.
func compileLight(d directive) (func(*runContext) error, error) {
	if err := wantArgs(d, 1, 2, "<name> [ambient|directional|point|hemisphere]"); err != nil {
		return nil, err
	}
	if err := allowProps(d, transformKeys, []string{"color", "intensity"}); err != nil {
		return nil, err
	}
	name := d.args[0]
	var typ scene.LightType
	if len(d.args) == 2 {
		typ = scene.LightType(strings.ToLower(d.args[1]))
		switch typ {
		case scene.LightAmbient, scene.LightDirectional, scene.LightPoint, scene.LightHemisphere:
		default:
			return nil, fmt.Errorf("unknown light type %q", d.args[1])
		}
	}
	var color *scene.Color
	if v, ok := d.props["color"]; ok {
		c, err := parseColor(v)
		if err != nil {
			return nil, fmt.Errorf("color: %w", err)
		}
		color = &c
	}
	var intensity *float32
	if v, ok := d.props["intensity"]; ok {
		f, err := parseNumber(v)
		if err != nil || f < 0 {
			return nil, fmt.Errorf("intensity: want a non-negative number, got %q", v)
		}
		intensity = &f
	}
	place, err := compilePlacement(d)
	if err != nil {
		return nil, err
	}
	return func(rc *runContext) error {
		if rc.root == nil {
			return errors.New("no scene")
		}
		n := rc.root.Find(name)
		switch {
		case n == nil:
			if typ == "" {
				return fmt.Errorf("no light named %q; give a type to create one", name)
			}
			n = scene.NewLight(name, &scene.Light{Type: typ, Color: scene.White, Intensity: 1})
			if place.parent == "" {
				rc.root.Add(n)
			}
		case n.Kind != scene.KindLight:
			return fmt.Errorf("%q is a %s, not a light", name, n.Kind)
		case typ != "":
			n.Light.Type = typ
		}
		if color != nil {
			n.Light.Color = *color
		}
		if intensity != nil {
			n.Light.Intensity = *intensity
		}
		return place.apply(rc, n)
	}, nil
}

// transform <name> [transform props]
func compileTransform(d directive) (func(*runContext) error, error) {
	if err := wantArgs(d, 1, 1, "<name> [position=] [rotation=] [scale=] [visible=] [parent=]"); err != nil {
		return nil, err
	}
	if err := allowProps(d, transformKeys); err != nil {
		return nil, err
	}
	if len(d.props) == 0 {
		return nil, errors.New("nothing to change")
	}
	name := d.args[0]
	place, err := compilePlacement(d)
	if err != nil {
		return nil, err
	}
	return func(rc *runContext) error {
		n, err := rc.lookup(name)
		if err != nil {
			return err
		}
		return place.apply(rc, n)
	}, nil
}

// animate <name> [rotate=x,y,z] [bob=amp,speed] [orbit=radius,speed] [pulse=amount,speed]
// rotate adds radians every frame; the others follow elapsed time.
func compileAnimate(d directive) (func(*runContext) error, error) {
	if err := wantArgs(d, 1, 1, "<name> [rotate=x,y,z] [bob=amp,speed] [orbit=radius,speed] [pulse=amount,speed]"); err != nil {
		return nil, err
	}
	if err := allowProps(d, []string{"rotate", "bob", "orbit", "pulse"}); err != nil {
		return nil, err
	}
	if len(d.props) == 0 {
		return nil, errors.New("nothing to animate")
	}
	name := d.args[0]
	var (
		rotate            *mgl32.Vec3
		bob, orbit, pulse []float32
		err               error
	)
	if v, ok := d.props["rotate"]; ok {
		r, err := parseVec3(v)
		if err != nil {
			return nil, fmt.Errorf("rotate: %w", err)
		}
		rotate = &r
	}
	if v, ok := d.props["bob"]; ok {
		if bob, err = parseNumbers(v, 2); err != nil {
			return nil, fmt.Errorf("bob: %w", err)
		}
	}
	if v, ok := d.props["orbit"]; ok {
		if orbit, err = parseNumbers(v, 2); err != nil {
			return nil, fmt.Errorf("orbit: %w", err)
		}
	}
	if v, ok := d.props["pulse"]; ok {
		if pulse, err = parseNumbers(v, 2); err != nil {
			return nil, fmt.Errorf("pulse: %w", err)
		}
	}
	return func(rc *runContext) error {
		n, err := rc.lookup(name)
		if err != nil {
			return err
		}
		base := n.Position
		baseScale := n.Scale
		var elapsed float32
		id := rc.eng.OnFrame(func(dt float32) error {
			elapsed += dt
			if rotate != nil {
				n.Rotation = n.Rotation.Add(*rotate)
			}
			if orbit != nil {
				a := elapsed * orbit[1]
				n.Position[0] = base.X() + orbit[0]*math32.Cos(a)
				n.Position[2] = base.Z() + orbit[0]*math32.Sin(a)
			}
			if bob != nil {
				n.Position[1] = base.Y() + bob[0]*math32.Sin(elapsed*bob[1])
			}
			if pulse != nil {
				n.Scale = baseScale.Mul(1 + pulse[0]*math32.Sin(elapsed*pulse[1]))
			}
			return nil
		})
		rc.eng.bind(n, func() { rc.eng.CancelFrame(id) })
		return nil
	}, nil
}

// minThickness keeps flat shapes such as planes solid enough to rest on.
const minThickness = 0.02

// physics <name> [static=] [mass=] [velocity=] [size=] [gravity=]
func compilePhysics(d directive) (func(*runContext) error, error) {
	if err := wantArgs(d, 1, 1, "<name> [static=true] [mass=] [velocity=x,y,z] [size=x,y,z] [gravity=x,y,z]"); err != nil {
		return nil, err
	}
	if err := allowProps(d, []string{"static", "mass", "velocity", "size", "gravity"}); err != nil {
		return nil, err
	}
	name := d.args[0]
	var (
		static        bool
		mass          float32 = 1
		velocity      mgl32.Vec3
		size, gravity *mgl32.Vec3
		err           error
	)
	if v, ok := d.props["static"]; ok {
		if static, err = parseBool(v); err != nil {
			return nil, fmt.Errorf("static: %w", err)
		}
	}
	if v, ok := d.props["mass"]; ok {
		if mass, err = parseNumber(v); err != nil {
			return nil, fmt.Errorf("mass: %w", err)
		}
		if mass <= 0 {
			return nil, errors.New("mass: must be positive")
		}
	}
	if v, ok := d.props["velocity"]; ok {
		if velocity, err = parseVec3(v); err != nil {
			return nil, fmt.Errorf("velocity: %w", err)
		}
	}
	if v, ok := d.props["size"]; ok {
		s, err := parseVec3(v)
		if err != nil {
			return nil, fmt.Errorf("size: %w", err)
		}
		size = &s
	}
	if v, ok := d.props["gravity"]; ok {
		g, err := parseVec3(v)
		if err != nil {
			return nil, fmt.Errorf("gravity: %w", err)
		}
		gravity = &g
	}
	return func(rc *runContext) error {
		n, err := rc.lookup(name)
		if err != nil {
			return err
		}
		extent := nodeExtent(n)
		if size != nil {
			extent = *size
		}
		for i := range 3 {
			extent[i] = max(extent[i], minThickness)
		}
		b := physics.NewBody(n.Position, extent, mass, static)
		b.Velocity = velocity
		b.OnMove = func(p mgl32.Vec3) { n.Position = p }
		w := rc.eng.World()
		if gravity != nil {
			w.SetGravity(*gravity)
		}
		w.Add(b)
		rc.eng.bind(n, func() { w.Remove(b) })
		return nil
	}, nil
}

// nodeExtent returns the axis-aligned size of n in its parent's space: the shape's own
// extent rotated and scaled by the node's local transform.
func nodeExtent(n *scene.Node) mgl32.Vec3 {
	local := mgl32.Vec3{1, 1, 1}
	if n.Geometry != nil {
		local = shapeExtent(n.Geometry)
	}
	m := n.LocalMatrix().Mat3()
	var out mgl32.Vec3
	for row := range 3 {
		for col := range 3 {
			out[row] += math32.Abs(m.At(row, col)) * local[col]
		}
	}
	return out
}

// shapeExtent returns the unscaled size of g. Planes lie in their local XY plane.
func shapeExtent(g *scene.Geometry) mgl32.Vec3 {
	param := func(i int, def float32) float32 {
		if i < len(g.Params) && g.Params[i] > 0 {
			return g.Params[i]
		}
		return def
	}
	switch g.Shape {
	case scene.ShapeBox:
		return mgl32.Vec3{param(0, 1), param(1, 1), param(2, 1)}
	case scene.ShapeSphere:
		d := 2 * param(0, 0.5)
		return mgl32.Vec3{d, d, d}
	case scene.ShapeCylinder, scene.ShapeCone:
		d := 2 * param(0, 0.5)
		return mgl32.Vec3{d, param(1, 1), d}
	case scene.ShapePlane:
		return mgl32.Vec3{param(0, 1), param(1, 1), 0}
	case scene.ShapeTorus:
		tube := param(1, 0.2)
		d := 2 * (param(0, 0.5) + tube)
		return mgl32.Vec3{d, d, 2 * tube}
	}
	return mgl32.Vec3{1, 1, 1}
}

// camera [position=] [lookat=] [fov=] [near=] [far=]
func compileCamera(d directive) (func(*runContext) error, error) {
	if err := wantArgs(d, 0, 0, "[position=x,y,z] [lookat=x,y,z] [fov=] [near=] [far=]"); err != nil {
		return nil, err
	}
	if err := allowProps(d, []string{"position", "lookat", "fov", "near", "far"}); err != nil {
		return nil, err
	}
	if len(d.props) == 0 {
		return nil, errors.New("nothing to change")
	}
	var position, lookat *mgl32.Vec3
	if v, ok := d.props["position"]; ok {
		p, err := parseVec3(v)
		if err != nil {
			return nil, fmt.Errorf("position: %w", err)
		}
		position = &p
	}
	if v, ok := d.props["lookat"]; ok {
		p, err := parseVec3(v)
		if err != nil {
			return nil, fmt.Errorf("lookat: %w", err)
		}
		lookat = &p
	}
	scalars := make(map[string]float32)
	for _, key := range []string{"fov", "near", "far"} {
		if v, ok := d.props[key]; ok {
			f, err := parseNumber(v)
			if err != nil || f <= 0 {
				return nil, fmt.Errorf("%s: want a positive number, got %q", key, v)
			}
			scalars[key] = f
		}
	}
	if fov, ok := scalars["fov"]; ok && fov >= 180 {
		return nil, fmt.Errorf("fov: %g is not below 180", fov)
	}
	return func(rc *runContext) error {
		if rc.cam == nil {
			return errors.New("no camera")
		}
		near, far := rc.cam.Near, rc.cam.Far
		if v, ok := scalars["near"]; ok {
			near = v
		}
		if v, ok := scalars["far"]; ok {
			far = v
		}
		if far <= near {
			return fmt.Errorf("far %g must exceed near %g", far, near)
		}
		rc.cam.Near, rc.cam.Far = near, far
		if v, ok := scalars["fov"]; ok {
			rc.cam.Fov = v
		}
		if position != nil {
			rc.cam.Position = *position
		}
		if lookat != nil {
			rc.cam.LookAt(*lookat)
		}
		return nil
	}, nil
}

// background <color>
func compileBackground(d directive) (func(*runContext) error, error) {
	if err := wantArgs(d, 1, 1, "<color>"); err != nil {
		return nil, err
	}
	if err := allowProps(d); err != nil {
		return nil, err
	}
	c, err := parseColor(d.args[0])
	if err != nil {
		return nil, err
	}
	return func(rc *runContext) error {
		if rc.renderer != nil {
			rc.renderer.SetClearColor(c)
		}
		return nil
	}, nil
}

// remove <name>
func compileRemove(d directive) (func(*runContext) error, error) {
	if err := wantArgs(d, 1, 1, "<name>"); err != nil {
		return nil, err
	}
	if err := allowProps(d); err != nil {
		return nil, err
	}
	name := d.args[0]
	return func(rc *runContext) error {
		n, err := rc.lookup(name)
		if err != nil {
			return err
		}
		n.RemoveFromParent()
		rc.eng.Release(n)
		scene.DisposeUnreachable(rc.root, n)
		return nil
	}, nil
}

// clear removes every node, lights included.
func compileClear(d directive) (func(*runContext) error, error) {
	if err := wantArgs(d, 0, 0, ""); err != nil {
		return nil, err
	}
	if err := allowProps(d); err != nil {
		return nil, err
	}
	return func(rc *runContext) error {
		if rc.root == nil {
			return errors.New("no scene")
		}
		removed := rc.root.Clear()
		rc.eng.Release(removed...)
		scene.DisposeUnreachable(rc.root, removed...)
		return nil
	}, nil
}
