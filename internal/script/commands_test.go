package script

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-studio/internal/scene"
)

type recordingRenderer struct {
	clear scene.Color
}

func (r *recordingRenderer) Render(*scene.Node, *scene.Camera) {}
func (r *recordingRenderer) SetSize(int, int)                  {}
func (r *recordingRenderer) SetClearColor(c scene.Color)       { r.clear = c }
func (r *recordingRenderer) Dispose()                          {}

type fixture struct {
	eng  *Engine
	root *scene.Node
	cam  *scene.Camera
	r    *recordingRenderer
}

func newFixture() *fixture {
	return &fixture{
		eng:  NewEngine(nil, nil),
		root: scene.NewRoot(),
		cam:  scene.NewPerspectiveCamera(75, 1, 0.1, 1000),
		r:    &recordingRenderer{},
	}
}

func (f *fixture) run(t *testing.T, text string) error {
	t.Helper()
	p, err := Parse(text)
	require.NoError(t, err)
	return p.Run(f.eng, f.root, f.cam, f.r)
}

func TestAddAppliesProps(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.run(t, "add ball sphere 2 segments=32 color=red metalness=0.5 opacity=0.5 wireframe=true position=1,2,3 scale=2"))

	n := f.root.Find("ball")
	require.NotNil(t, n)
	assert.Equal(t, scene.KindMesh, n.Kind)
	assert.Equal(t, []float32{2}, n.Geometry.Params)
	assert.Equal(t, 32, n.Geometry.Segments)
	assert.Equal(t, scene.Hex(0xff0000), n.Material.Color)
	assert.Equal(t, float32(0.5), n.Material.Metalness)
	assert.Equal(t, float32(0.5), n.Material.Opacity)
	assert.True(t, n.Material.Wireframe)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, n.Position)
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, n.Scale)
}

func TestGroupsAndParenting(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.run(t, `
group car position=0,1,0
add body box 2 0.5 1 parent=car
add wheel cylinder 0.3 0.2 parent=car position=1,-0.25,0.5
`))
	car := f.root.Find("car")
	require.NotNil(t, car)
	assert.Len(t, car.Children(), 2)
	assert.InDelta(t, 0.75, f.root.Find("wheel").WorldPosition().Y(), 1e-5)

	err := f.run(t, "transform car parent=wheel")
	assert.ErrorIs(t, err, ErrExec)
	assert.ErrorContains(t, err, "descendant")
}

func TestRuntimeErrorsNameTheLine(t *testing.T) {
	f := newFixture()
	err := f.run(t, "add cube box\nmaterial ghost color=red")
	require.ErrorIs(t, err, ErrExec)
	assert.ErrorContains(t, err, "line 2")
	assert.ErrorContains(t, err, `no node named "ghost"`)
	assert.NotNil(t, f.root.Find("cube"), "earlier statements stay applied")

	err = f.run(t, "add cube box")
	assert.ErrorContains(t, err, "already exists")

	err = f.run(t, "add huge box 0")
	assert.ErrorContains(t, err, "width must be positive")
}

func TestLightCreateAndUpdate(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.run(t, "light key point color=0xffcc00 intensity=2 position=0,4,0"))
	n := f.root.Find("key")
	require.NotNil(t, n)
	assert.Equal(t, scene.LightPoint, n.Light.Type)
	assert.Equal(t, float32(2), n.Light.Intensity)

	require.NoError(t, f.run(t, "light key intensity=0.5"))
	assert.Equal(t, float32(0.5), n.Light.Intensity)
	assert.Equal(t, scene.Hex(0xffcc00), n.Light.Color)
	assert.Equal(t, 1, scene.Count(f.root).Lights)

	assert.ErrorContains(t, f.run(t, "light fill intensity=1"), "give a type")
}

func TestCloneSharesGeometry(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.run(t, "add a box 1 2 3 color=blue\nclone a b position=3,0,0"))
	a, b := f.root.Find("a"), f.root.Find("b")
	require.NotNil(t, b)
	assert.Same(t, a.Geometry, b.Geometry)
	assert.NotSame(t, a.Material, b.Material)
	assert.Equal(t, a.Material.Color, b.Material.Color)
	assert.Equal(t, mgl32.Vec3{3, 0, 0}, b.Position)

	require.NoError(t, f.run(t, "remove b"))
	assert.True(t, b.Material.Disposed())
	assert.False(t, a.Geometry.Disposed(), "geometry is still used by a")
	assert.False(t, a.Material.Disposed())
}

func TestRemoveKeepsSharedResources(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.run(t, "add a box\nadd b box"))
	a, b := f.root.Find("a"), f.root.Find("b")
	b.Material = a.Material

	require.NoError(t, f.run(t, "remove b"))
	assert.Nil(t, f.root.Find("b"))
	assert.True(t, b.Geometry.Disposed())
	assert.False(t, a.Material.Disposed())
}

func TestClearRemovesEverything(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.run(t, "add a box\nlight sun directional\nline edge 0,0,0 1,1,1"))
	a := f.root.Find("a")
	require.NoError(t, f.run(t, "clear"))
	assert.Empty(t, f.root.Children())
	assert.True(t, a.Geometry.Disposed())
	assert.True(t, a.Material.Disposed())
}

func TestAnimateRegistersFrameWork(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.run(t, "add a box position=0,1,0\nanimate a rotate=0.1,0,0 bob=0.5,1"))
	assert.Equal(t, 1, f.eng.Frames().Len())

	n := f.root.Find("a")
	require.NoError(t, f.eng.Frames().Run(0.5))
	require.NoError(t, f.eng.Frames().Run(0.5))
	assert.InDelta(t, 0.2, n.Rotation.X(), 1e-6)
	assert.InDelta(t, 1+0.5*math32.Sin(1), n.Position.Y(), 1e-5)
}

func TestCameraAndBackground(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.run(t, "camera position=0,5,10 lookat=0,1,0 fov=60\nbackground 0x112233"))
	assert.Equal(t, mgl32.Vec3{0, 5, 10}, f.cam.Position)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, f.cam.Target)
	assert.Equal(t, float32(60), f.cam.Fov)
	assert.Equal(t, scene.Hex(0x112233), f.r.clear)

	assert.ErrorContains(t, f.run(t, "camera near=2000"), "must exceed near")
}

func TestMaterialNeedsSurface(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.run(t, "group g\nadd a plane side=double"))
	assert.True(t, f.root.Find("a").Material.DoubleSided)
	assert.ErrorContains(t, f.run(t, "material g color=red"), "has no material")
}

func TestPhysicsDropsOntoStaticBody(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.run(t, `add floor plane 10 10 rotation=pi/2,0,0 position=0,-1,0
add crate box position=0,1,0
physics floor static=true
physics crate`))
	assert.Equal(t, 1, f.eng.Frames().Len())
	assert.Equal(t, 2, f.eng.World().Len())

	crate := f.root.Find("crate")
	for range 120 {
		require.NoError(t, f.eng.Frames().Run(1.0/60))
	}
	// The plane is flat on its side, so it is only minThickness tall.
	assert.InDelta(t, -1+minThickness/2+0.5, crate.Position.Y(), 1e-3)
	assert.Equal(t, mgl32.Vec3{0, -1, 0}, f.root.Find("floor").Position)
}

func TestPhysicsWorldFollowsGeneration(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.run(t, "add a box\nphysics a gravity=0,0,0 velocity=1,0,0"))
	first := f.eng.World()
	assert.Equal(t, mgl32.Vec3{}, first.Gravity())

	require.NoError(t, f.eng.Frames().Run(0.5))
	assert.InDelta(t, 0.5, f.root.Find("a").Position.X(), 1e-5)

	f.eng.Frames().Advance()
	require.NoError(t, f.run(t, "add b box\nphysics b"))
	assert.NotSame(t, first, f.eng.World())
	assert.Equal(t, 1, f.eng.World().Len())
	assert.Equal(t, 1, f.eng.Frames().Len())
}

func TestPhysicsRejectsBadProps(t *testing.T) {
	for _, text := range []string{
		"physics a mass=0",
		"physics a bounce=1",
		"physics a size=1,2",
		"physics",
	} {
		_, err := Parse(text)
		assert.ErrorIs(t, err, ErrSyntax, text)
	}
	f := newFixture()
	assert.ErrorContains(t, f.run(t, "physics ghost"), "no node named")
}

func TestNodeExtent(t *testing.T) {
	n := scene.NewMesh("t", scene.NewGeometry(scene.ShapeCylinder, 0.5, 2), scene.NewMaterial(scene.Hex(0)))
	n.Scale = mgl32.Vec3{2, 1, 1}
	e := nodeExtent(n)
	assert.InDeltaSlice(t, []float32{2, 2, 1}, e[:], 1e-5)

	n.Rotation = mgl32.Vec3{0, 0, math32.Pi / 2}
	e = nodeExtent(n)
	assert.InDeltaSlice(t, []float32{2, 2, 1}, e[:], 1e-5)
}

func TestRemoveStopsNodeWork(t *testing.T) {
	f := newFixture()
	require.NoError(t, f.run(t, `add floor box 10 0.2 10 position=0,-1,0
group rig
add spinner box parent=rig
add crate box position=0,2,0
add keep sphere
animate spinner rotate=0.1,0,0
animate keep rotate=0,0.1,0
physics floor static=true
physics crate`))
	assert.Equal(t, 3, f.eng.Frames().Len())
	assert.Equal(t, 2, f.eng.World().Len())

	spinner := f.root.Find("spinner")
	require.NoError(t, f.run(t, "remove rig\nremove crate"))
	assert.Equal(t, 2, f.eng.Frames().Len())
	assert.Equal(t, 1, f.eng.World().Len())

	require.NoError(t, f.eng.Frames().Run(0.1))
	assert.Equal(t, float32(0), spinner.Rotation.X())
	assert.InDelta(t, 0.1, f.root.Find("keep").Rotation.Y(), 1e-6)

	require.NoError(t, f.run(t, "clear"))
	assert.Equal(t, 1, f.eng.Frames().Len(), "only the physics step is unbound")
	assert.Zero(t, f.eng.World().Len())
}
