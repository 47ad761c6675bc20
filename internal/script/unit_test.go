package script

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-studio/internal/scene"
)

func TestNormalizeNeverFails(t *testing.T) {
	payloads := []any{
		nil,
		"",
		"   \n\t",
		"function (",
		"add cube teapot",
		"frobnicate everything",
		[]byte("add cube box"),
		42,
		struct{}{},
		(*Program)(nil),
		UnitFunc(nil),
	}
	for _, p := range payloads {
		u := Normalize(p)
		require.NotNil(t, u, "payload %#v", p)
	}
	assert.Same(t, Default(), Normalize(nil))
	assert.Same(t, Default(), Normalize("function ("))
	assert.Same(t, Default(), Normalize(42))
}

func TestNormalizeErrReportsSubstitution(t *testing.T) {
	u, err := NormalizeErr("add cube teapot")
	assert.Same(t, Default(), u)
	assert.ErrorIs(t, err, ErrSyntax)

	u, err = NormalizeErr(3.5)
	assert.Same(t, Default(), u)
	assert.ErrorIs(t, err, ErrSyntax)

	_, err = NormalizeErr(nil)
	assert.NoError(t, err)
}

func TestNormalizePassesUnitsThrough(t *testing.T) {
	called := false
	fn := UnitFunc(func(*Engine, *scene.Node, *scene.Camera, scene.Renderer) error {
		called = true
		return nil
	})
	u := Normalize(fn)
	require.NoError(t, u.Run(nil, scene.NewRoot(), nil, nil))
	assert.True(t, called)

	raw := func(*Engine, *scene.Node, *scene.Camera, scene.Renderer) error { return errors.New("boom") }
	assert.EqualError(t, Normalize(raw).Run(nil, nil, nil, nil), "boom")

	p := MustParse("clear")
	assert.Same(t, p, Normalize(p))
}

func TestAnonymousFunctionGetsCanonicalName(t *testing.T) {
	u := Normalize("function (engine, scene, camera, renderer) {\n  add cube box\n}")
	src, ok := Source(u)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(src, "function sceneSetup("), src)

	p := u.(*Program)
	assert.Equal(t, CanonicalName, p.Name)
	assert.Equal(t, CanonicalParams, p.Params)
	assert.Equal(t, 1, p.Len())
}

func TestNamedFunctionKeepsItsName(t *testing.T) {
	p, err := Parse("function build(engine, scene) {\n  add cube box\n}")
	require.NoError(t, err)
	assert.Equal(t, "build", p.Name)
	assert.Equal(t, []string{"engine", "scene"}, p.Params)
}

func TestBareStatementsAreWrapped(t *testing.T) {
	p, err := Parse("add cube box 1 1 1\nlight key point position=0,3,0")
	require.NoError(t, err)
	assert.Equal(t, CanonicalName, p.Name)
	assert.Equal(t, 2, p.Len())
	assert.Equal(t, "function sceneSetup(engine, scene, camera, renderer) {\nadd cube box 1 1 1\nlight key point position=0,3,0\n}", p.Source())
}

func TestSourceRoundTrips(t *testing.T) {
	for _, text := range []string{
		DefaultSource(),
		"function (a, b) { add cube box; animate cube rotate=0,0.01,0 }",
		"group rig\nadd arm cylinder 0.1 1 parent=rig",
	} {
		p, err := Parse(text)
		require.NoError(t, err, text)
		again, err := Parse(p.Source())
		require.NoError(t, err)
		assert.Equal(t, p.Source(), again.Source())
		assert.Equal(t, p.Name, again.Name)
		assert.Equal(t, p.Len(), again.Len())
	}
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"too many params":  "function f(a, b, c, d, e) { clear }",
		"bad param":        "function f(1a) { clear }",
		"no closing brace": "function f() { clear",
		"trailing text":    "function f() { clear } add x box",
		"call of another":  "function f() { clear }\ng()",
		"call too long":    "function f() { clear }\nf(a, b, c, d, e)",
		"unknown verb":     "explode cube",
		"unknown shape":    "add cube teapot",
		"unknown prop":     "add cube box glow=1",
		"bad number":       "add cube box one",
		"bad color":        "add cube box color=chartreuse-ish",
		"metalness range":  "add cube box metalness=2",
		"line too short":   "line path 0,0,0",
		"light type":       "light l laser",
		"empty animate":    "animate cube",
		"camera fov":       "camera fov=200",
		"duplicate prop":   "add cube box color=red color=blue",
		"open quote":       "add \"cube box",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(text)
			assert.ErrorIs(t, err, ErrSyntax)
		})
	}
}

func TestDeclarationTrailers(t *testing.T) {
	cases := map[string]string{
		"line comment":   "function build(engine, scene, camera, renderer) {\n  add box1 box\n} // done",
		"self call":      "function build(engine, scene, camera, renderer) {\n  add box1 box\n}\nbuild(engine, scene, camera, renderer);",
		"bare self call": "function build() {\n  add box1 box\n}\nbuild()",
		"brace in note":  "function build(engine) {\n  add box1 box\n}\n// see } above",
		"semicolons":     "function build(engine) { add box1 box };;",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			u, err := NormalizeErr(text)
			require.NoError(t, err)
			p, ok := u.(*Program)
			require.True(t, ok)
			assert.NotSame(t, Default(), p)
			assert.Equal(t, "build", p.Name)
			assert.Equal(t, 1, p.Len())
		})
	}
}

func TestCommentsAndSemicolons(t *testing.T) {
	p, err := Parse("// a comment\nadd a box; add b sphere // trailing\n\n;")
	require.NoError(t, err)
	assert.Equal(t, 2, p.Len())
}

func TestDefaultUnitBuildsScene(t *testing.T) {
	root := scene.NewRoot()
	cam := scene.NewPerspectiveCamera(75, 1, 0.1, 1000)
	eng := NewEngine(nil, nil)
	require.NoError(t, Default().Run(eng, root, cam, nil))

	c := scene.Count(root)
	assert.Equal(t, 2, c.Meshes)
	assert.Equal(t, 2, c.Lights)
	assert.Equal(t, 1, eng.Frames().Len())
	assert.NotNil(t, root.Find("cube"))
}
