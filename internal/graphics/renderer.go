package graphics

import (
	"errors"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"

	"scene-studio/internal/scene"
)

// Renderer draws a scene graph with raylib. Meshes are built lazily per scene.Geometry on
// first draw and unloaded when the geometry is disposed. Materials carry no GPU state: one
// lit raylib material is retinted per draw.
type Renderer struct {
	width, height int
	clear         rl.Color
	grid          bool

	shader   rl.Shader
	material rl.Material
	locs     shaderLocs
	meshes   map[*scene.Geometry]rl.Mesh
	lights   lighting
	disposed bool
}

type shaderLocs struct {
	viewPos, lightDir, ambient, lightColor, lightIntensity, specularPower, specularStrength int32
}

// NewRenderer loads the lit shader. It needs an open window.
func NewRenderer(grid bool) (*Renderer, error) {
	if !rl.IsWindowReady() {
		return nil, errors.New("graphics: window is not open")
	}
	shader := rl.LoadShaderFromMemory(litVS, litFS)
	if !rl.IsShaderValid(shader) {
		return nil, errors.New("graphics: lit shader failed to compile")
	}
	mtl := rl.LoadMaterialDefault()
	mtl.Shader = shader
	r := &Renderer{
		width:    rl.GetScreenWidth(),
		height:   rl.GetScreenHeight(),
		clear:    rl.Black,
		grid:     grid,
		shader:   shader,
		material: mtl,
		meshes:   make(map[*scene.Geometry]rl.Mesh),
	}
	r.locs = shaderLocs{
		viewPos:          rl.GetShaderLocation(shader, "viewPos"),
		lightDir:         rl.GetShaderLocation(shader, "lightDir"),
		ambient:          rl.GetShaderLocation(shader, "ambient"),
		lightColor:       rl.GetShaderLocation(shader, "lightColor"),
		lightIntensity:   rl.GetShaderLocation(shader, "lightIntensity"),
		specularPower:    rl.GetShaderLocation(shader, "specularPower"),
		specularStrength: rl.GetShaderLocation(shader, "specularStrength"),
	}
	return r, nil
}

func (r *Renderer) SetSize(width, height int)   { r.width, r.height = width, height }
func (r *Renderer) SetClearColor(c scene.Color) { r.clear = toColor(c, 1) }

// SetGrid toggles the editor grid.
func (r *Renderer) SetGrid(visible bool) { r.grid = visible }

// Render clears to the background color and draws root through cam. Call inside
// BeginDrawing/EndDrawing.
func (r *Renderer) Render(root *scene.Node, cam *scene.Camera) {
	if r.disposed {
		return
	}
	rl.ClearBackground(r.clear)
	if root == nil || cam == nil {
		return
	}
	r.lights = collectLights(root)
	r.setLighting(cam.Position)

	rl.BeginMode3D(rl.Camera3D{
		Position:   toVector3(cam.Position),
		Target:     toVector3(cam.Target),
		Up:         toVector3(cam.Up),
		Fovy:       cam.Fov,
		Projection: rl.CameraPerspective,
	})
	if r.grid {
		drawEditorGrid()
	}
	r.drawNode(root)
	rl.EndMode3D()
}

// Dispose unloads every mesh and the shader. The renderer draws nothing afterwards.
func (r *Renderer) Dispose() {
	if r.disposed {
		return
	}
	r.disposed = true
	for g, mesh := range r.meshes {
		rl.UnloadMesh(&mesh)
		delete(r.meshes, g)
	}
	rl.UnloadShader(r.shader)
}

func (r *Renderer) drawNode(n *scene.Node) {
	if !n.Visible {
		return
	}
	switch n.Kind {
	case scene.KindMesh:
		r.drawMesh(n)
	case scene.KindLine:
		drawLine(n)
	}
	for _, c := range n.Children() {
		r.drawNode(c)
	}
}

func (r *Renderer) drawMesh(n *scene.Node) {
	g, m := n.Geometry, n.Material
	if g == nil || m == nil || g.Disposed() {
		return
	}
	mesh, ok := r.mesh(g)
	if !ok {
		return
	}
	if albedo := r.material.GetMap(rl.MapAlbedo); albedo != nil {
		albedo.Color = toColor(m.Color, m.Opacity)
	}
	smooth := 1 - clamp01(m.Roughness)
	setFloat(r.shader, r.locs.specularPower, 4+smooth*124)
	setFloat(r.shader, r.locs.specularStrength, 0.05+smooth*0.5+clamp01(m.Metalness)*0.2)

	if m.DoubleSided {
		rl.DisableBackfaceCulling()
	}
	if m.Wireframe {
		rl.EnableWireMode()
	}
	world := n.WorldMatrix().Mul4(shapeOffset(g))
	rl.DrawMesh(mesh, r.material, toMatrix(world))
	if m.Wireframe {
		rl.DisableWireMode()
	}
	if m.DoubleSided {
		rl.EnableBackfaceCulling()
	}
}

// mesh returns the GPU mesh for g, building it on first use.
func (r *Renderer) mesh(g *scene.Geometry) (rl.Mesh, bool) {
	if mesh, ok := r.meshes[g]; ok {
		return mesh, true
	}
	mesh, ok := genMesh(g)
	if !ok {
		return rl.Mesh{}, false
	}
	r.meshes[g] = mesh
	g.OnDispose(func() {
		if mesh, ok := r.meshes[g]; ok && !r.disposed {
			rl.UnloadMesh(&mesh)
			delete(r.meshes, g)
		}
	})
	return mesh, true
}

func genMesh(g *scene.Geometry) (rl.Mesh, bool) {
	p := func(i int, def float32) float32 {
		if i < len(g.Params) && g.Params[i] > 0 {
			return g.Params[i]
		}
		return def
	}
	seg := g.Segments
	if seg < 3 {
		seg = 16
	}
	switch g.Shape {
	case scene.ShapeBox:
		return rl.GenMeshCube(p(0, 1), p(1, 1), p(2, 1)), true
	case scene.ShapeSphere:
		return rl.GenMeshSphere(p(0, 0.5), seg, seg), true
	case scene.ShapeCylinder:
		return rl.GenMeshCylinder(p(0, 0.5), p(1, 1), seg), true
	case scene.ShapeCone:
		return rl.GenMeshCone(p(0, 0.5), p(1, 1), seg), true
	case scene.ShapePlane:
		return rl.GenMeshPlane(p(0, 1), p(1, 1), 1, 1), true
	case scene.ShapeTorus:
		// raylib sizes the tube relative to the ring radius.
		radius := p(0, 0.5)
		return rl.GenMeshTorus(radius, p(1, 0.2)/radius, seg, seg), true
	}
	return rl.Mesh{}, false
}

// shapeOffset maps raylib's mesh conventions onto the scene's: planes are generated in XZ
// and stand in XY until rotated, cylinders and cones are generated base-up from Y=0 and are
// centered on the node.
func shapeOffset(g *scene.Geometry) mgl32.Mat4 {
	switch g.Shape {
	case scene.ShapePlane:
		return mgl32.HomogRotate3DX(math32.Pi / 2)
	case scene.ShapeCylinder, scene.ShapeCone:
		h := float32(1)
		if len(g.Params) > 1 && g.Params[1] > 0 {
			h = g.Params[1]
		}
		return mgl32.Translate3D(0, -h/2, 0)
	}
	return mgl32.Ident4()
}

func drawLine(n *scene.Node) {
	g := n.Geometry
	if g == nil || len(g.Points) < 2 || g.Disposed() {
		return
	}
	color := rl.White
	if n.Material != nil {
		color = toColor(n.Material.Color, n.Material.Opacity)
	}
	world := n.WorldMatrix()
	prev := mgl32.TransformCoordinate(g.Points[0], world)
	for _, pt := range g.Points[1:] {
		next := mgl32.TransformCoordinate(pt, world)
		rl.DrawLine3D(toVector3(prev), toVector3(next), color)
		prev = next
	}
}

// lighting is the reduced light set the lit shader understands: one ambient term and one
// key light.
type lighting struct {
	ambient   [3]float32
	dir       mgl32.Vec3
	color     [3]float32
	intensity float32
}

func collectLights(root *scene.Node) lighting {
	l := lighting{dir: mgl32.Vec3{0.5, 1, 0.5}, color: [3]float32{1, 1, 1}}
	keyed := false
	root.Traverse(func(n *scene.Node) {
		if n.Kind != scene.KindLight || n.Light == nil || !n.Visible {
			return
		}
		c := n.Light.Color
		rgb := [3]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
		switch n.Light.Type {
		case scene.LightAmbient, scene.LightHemisphere:
			for i := range l.ambient {
				l.ambient[i] += rgb[i] * n.Light.Intensity
			}
		case scene.LightDirectional, scene.LightPoint:
			if keyed {
				return
			}
			keyed = true
			if pos := n.WorldPosition(); pos.Len() > 0 {
				l.dir = pos.Normalize()
			}
			l.color = rgb
			l.intensity = n.Light.Intensity
		}
	})
	return l
}

func (r *Renderer) setLighting(viewPos mgl32.Vec3) {
	l := r.lights
	setVec3(r.shader, r.locs.viewPos, [3]float32{viewPos.X(), viewPos.Y(), viewPos.Z()})
	setVec3(r.shader, r.locs.lightDir, [3]float32{l.dir.X(), l.dir.Y(), l.dir.Z()})
	setVec3(r.shader, r.locs.lightColor, l.color)
	setFloat(r.shader, r.locs.lightIntensity, l.intensity)
	if r.locs.ambient >= 0 {
		amb := []float32{l.ambient[0], l.ambient[1], l.ambient[2], 1}
		rl.SetShaderValueV(r.shader, r.locs.ambient, amb, rl.ShaderUniformVec4, 1)
	}
}

// setVec3 and setFloat copy into fresh slices so nothing Go-owned is retained by cgo.
func setVec3(shader rl.Shader, loc int32, v [3]float32) {
	if loc < 0 {
		return
	}
	rl.SetShaderValueV(shader, loc, []float32{v[0], v[1], v[2]}, rl.ShaderUniformVec3, 1)
}

func setFloat(shader rl.Shader, loc int32, v float32) {
	if loc < 0 {
		return
	}
	rl.SetShaderValue(shader, loc, []float32{v}, rl.ShaderUniformFloat)
}

func toVector3(v mgl32.Vec3) rl.Vector3 { return rl.NewVector3(v.X(), v.Y(), v.Z()) }

func toColor(c scene.Color, opacity float32) rl.Color {
	return rl.NewColor(c.R, c.G, c.B, uint8(clamp01(opacity)*float32(c.A)))
}

// toMatrix converts a column-major mgl32 matrix; raylib's Mn fields use the same indexing.
func toMatrix(m mgl32.Mat4) rl.Matrix {
	return rl.Matrix{
		M0: m[0], M1: m[1], M2: m[2], M3: m[3],
		M4: m[4], M5: m[5], M6: m[6], M7: m[7],
		M8: m[8], M9: m[9], M10: m[10], M11: m[11],
		M12: m[12], M13: m[13], M14: m[14], M15: m[15],
	}
}

func clamp01(v float32) float32 { return math32.Max(0, math32.Min(1, v)) }

const (
	litVS = `#version 330
in vec3 vertexPosition;
in vec2 vertexTexCoord;
in vec3 vertexNormal;
uniform mat4 mvp;
uniform mat4 matModel;
uniform mat4 matNormal;
out vec3 fragPosition;
out vec3 fragNormal;
void main() {
  fragPosition = vec3(matModel * vec4(vertexPosition, 1.0));
  fragNormal = normalize(vec3(matNormal * vec4(vertexNormal, 0.0)));
  gl_Position = mvp * vec4(vertexPosition, 1.0);
}
`
	litFS = `#version 330
in vec3 fragPosition;
in vec3 fragNormal;
uniform vec4 colDiffuse;
uniform vec3 viewPos;
uniform vec3 lightDir;
uniform vec4 ambient;
uniform vec3 lightColor;
uniform float lightIntensity;
uniform float specularPower;
uniform float specularStrength;
out vec4 finalColor;
void main() {
  vec4 tint = colDiffuse;
  vec3 N = normalize(fragNormal);
  if (!gl_FrontFacing) N = -N;
  vec3 L = normalize(lightDir);
  vec3 V = normalize(viewPos - fragPosition);
  float NdotL = max(dot(N, L), 0.0);
  vec3 diffuse = tint.rgb * NdotL * lightColor * lightIntensity;
  vec3 amb = ambient.rgb * tint.rgb;
  vec3 H = normalize(L + V);
  float spec = pow(max(dot(N, H), 0.0), specularPower) * specularStrength;
  vec3 specular = lightColor * lightIntensity * spec * (NdotL > 0.0 ? 1.0 : 0.0);
  finalColor = vec4(amb + diffuse + specular, tint.a);
}
`
)
