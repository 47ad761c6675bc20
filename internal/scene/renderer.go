package scene

// Renderer draws a scene graph through a camera onto the surface it is bound to.
// Implementations own the graphics context and free it in Dispose.
type Renderer interface {
	Render(root *Node, cam *Camera)
	SetSize(width, height int)
	SetClearColor(c Color)
	Dispose()
}
