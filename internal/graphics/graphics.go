package graphics

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"scene-studio/internal/scene"
)

// Window is the raylib window a session renders into. It implements session.Surface.
// All methods must be called from the goroutine that called Open.
type Window struct {
	frames scene.FrameQueue
	resize scene.ResizeHub
	input  *Pointer

	// GridVisible is passed to renderers created after it is set.
	GridVisible bool
}

// Open creates the window. Zero width or height opens fullscreen at the monitor size.
func Open(title string, width, height int) *Window {
	flags := uint32(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	if width <= 0 || height <= 0 {
		flags |= rl.FlagFullscreenMode
	}
	rl.SetConfigFlags(flags)
	if width <= 0 || height <= 0 {
		rl.InitWindow(0, 0, title)
	} else {
		rl.InitWindow(int32(width), int32(height), title)
	}
	rl.SetExitKey(rl.KeyNull) // ESC toggles the chat bar; close via window button
	rl.SetTargetFPS(60)
	return &Window{input: &Pointer{}, GridVisible: true}
}

// Close destroys the window and its graphics context.
func (w *Window) Close() {
	rl.CloseWindow()
}

// Run starts the main loop. Each frame it calls update (e.g. input), then runs the pending
// frame requests inside the drawing pass and calls overlay for 2D content on top.
func (w *Window) Run(update, overlay func()) {
	for !rl.WindowShouldClose() {
		if rl.IsWindowResized() {
			w.resize.Notify(rl.GetScreenWidth(), rl.GetScreenHeight())
		}
		update()

		rl.BeginDrawing()
		if w.frames.Dispatch(rl.GetFrameTime()) == 0 {
			rl.ClearBackground(rl.Black)
		}
		overlay()
		rl.EndDrawing()
	}
}

func (w *Window) Size() (int, int) {
	return rl.GetScreenWidth(), rl.GetScreenHeight()
}

func (w *Window) RequestFrame(fn scene.FrameFunc) scene.FrameID { return w.frames.Request(fn) }
func (w *Window) CancelFrame(id scene.FrameID)                  { w.frames.Cancel(id) }
func (w *Window) OnResize(fn func(int, int)) func()             { return w.resize.Subscribe(fn) }
func (w *Window) Input() scene.Input                            { return w.input }

// Pointer returns the mouse input the orbit controls read.
func (w *Window) Pointer() *Pointer { return w.input }

func (w *Window) NewRenderer() (scene.Renderer, error) {
	return NewRenderer(w.GridVisible)
}

// Pointer reads the raylib mouse. Left drag orbits, right drag (or shift+left) pans and the
// wheel zooms. While Captured reports true the pointer reads as idle.
type Pointer struct {
	Captured func() bool
}

func (p *Pointer) idle() bool { return p.Captured != nil && p.Captured() }

func (p *Pointer) PointerDelta() (float32, float32) {
	if p.idle() {
		return 0, 0
	}
	d := rl.GetMouseDelta()
	return d.X, d.Y
}

func (p *Pointer) Rotating() bool {
	return !p.idle() && rl.IsMouseButtonDown(rl.MouseButtonLeft) && !shift()
}

func (p *Pointer) Panning() bool {
	if p.idle() {
		return false
	}
	return rl.IsMouseButtonDown(rl.MouseButtonRight) || rl.IsMouseButtonDown(rl.MouseButtonLeft) && shift()
}

func (p *Pointer) Zoom() float32 {
	if p.idle() {
		return 0
	}
	return rl.GetMouseWheelMove()
}

func shift() bool {
	return rl.IsKeyDown(rl.KeyLeftShift) || rl.IsKeyDown(rl.KeyRightShift)
}
