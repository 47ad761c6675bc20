// Package sessiontest provides a headless Surface for driving sessions in tests.
package sessiontest

import (
	"sync"

	"scene-studio/internal/scene"
)

// Surface is an in-memory session.Surface. Frames run only when Tick is called.
type Surface struct {
	mu     sync.Mutex
	width  int
	height int
	frames scene.FrameQueue
	resize scene.ResizeHub

	// Renderer is returned by NewRenderer unless RendererErr is set.
	Renderer    *Renderer
	RendererErr error
	In          *Input
}

// NewSurface returns a width×height surface with a fresh Renderer and Input.
func NewSurface(width, height int) *Surface {
	return &Surface{
		width:    width,
		height:   height,
		Renderer: &Renderer{},
		In:       &Input{},
	}
}

func (s *Surface) Size() (int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width, s.height
}

func (s *Surface) RequestFrame(fn scene.FrameFunc) scene.FrameID { return s.frames.Request(fn) }
func (s *Surface) CancelFrame(id scene.FrameID)                  { s.frames.Cancel(id) }
func (s *Surface) OnResize(fn func(int, int)) func()             { return s.resize.Subscribe(fn) }
func (s *Surface) Input() scene.Input                            { return s.In }

func (s *Surface) NewRenderer() (scene.Renderer, error) {
	if s.RendererErr != nil {
		return nil, s.RendererErr
	}
	return s.Renderer, nil
}

// Tick runs every pending frame request once with dt and returns how many ran. Requests made
// while ticking wait for the next Tick.
func (s *Surface) Tick(dt float32) int { return s.frames.Dispatch(dt) }

// Pending returns the number of outstanding frame requests.
func (s *Surface) Pending() int { return s.frames.Pending() }

// Cancelled returns the frame ids passed to CancelFrame.
func (s *Surface) Cancelled() []scene.FrameID { return s.frames.Cancelled() }

// Resize changes the size and notifies subscribers.
func (s *Surface) Resize(width, height int) {
	s.mu.Lock()
	s.width, s.height = width, height
	s.mu.Unlock()
	s.resize.Notify(width, height)
}

// Listeners returns the number of resize subscribers.
func (s *Surface) Listeners() int { return s.resize.Len() }

// Renderer records what a session asks of it.
type Renderer struct {
	mu       sync.Mutex
	Renders  int
	Width    int
	Height   int
	Clear    scene.Color
	Disposed int
	LastRoot *scene.Node
}

func (r *Renderer) Render(root *scene.Node, _ *scene.Camera) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Renders++
	r.LastRoot = root
}

func (r *Renderer) SetSize(w, h int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Width, r.Height = w, h
}

func (r *Renderer) SetClearColor(c scene.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Clear = c
}

func (r *Renderer) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Disposed++
}

// Input is a scripted pointer state.
type Input struct {
	DX, DY   float32
	Rotate   bool
	Pan      bool
	ZoomStep float32
}

func (in *Input) PointerDelta() (float32, float32) { return in.DX, in.DY }
func (in *Input) Rotating() bool                   { return in.Rotate }
func (in *Input) Panning() bool                    { return in.Pan }
func (in *Input) Zoom() float32                    { return in.ZoomStep }
