// Package session hosts a scene on a surface: it owns the scene graph, camera, renderer and
// orbit controls, runs the frame loop, and swaps generated scene units in and out.
package session

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"scene-studio/internal/metrics"
	"scene-studio/internal/primitives"
	"scene-studio/internal/scene"
	"scene-studio/internal/script"
)

// State is a session's lifecycle stage.
type State int

const (
	// Uninitialized sessions have not been started.
	Uninitialized State = iota
	// Running sessions render frames and accept units.
	Running
	// Disposed sessions have released every resource and accept nothing.
	Disposed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Disposed:
		return "disposed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Camera defaults for a new session.
const (
	FieldOfView = 75
	Near        = 0.1
	Far         = 1000
)

// Session is one scene bound to one surface. Methods other than the accessors must be called
// in the right state; calling Apply or Stop outside Running panics.
type Session struct {
	mu sync.Mutex

	state    State
	surface  Surface
	root     *scene.Node
	camera   *scene.Camera
	renderer scene.Renderer
	controls *scene.OrbitController
	frames   *scene.Animator
	engine   *script.Engine

	frame        scene.FrameID
	removeResize func()
	lastError    string

	initial   script.Unit
	catalogue *primitives.Catalogue
	log       *zap.Logger
	metrics   *metrics.Metrics
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the diagnostics logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithMetrics records applies and the live callback count.
func WithMetrics(m *metrics.Metrics) Option { return func(s *Session) { s.metrics = m } }

// WithInitialUnit replaces the scene shown when the session starts.
func WithInitialUnit(u script.Unit) Option {
	return func(s *Session) {
		if u != nil {
			s.initial = u
		}
	}
}

// WithCatalogue sets the primitives units build from.
func WithCatalogue(c *primitives.Catalogue) Option {
	return func(s *Session) {
		if c != nil {
			s.catalogue = c
		}
	}
}

// New returns an Uninitialized session.
func New(opts ...Option) *Session {
	s := &Session{
		log:     zap.NewNop(),
		initial: script.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start is New followed by (*Session).Start.
func Start(surface Surface, opts ...Option) (*Session, error) {
	s := New(opts...)
	if err := s.Start(surface); err != nil {
		return nil, err
	}
	return s, nil
}

// Start binds the session to surface, builds the default scene and starts the frame loop.
// An initial scene that fails to run is recorded in LastError; the session still starts.
func (s *Session) Start(surface Surface) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.require(Uninitialized, "Start")

	renderer, err := surface.NewRenderer()
	if err != nil {
		return fmt.Errorf("session: create renderer: %w", err)
	}
	w, h := surface.Size()
	aspect := float32(1)
	if w > 0 && h > 0 {
		aspect = float32(w) / float32(h)
		renderer.SetSize(w, h)
	}

	s.surface = surface
	s.renderer = renderer
	s.root = scene.NewRoot()
	s.camera = scene.NewPerspectiveCamera(FieldOfView, aspect, Near, Far)
	s.controls = scene.NewOrbitController(s.camera, surface.Input())
	s.frames = scene.NewAnimator()
	s.engine = script.NewEngine(s.frames, s.catalogue)
	s.state = Running

	if err := s.run(s.initial); err != nil {
		s.lastError = err.Error()
		s.log.Warn("initial scene failed", zap.Error(err))
	}
	s.removeResize = surface.OnResize(s.resize)
	s.frame = surface.RequestFrame(s.tick)
	s.log.Info("session started", zap.Int("width", w), zap.Int("height", h))
	return nil
}

// Apply swaps the current content for u. Meshes, groups and lines are removed and their
// resources disposed; lights and the camera stay. Per-frame callbacks of earlier units are
// cancelled before u runs. A failing unit leaves whatever it built in place, and its error
// is returned and kept in LastError until the next successful Apply.
func (s *Session) Apply(u script.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.require(Running, "Apply")

	removed := s.detachContent()
	disposed := scene.DisposeUnreachable(s.root, removed...)
	gen, cancelled := s.frames.Advance()

	err := s.run(u)
	if err != nil {
		s.lastError = err.Error()
	} else {
		s.lastError = ""
	}
	s.metrics.Apply(err)
	s.metrics.Frames(s.frames.Len())
	s.log.Debug("applied scene unit",
		zap.Uint64("generation", gen),
		zap.Int("removed", len(removed)),
		zap.Int("disposed", disposed),
		zap.Int("cancelled_callbacks", cancelled),
		zap.Error(err))
	return err
}

// ApplySource normalizes payload and applies the result.
func (s *Session) ApplySource(payload any) error {
	return s.Apply(script.Normalize(payload))
}

// Stop ends the frame loop and releases every resource the session owns.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.require(Running, "Stop")

	s.surface.CancelFrame(s.frame)
	if s.removeResize != nil {
		s.removeResize()
		s.removeResize = nil
	}
	cancelled := s.frames.CancelAll()
	disposed := scene.DisposeAll(s.root)
	s.renderer.Dispose()
	s.state = Disposed
	s.metrics.Frames(0)
	s.log.Info("session stopped", zap.Int("disposed", disposed), zap.Int("cancelled_callbacks", cancelled))
}

// LastError returns the message of the most recent failure, or "".
func (s *Session) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// State returns the lifecycle stage.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Root returns the scene graph root. Nil before Start.
func (s *Session) Root() *scene.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root
}

// Camera returns the session camera. Nil before Start.
func (s *Session) Camera() *scene.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera
}

// Controls returns the orbit controller. Nil before Start.
func (s *Session) Controls() *scene.OrbitController {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controls
}

// Counts returns the census of the scene graph.
func (s *Session) Counts() scene.Census {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.root == nil {
		return scene.Census{}
	}
	return scene.Count(s.root)
}

// Frames returns the number of live per-frame callbacks.
func (s *Session) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frames == nil {
		return 0
	}
	return s.frames.Len()
}

// Generation returns how many units have been applied since Start.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frames == nil {
		return 0
	}
	return s.frames.Generation()
}

func (s *Session) require(want State, op string) {
	if s.state != want {
		panic(fmt.Sprintf("session: %s called while %s (want %s)", op, s.state, want))
	}
}

// tick is the frame callback. It re-arms itself before doing any work.
func (s *Session) tick(dt float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running {
		return
	}
	s.frame = s.surface.RequestFrame(s.tick)
	s.controls.Update()
	if err := s.frames.Run(dt); err != nil {
		s.lastError = err.Error()
		s.log.Warn("frame callback failed and was cancelled", zap.Error(err))
		s.metrics.Frames(s.frames.Len())
	}
	s.renderer.Render(s.root, s.camera)
}

func (s *Session) resize(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Running || width <= 0 || height <= 0 {
		return
	}
	s.camera.SetAspect(float32(width) / float32(height))
	s.renderer.SetSize(width, height)
}

// run invokes u against the session handles, turning panics into errors.
func (s *Session) run(u script.Unit) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", script.ErrExec, r)
		}
	}()
	if u == nil {
		u = script.Default()
	}
	return u.Run(s.engine, s.root, s.camera, s.renderer)
}

// detachContent removes every mesh, group and line from the graph and returns them. Lights
// found inside removed subtrees are moved to the root at their world position first.
func (s *Session) detachContent() []*scene.Node {
	var content, lights []*scene.Node
	for _, child := range s.root.Children() {
		child.Traverse(func(n *scene.Node) {
			switch {
			case n.Kind.Transient():
				content = append(content, n)
			case n.Kind == scene.KindLight && n.Parent() != s.root:
				lights = append(lights, n)
			}
		})
	}
	for _, l := range lights {
		pos := l.WorldPosition()
		s.root.Add(l)
		l.Position = pos
	}
	for _, n := range content {
		n.RemoveFromParent()
	}
	return content
}
