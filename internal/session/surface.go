package session

import "scene-studio/internal/scene"

// Surface is the drawable host a session renders into: a window or a headless fake.
// Frame requests are one-shot; a session re-requests every frame while running.
type Surface interface {
	Size() (width, height int)
	RequestFrame(fn scene.FrameFunc) scene.FrameID
	CancelFrame(id scene.FrameID)
	// OnResize subscribes fn to size changes and returns a function that unsubscribes it.
	OnResize(fn func(width, height int)) (remove func())
	Input() scene.Input
	NewRenderer() (scene.Renderer, error)
}
