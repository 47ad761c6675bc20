package script

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"scene-studio/internal/scene"
)

var (
	// ErrSyntax marks text that cannot be compiled into a unit.
	ErrSyntax = errors.New("scene script syntax error")
	// ErrExec marks a unit that failed while running.
	ErrExec = errors.New("scene script failed")
)

// CanonicalName is injected into anonymous function declarations.
const CanonicalName = "sceneSetup"

// CanonicalParams is the fixed parameter list every unit is bound to, in order.
var CanonicalParams = []string{"engine", "scene", "camera", "renderer"}

// Unit is a normalized scene unit: a side-effecting procedure over the four fixed handles.
type Unit interface {
	Run(eng *Engine, root *scene.Node, cam *scene.Camera, r scene.Renderer) error
}

// UnitFunc adapts a Go function to Unit.
type UnitFunc func(eng *Engine, root *scene.Node, cam *scene.Camera, r scene.Renderer) error

func (f UnitFunc) Run(eng *Engine, root *scene.Node, cam *scene.Camera, r scene.Renderer) error {
	return f(eng, root, cam, r)
}

// Normalize turns payload into a Unit and never fails: nil, empty or unparsable text and
// unsupported values all yield Default(). Units pass through unchanged.
func Normalize(payload any) Unit {
	u, _ := NormalizeErr(payload)
	return u
}

// NormalizeErr is Normalize that also reports why the default unit was substituted.
func NormalizeErr(payload any) (u Unit, err error) {
	defer func() {
		if r := recover(); r != nil {
			u, err = Default(), fmt.Errorf("%w: %v", ErrSyntax, r)
		}
	}()
	switch p := payload.(type) {
	case nil:
		return Default(), nil
	case *Program:
		if p == nil {
			return Default(), nil
		}
		return p, nil
	case UnitFunc:
		if p == nil {
			return Default(), nil
		}
		return p, nil
	case Unit:
		return p, nil
	case func(*Engine, *scene.Node, *scene.Camera, scene.Renderer) error:
		if p == nil {
			return Default(), nil
		}
		return UnitFunc(p), nil
	case string:
		return normalizeText(p)
	case []byte:
		return normalizeText(string(p))
	}
	return Default(), fmt.Errorf("%w: unsupported payload %T", ErrSyntax, payload)
}

func normalizeText(text string) (Unit, error) {
	if strings.TrimSpace(text) == "" {
		return Default(), nil
	}
	p, err := Parse(text)
	if err != nil {
		return Default(), err
	}
	return p, nil
}

// Source returns the serialized form of u when it has one.
func Source(u Unit) (string, bool) {
	if p, ok := u.(*Program); ok && p != nil {
		return p.Source(), true
	}
	return "", false
}

const defaultSource = `function sceneSetup(engine, scene, camera, renderer) {
  // Start from an empty scene with the camera at its home position
  clear
  camera position=0,0,5 lookat=0,0,0

  add cube box 1 1 1 color=0x3498db metalness=0.3 roughness=0.4
  add ground plane 10 10 color=0xeeeeee side=double rotation=pi/2,0,0 position=0,-1,0

  light ambient ambient color=0xffffff intensity=0.5
  light sun directional color=0xffffff intensity=1 position=5,5,5

  animate cube rotate=0.01,0.01,0
}`

var (
	defaultOnce sync.Once
	defaultUnit *Program
)

// Default returns the built-in unit: a rotating cube over a ground plane lit by an ambient
// and a directional light.
func Default() *Program {
	defaultOnce.Do(func() {
		defaultUnit = MustParse(defaultSource)
	})
	return defaultUnit
}

// DefaultSource returns the serialized form of Default().
func DefaultSource() string { return defaultSource }
