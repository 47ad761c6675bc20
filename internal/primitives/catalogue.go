package primitives

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"scene-studio/internal/scene"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Catalogue maps shape names to their definitions and builds geometry from them.
type Catalogue struct {
	defs map[scene.Shape]PrimitiveDef
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalogue
)

// Default returns the catalogue built from the embedded defaults.yaml.
func Default() *Catalogue {
	defaultOnce.Do(func() {
		c, err := Load(defaultsYAML)
		if err != nil {
			panic(fmt.Sprintf("primitives: embedded defaults: %v", err))
		}
		defaultCat = c
	})
	return defaultCat
}

// Load parses a YAML list of PrimitiveDef.
func Load(data []byte) (*Catalogue, error) {
	var defs []PrimitiveDef
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("primitives: %w", err)
	}
	c := &Catalogue{defs: make(map[scene.Shape]PrimitiveDef, len(defs))}
	for i, d := range defs {
		if d.Type == "" {
			return nil, fmt.Errorf("primitives: entry %d: missing type", i)
		}
		if len(d.Params) != len(d.Size) {
			return nil, fmt.Errorf("primitives: %s: %d params but %d sizes", d.Type, len(d.Params), len(d.Size))
		}
		if d.Color != "" {
			if _, err := scene.ParseColor(d.Color); err != nil {
				return nil, fmt.Errorf("primitives: %s: %w", d.Type, err)
			}
		}
		c.defs[scene.Shape(d.Type)] = d
	}
	return c, nil
}

// Shapes returns the known shape names, sorted.
func (c *Catalogue) Shapes() []string {
	out := make([]string, 0, len(c.defs))
	for s := range c.defs {
		out = append(out, string(s))
	}
	sort.Strings(out)
	return out
}

// Def returns the definition for shape.
func (c *Catalogue) Def(shape string) (PrimitiveDef, bool) {
	d, ok := c.defs[scene.Shape(shape)]
	return d, ok
}

// Geometry builds a geometry for shape. Missing trailing params take the defaults; every
// param must be positive.
func (c *Catalogue) Geometry(shape string, params []float32) (*scene.Geometry, error) {
	d, ok := c.defs[scene.Shape(shape)]
	if !ok {
		return nil, fmt.Errorf("unknown shape %q (want one of %s)", shape, strings.Join(c.Shapes(), ", "))
	}
	if len(params) > len(d.Size) {
		return nil, fmt.Errorf("%s takes at most %d size values (%s), got %d",
			shape, len(d.Size), strings.Join(d.Params, ", "), len(params))
	}
	full := make([]float32, len(d.Size))
	copy(full, d.Size)
	for i, p := range params {
		if p <= 0 {
			return nil, fmt.Errorf("%s %s must be positive", shape, d.Params[i])
		}
		full[i] = p
	}
	g := scene.NewGeometry(scene.Shape(shape), full...)
	g.Segments = d.Segments
	return g, nil
}

// Material returns a new material in the shape's default color.
func (c *Catalogue) Material(shape string) *scene.Material {
	color := scene.Hex(0x808080)
	if d, ok := c.defs[scene.Shape(shape)]; ok && d.Color != "" {
		if parsed, err := scene.ParseColor(d.Color); err == nil {
			color = parsed
		}
	}
	return scene.NewMaterial(color)
}

// Describe returns one line per shape, e.g. "box width height depth", for prompts.
func (c *Catalogue) Describe() string {
	var b strings.Builder
	for _, s := range c.Shapes() {
		d := c.defs[scene.Shape(s)]
		b.WriteString(s)
		for _, p := range d.Params {
			b.WriteString(" ")
			b.WriteString(p)
		}
		b.WriteString("\n")
	}
	return b.String()
}
