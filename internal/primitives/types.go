package primitives

// PrimitiveDef is the YAML definition of a primitive shape (see defaults.yaml).
// Size lists the default value of every positional size parameter in order; Params names them
// so error messages and the system prompt can describe the shape.
type PrimitiveDef struct {
	Type     string    `yaml:"type"`
	Params   []string  `yaml:"params"`
	Size     []float32 `yaml:"size"`
	Segments int       `yaml:"segments,omitempty"`
	Color    string    `yaml:"color,omitempty"`
}
