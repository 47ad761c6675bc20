package llm

import (
	"fmt"
	"os"
	"strings"
)

// Named is a Client that reports its provider and default model.
type Named interface {
	Client
	Name() string
	Model() string
}

// Options selects and configures a provider.
type Options struct {
	Provider string
	BaseURL  string
	Model    string
	Defaults Params
	// Getenv reads API keys; nil means os.Getenv.
	Getenv func(string) string
}

// New builds the client for opts.Provider: "ollama" or one of Presets.
func New(opts Options) (Named, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	name := strings.ToLower(strings.TrimSpace(opts.Provider))
	if name == "" {
		name = "siliconflow"
	}
	if name == "ollama" {
		return NewOllama(opts.BaseURL, opts.Model), nil
	}
	preset, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("llm: unknown provider %q (want ollama or one of %s)", opts.Provider, strings.Join(PresetNames(), ", "))
	}
	defaults := opts.Defaults
	if opts.Model != "" {
		defaults.Model = opts.Model
	}
	return NewChat(preset, strings.TrimSpace(getenv(preset.KeyEnv)), WithURL(opts.BaseURL), WithDefaults(defaults)), nil
}
