// Package fallback holds the canned scenes shown when generation produces nothing usable.
package fallback

import (
	_ "embed"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"scene-studio/internal/script"
)

//go:embed fallbacks.yaml
var fallbacksYAML []byte

// Entry is one canned scene with the explanation shown alongside it.
type Entry struct {
	Explanation string `yaml:"explanation"`
	Code        string `yaml:"code"`

	Unit *script.Program `yaml:"-"`
}

// Library is an immutable set of entries. It is safe for concurrent use.
type Library struct {
	entries []Entry
	intn    func(n int) int
}

// Option configures a Library.
type Option func(*Library)

// WithIntn replaces the random source used by Pick. intn must return a value in [0, n).
func WithIntn(intn func(n int) int) Option {
	return func(l *Library) {
		if intn != nil {
			l.intn = intn
		}
	}
}

// Load decodes a YAML list of entries. Every entry needs an explanation and code that
// compiles as a scene script.
func Load(data []byte, opts ...Option) (*Library, error) {
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("fallback: %w", err)
	}
	if len(entries) == 0 {
		return nil, errors.New("fallback: no entries")
	}
	for i := range entries {
		e := &entries[i]
		e.Explanation = strings.TrimSpace(e.Explanation)
		if e.Explanation == "" {
			return nil, fmt.Errorf("fallback: entry %d: missing explanation", i)
		}
		p, err := script.Parse(e.Code)
		if err != nil {
			return nil, fmt.Errorf("fallback: entry %d: %w", i, err)
		}
		e.Unit = p
		e.Code = p.Source()
	}
	l := &Library{entries: entries, intn: rand.IntN}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

var (
	defaultOnce sync.Once
	defaultLib  *Library
)

// Default returns the process-wide library built from the embedded fallbacks.yaml.
func Default() *Library {
	defaultOnce.Do(func() {
		l, err := Load(fallbacksYAML)
		if err != nil {
			panic(fmt.Sprintf("fallback: embedded entries: %v", err))
		}
		defaultLib = l
	})
	return defaultLib
}

// Len returns the number of entries.
func (l *Library) Len() int { return len(l.entries) }

// Entries returns a copy of the entries.
func (l *Library) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Pick returns an entry chosen uniformly at random.
func (l *Library) Pick() Entry {
	i := l.intn(len(l.entries))
	if i < 0 || i >= len(l.entries) {
		i = 0
	}
	return l.entries[i]
}

// With returns a copy of l that picks with intn.
func (l *Library) With(intn func(n int) int) *Library {
	c := *l
	WithIntn(intn)(&c)
	return &c
}
