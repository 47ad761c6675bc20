package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jinzhu/copier"

	"scene-studio/internal/llm"
)

// Path is the preferences file, relative to the process working directory.
const Path = "config/engine.json"

// Environment variables that override the file.
const (
	EnvProvider = "SCENE_PROVIDER"
	EnvModel    = "SCENE_MODEL"
	EnvHTTPAddr = "SCENE_HTTP_ADDR"
	EnvLogLevel = "SCENE_LOG_LEVEL"
)

// Prefs holds studio preferences. Persisted across runs. API keys are never part of it; they
// come from the environment only.
type Prefs struct {
	Provider       string     `json:"provider"`
	BaseURL        string     `json:"base_url,omitempty"`
	Model          string     `json:"model,omitempty"`
	Sampling       llm.Params `json:"sampling"`
	AttemptTimeout Duration   `json:"attempt_timeout"`
	MaxRetries     int        `json:"max_retries"`
	BaseDelay      Duration   `json:"base_delay"`
	HTTPAddr       string     `json:"http_addr,omitempty"`
	LogLevel       string     `json:"log_level"`
	ShowFPS        bool       `json:"show_fps"`
	ShowMemAlloc   bool       `json:"show_memalloc"`
	GridVisible    bool       `json:"grid_visible"`
}

// Default returns the preferences used when no file exists: SiliconFlow, 20s attempts retried
// twice with a one second backoff unit, overlays off and the grid on.
func Default() Prefs {
	return Prefs{
		Provider:       "siliconflow",
		Sampling:       llm.DefaultParams,
		AttemptTimeout: Duration(20 * time.Second),
		MaxRetries:     2,
		BaseDelay:      Duration(time.Second),
		LogLevel:       "info",
		GridVisible:    true,
	}
}

// Load reads Path. See LoadFile.
func Load() (Prefs, error) {
	return LoadFile(Path)
}

// LoadFile reads preferences from path on top of Default(). A missing file yields Default()
// and no error; a malformed one yields Default() and the decode error.
func LoadFile(path string) (Prefs, error) {
	p := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return Default(), fmt.Errorf("config: decode %s: %w", path, err)
	}
	return p, nil
}

// Save writes p to Path, creating the config directory if needed.
func Save(p Prefs) error {
	return SaveFile(Path, p)
}

func SaveFile(path string, p Prefs) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

type overrides struct {
	Provider string
	Model    string
	HTTPAddr string
	LogLevel string
}

// ApplyEnv returns p with the SCENE_* variables that are set and non-blank copied over it.
// getenv nil means os.Getenv.
func ApplyEnv(p Prefs, getenv func(string) string) (Prefs, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	o := overrides{
		Provider: strings.TrimSpace(getenv(EnvProvider)),
		Model:    strings.TrimSpace(getenv(EnvModel)),
		HTTPAddr: strings.TrimSpace(getenv(EnvHTTPAddr)),
		LogLevel: strings.TrimSpace(getenv(EnvLogLevel)),
	}
	if err := copier.CopyWithOption(&p, &o, copier.Option{IgnoreEmpty: true}); err != nil {
		return p, fmt.Errorf("config: apply environment: %w", err)
	}
	return p, nil
}

// LLMOptions returns the provider selection for llm.New.
func (p Prefs) LLMOptions() llm.Options {
	return llm.Options{
		Provider: p.Provider,
		BaseURL:  p.BaseURL,
		Model:    p.Model,
		Defaults: p.Sampling.Merge(llm.DefaultParams),
	}
}

// Duration is a time.Duration written as a Go duration string ("20s"). Plain numbers are
// read as seconds.
type Duration time.Duration

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case float64:
		*d = Duration(v * float64(time.Second))
	case string:
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("duration: want a string or number, got %s", b)
	}
	return nil
}
