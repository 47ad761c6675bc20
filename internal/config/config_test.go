package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scene-studio/internal/llm"
)

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	p, err := LoadFile(filepath.Join(t.TempDir(), "engine.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), p)
	assert.Equal(t, 20*time.Second, p.AttemptTimeout.Std())
	assert.Equal(t, llm.DefaultParams, p.Sampling)
}

func TestLoadMalformedFileGivesDefaultsAndError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))
	p, err := LoadFile(path)
	assert.Error(t, err)
	assert.Equal(t, Default(), p)
}

func TestLoadKeepsDefaultsForAbsentKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"provider":"groq","attempt_timeout":"5s","base_delay":0.5,"show_fps":true}`), 0644))

	p, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "groq", p.Provider)
	assert.Equal(t, 5*time.Second, p.AttemptTimeout.Std())
	assert.Equal(t, 500*time.Millisecond, p.BaseDelay.Std())
	assert.True(t, p.ShowFPS)
	assert.True(t, p.GridVisible)
	assert.Equal(t, 2, p.MaxRetries)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "engine.json")
	want := Default()
	want.Model = "deepseek-ai/DeepSeek-V3"
	want.BaseDelay = Duration(250 * time.Millisecond)
	require.NoError(t, SaveFile(path, want))

	got, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"base_delay": "250ms"`)
	assert.NotContains(t, string(raw), "api_key")
}

func TestApplyEnvOverridesOnlySetValues(t *testing.T) {
	env := map[string]string{
		EnvProvider: "ollama",
		EnvModel:    "  ",
		EnvHTTPAddr: ":9090",
	}
	base := Default()
	base.Model = "from-file"

	p, err := ApplyEnv(base, func(k string) string { return env[k] })
	require.NoError(t, err)
	assert.Equal(t, "ollama", p.Provider)
	assert.Equal(t, "from-file", p.Model)
	assert.Equal(t, ":9090", p.HTTPAddr)
	assert.Equal(t, "info", p.LogLevel)
}

func TestLLMOptions(t *testing.T) {
	p := Default()
	p.Sampling = llm.Params{Temperature: 0.1}
	p.Model = "m"
	o := p.LLMOptions()
	assert.Equal(t, "siliconflow", o.Provider)
	assert.Equal(t, "m", o.Model)
	assert.Equal(t, 0.1, o.Defaults.Temperature)
	assert.Equal(t, llm.DefaultParams.MaxTokens, o.Defaults.MaxTokens)
}

func TestDurationRejectsGarbage(t *testing.T) {
	var d Duration
	assert.Error(t, d.UnmarshalJSON([]byte(`"soon"`)))
	assert.Error(t, d.UnmarshalJSON([]byte(`true`)))
}
