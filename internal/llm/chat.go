package llm

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
)

// Preset describes an OpenAI-compatible chat completions endpoint.
type Preset struct {
	Name string
	URL  string
	// KeyEnv is the environment variable holding the API key.
	KeyEnv string
	Model  string
	// BasicAuth sends the key as a Basic username instead of a Bearer token.
	BasicAuth bool
}

// Presets are the hosted providers the studio knows about.
var Presets = map[string]Preset{
	"siliconflow": {
		Name:   "siliconflow",
		URL:    "https://api.siliconflow.cn/v1/chat/completions",
		KeyEnv: "SILICONFLOW_API_KEY",
		Model:  "Qwen/QwQ-32B",
	},
	"openai": {
		Name:   "openai",
		URL:    "https://api.openai.com/v1/chat/completions",
		KeyEnv: "OPENAI_API_KEY",
		Model:  "gpt-4o-mini",
	},
	"groq": {
		Name:   "groq",
		URL:    "https://api.groq.com/openai/v1/chat/completions",
		KeyEnv: "GROQ_API_KEY",
		Model:  "llama-3.3-70b-versatile",
	},
	"cursor": {
		Name:      "cursor",
		URL:       "https://api.cursor.com/v1/chat/completions",
		KeyEnv:    "CURSOR_API_KEY",
		BasicAuth: true,
	},
}

// PresetNames returns the preset names, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(Presets))
	for n := range Presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Chat implements Client against an OpenAI-compatible chat completions endpoint.
type Chat struct {
	preset   Preset
	apiKey   string
	defaults Params
	client   *http.Client
}

// ChatOption configures a Chat.
type ChatOption func(*Chat)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(c *http.Client) ChatOption {
	return func(ch *Chat) { ch.client = c }
}

// WithURL overrides the preset endpoint.
func WithURL(url string) ChatOption {
	return func(ch *Chat) {
		if url != "" {
			ch.preset.URL = url
		}
	}
}

// WithDefaults sets the parameters used for zero fields of each request.
func WithDefaults(p Params) ChatOption {
	return func(ch *Chat) { ch.defaults = p.Merge(ch.defaults) }
}

// NewChat returns a Client for preset authenticated with apiKey.
func NewChat(preset Preset, apiKey string, opts ...ChatOption) *Chat {
	def := DefaultParams
	if preset.Model != "" {
		def.Model = preset.Model
	}
	c := &Chat{
		preset:   preset,
		apiKey:   apiKey,
		defaults: def,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the provider name.
func (c *Chat) Name() string { return c.preset.Name }

// Model returns the model used when a request does not name one.
func (c *Chat) Model() string { return c.defaults.Model }

type chatRequest struct {
	Model            string          `json:"model"`
	Messages         []Message       `json:"messages"`
	Temperature      float64         `json:"temperature"`
	MaxTokens        int             `json:"max_tokens"`
	TopP             float64         `json:"top_p"`
	TopK             int             `json:"top_k"`
	FrequencyPenalty float64         `json:"frequency_penalty"`
	N                int             `json:"n"`
	ResponseFormat   *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// Complete posts the conversation and returns choices[0].message.content.
func (c *Chat) Complete(ctx context.Context, r Request) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("%s: API key not set (export %s or add it to .env)", c.preset.Name, c.preset.KeyEnv)
	}
	p := r.Params.Merge(c.defaults)
	reqBody := chatRequest{
		Model:            p.Model,
		Messages:         r.Messages,
		Temperature:      p.Temperature,
		MaxTokens:        p.MaxTokens,
		TopP:             p.TopP,
		TopK:             p.TopK,
		FrequencyPenalty: p.FrequencyPenalty,
		N:                p.N,
	}
	if p.ResponseFormat != "" {
		reqBody.ResponseFormat = &responseFormat{Type: p.ResponseFormat}
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.preset.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.preset.BasicAuth {
		req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.apiKey+":")))
	} else {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", c.preset.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", &StatusError{
			Provider: c.preset.Name,
			Code:     resp.StatusCode,
			Status:   resp.Status,
			Body:     strings.TrimSpace(string(snippet)),
		}
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%s: %w: %v", c.preset.Name, ErrBadResponse, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%s: %w: no choices in response", c.preset.Name, ErrBadResponse)
	}
	return out.Choices[0].Message.Content, nil
}
