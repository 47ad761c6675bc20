package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// DefaultOllamaBaseURL is the default base URL for a local Ollama server.
const DefaultOllamaBaseURL = "http://localhost:11434"

// Ollama implements Client using the Ollama /api/chat endpoint (e.g. Qwen, Llama).
type Ollama struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllama returns a Client that uses the Ollama API at baseURL (e.g. http://localhost:11434).
// If baseURL is empty, DefaultOllamaBaseURL is used; an empty model means qwen2.5-coder.
func NewOllama(baseURL, model string) *Ollama {
	u := strings.TrimSuffix(baseURL, "/")
	if u == "" {
		u = DefaultOllamaBaseURL
	}
	if model == "" {
		model = "qwen2.5-coder"
	}
	return &Ollama{
		baseURL: u,
		model:   model,
		client:  http.DefaultClient,
	}
}

// Name returns "ollama".
func (c *Ollama) Name() string { return "ollama" }

// Model returns the model used when a request does not name one.
func (c *Ollama) Model() string { return c.model }

type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message Message `json:"message"`
}

// Complete sends the conversation to Ollama and returns the assistant reply.
func (c *Ollama) Complete(ctx context.Context, r Request) (string, error) {
	model := r.Params.Model
	if model == "" {
		model = c.model
	}
	reqBody := ollamaChatRequest{
		Model:    model,
		Stream:   false,
		Messages: r.Messages,
		Options:  ollamaOptions(r.Params),
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}
	url := c.baseURL + "/api/chat"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{Provider: "ollama", Code: resp.StatusCode, Status: resp.Status}
	}
	var out ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ollama: %w: %v", ErrBadResponse, err)
	}
	return out.Message.Content, nil
}

func ollamaOptions(p Params) map[string]any {
	opts := make(map[string]any)
	if p.Temperature != 0 {
		opts["temperature"] = p.Temperature
	}
	if p.TopP != 0 {
		opts["top_p"] = p.TopP
	}
	if p.TopK != 0 {
		opts["top_k"] = p.TopK
	}
	if p.MaxTokens != 0 {
		opts["num_predict"] = p.MaxTokens
	}
	if p.FrequencyPenalty != 0 {
		opts["frequency_penalty"] = p.FrequencyPenalty
	}
	if len(opts) == 0 {
		return nil
	}
	return opts
}
