package llm

import (
	"context"
	"errors"
	"fmt"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// System, User and Assistant build turns.
func System(content string) Message    { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message      { return Message{Role: RoleUser, Content: content} }
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// Request is a chat completion request. Zero Params fields fall back to the client's defaults.
type Request struct {
	Messages []Message
	Params   Params
}

// Client sends a conversation to an LLM and returns the reply text.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrBadResponse marks a reply that arrived but could not be used: an undecodable body or
// one without choices.
var ErrBadResponse = errors.New("unusable response")

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	Provider string
	Code     int
	Status   string
	Body     string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: %s: %s", e.Provider, e.Status, e.Body)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Status)
}
