package domain

import (
	"context"
	"errors"
	"iter"
)

var (
	// ErrMissingCredential is returned per request while no provider key is configured.
	ErrMissingCredential = errors.New("GEMINI_API_KEY is not set")
	ErrEmptyConversation = errors.New("messages must not be empty")
	ErrInvalidRole       = errors.New("message role must be user or assistant")
)

// Llm abstracts any streaming chat provider.
type Llm interface {
	// StreamChat starts a generation for req and returns its text fragments in
	// arrival order. The sequence is lazy and can only be ranged once.
	StreamChat(ctx context.Context, req LlmRequest) (iter.Seq2[string, error], error)
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

// LlmRequest is one provider call: a system instruction, the prior turns and
// the live turn that triggers generation.
type LlmRequest struct {
	SystemInstruction string
	History           []ChatMessage
	Prompt            ChatMessage
}

type ModelInfo struct {
	ID        string `json:"id"`
	Available bool   `json:"available"`
	Error     string `json:"error,omitempty"`
}

type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	UserRole      Role = "user"
	AssistantRole Role = "assistant"
)

func (r Role) Valid() bool {
	return r == UserRole || r == AssistantRole
}

// ChatRequest is the body accepted by the relay endpoint.
type ChatRequest struct {
	Messages []ChatMessage `json:"messages"`
	Mode     MentorMode    `json:"mode,omitempty"`
	Context  string        `json:"context,omitempty"`
}

// Validate checks the conversation shape. Unknown modes are not an error.
func (r ChatRequest) Validate() error {
	if len(r.Messages) == 0 {
		return ErrEmptyConversation
	}
	for _, m := range r.Messages {
		if !m.Role.Valid() {
			return ErrInvalidRole
		}
	}
	return nil
}
