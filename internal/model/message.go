package model

import "context"

// Role tags a conversation message with its speaker.
type Role string

const (
	RoleSystem    Role = "system"
	RoleHuman     Role = "human"
	RoleAssistant Role = "assistant"
)

// Message is a single role-tagged entry in the conversation. Treat it as a value.
type Message struct {
	Role    Role
	Content string
}

// SystemMessage, HumanMessage and AssistantMessage are shorthand constructors.
func SystemMessage(content string) Message { return Message{Role: RoleSystem, Content: content} }
func HumanMessage(content string) Message { return Message{Role: RoleHuman, Content: content} }
func AssistantMessage(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// Usage is the token accounting reported for one completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}

// Total returns prompt plus completion tokens.
func (u Usage) Total() int {
	return u.PromptTokens + u.CompletionTokens
}

// Completion is the assistant's full reply to one request.
type Completion struct {
	Text  string
	Usage Usage
}

// TokenObserver receives streamed tokens in arrival order. May be nil.
type TokenObserver func(token string)

// ModelGateway issues one completion request over the full message history.
// It never appends to the conversation itself; the caller owns that.
type ModelGateway interface {
	Complete(ctx context.Context, history []Message, onToken TokenObserver) (Completion, error)
}
