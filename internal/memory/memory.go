// Package memory holds the append-only conversation log replayed to the
// model on every call.
package memory

import (
	"errors"
	"fmt"

	"github.com/amishk599/visioncrafter/internal/model"
)

var (
	// ErrEmptyRole is returned when a message has no role.
	ErrEmptyRole = errors.New("memory: message has empty role")
	// ErrSystemNotFirst is returned when the system instruction is missing
	// from the head of the log or appended a second time.
	ErrSystemNotFirst = errors.New("memory: system message must be first and appear once")
)

// ConversationMemory is an ordered, append-only sequence of messages.
// There is no removal operation; a session reset discards the whole value.
type ConversationMemory struct {
	messages []model.Message
}

// New returns a memory seeded with the system instruction.
func New(system string) *ConversationMemory {
	m := &ConversationMemory{}
	m.messages = append(m.messages, model.SystemMessage(system))
	return m
}

// Append adds msg to the end of the log.
func (m *ConversationMemory) Append(msg model.Message) error {
	if msg.Role == "" {
		return ErrEmptyRole
	}
	isSystem := msg.Role == model.RoleSystem
	if isSystem != (len(m.messages) == 0) {
		return fmt.Errorf("append %s message at position %d: %w", msg.Role, len(m.messages), ErrSystemNotFirst)
	}
	m.messages = append(m.messages, msg)
	return nil
}

// Snapshot returns a copy of the full ordered history.
func (m *ConversationMemory) Snapshot() []model.Message {
	out := make([]model.Message, len(m.messages))
	copy(out, m.messages)
	return out
}

// Len returns the number of messages.
func (m *ConversationMemory) Len() int {
	return len(m.messages)
}

// Last returns the most recent message, if any.
func (m *ConversationMemory) Last() (model.Message, bool) {
	if len(m.messages) == 0 {
		return model.Message{}, false
	}
	return m.messages[len(m.messages)-1], true
}
