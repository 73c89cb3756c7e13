// Package inktypes defines the shared data types for Inkwell.
// This file contains the conversation types: messages, roles, and the
// helpers used by the session layer to build history entries.
package inktypes

import (
	"time"

	"github.com/google/uuid"
)

// Role identifies the originator of a conversation message.
type Role string

// Conversation roles understood by every provider client.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message represents a single turn in the conversation history.
// Messages are immutable once created: the session appends them and
// never mutates or reorders existing entries.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message with a fresh ID and the current time.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}
