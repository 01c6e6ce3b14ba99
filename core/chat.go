package core

import (
	"fmt"
	"sync"
)

// Role identifies the author of a conversation entry.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one entry of the conversation log.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is an append-only message log. Entries are never reordered
// or removed individually; the only mutations are appending a turn, editing
// a prior entry's content in place, and a full reset.
type Conversation struct {
	mu       sync.Mutex
	messages []ChatMessage
}

func NewConversation(system string) *Conversation {
	c := &Conversation{}
	if system != "" {
		c.messages = append(c.messages, ChatMessage{Role: RoleSystem, Content: system})
	}
	return c
}

// Append adds a new turn at the end of the log.
func (c *Conversation) Append(role Role, content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, ChatMessage{Role: role, Content: content})
}

// Edit replaces the content of an existing entry. The role is kept.
func (c *Conversation) Edit(index int, content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index < 0 || index >= len(c.messages) {
		return fmt.Errorf("conversation: edit index %d out of range", index)
	}
	c.messages[index].Content = content
	return nil
}

// Reset clears the whole log.
func (c *Conversation) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
}

// Messages returns a copy of the log.
func (c *Conversation) Messages() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of entries.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}
