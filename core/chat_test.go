package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationAppendAndEdit(t *testing.T) {
	c := NewConversation("be helpful")
	c.Append(RoleUser, "hi")
	c.Append(RoleAssistant, "hello")
	require.Equal(t, 3, c.Len())

	require.NoError(t, c.Edit(2, "hello there"))
	messages := c.Messages()
	assert.Equal(t, ChatMessage{Role: RoleAssistant, Content: "hello there"}, messages[2])

	assert.Error(t, c.Edit(3, "out of range"))
	assert.Error(t, c.Edit(-1, "out of range"))
}

func TestConversationMessagesIsACopy(t *testing.T) {
	c := NewConversation("")
	c.Append(RoleUser, "hi")

	messages := c.Messages()
	messages[0].Content = "mutated"
	assert.Equal(t, "hi", c.Messages()[0].Content)
}

func TestConversationReset(t *testing.T) {
	c := NewConversation("system")
	c.Append(RoleUser, "hi")
	c.Reset()
	assert.Equal(t, 0, c.Len())
}
