package in_memory

import (
	"github.com/iamvkosarev/cricket-guru-bot/internal/model"
)

// ConversationStorage holds the messages of one session in the order they were
// exchanged. It is owned by a single chat controller and is not safe for
// concurrent use.
type ConversationStorage struct {
	messages []model.Message
}

func NewConversationStorage() *ConversationStorage {
	return &ConversationStorage{
		messages: make([]model.Message, 0),
	}
}

func (c *ConversationStorage) Append(message model.Message) {
	c.messages = append(c.messages, message)
}

// All returns a copy, callers cannot reach the stored slice.
func (c *ConversationStorage) All() []model.Message {
	messages := make([]model.Message, len(c.messages))
	copy(messages, c.messages)
	return messages
}

func (c *ConversationStorage) Len() int {
	return len(c.messages)
}
