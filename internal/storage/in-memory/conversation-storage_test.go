package in_memory

import (
	"github.com/iamvkosarev/cricket-guru-bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestConversationStorageAppendKeepsOrder(t *testing.T) {
	storage := NewConversationStorage()
	require.Empty(t, storage.All())

	storage.Append(model.NewUserMessage("Who won the 2019 Cricket World Cup?"))
	storage.Append(model.NewAssistantMessage("England won the 2019 Cricket World Cup."))
	storage.Append(model.NewUserMessage("Who was player of the final?"))

	assert.Equal(t, []model.Message{
		{Source: model.MessageSourceUser, Body: "Who won the 2019 Cricket World Cup?"},
		{Source: model.MessageSourceAssistant, Body: "England won the 2019 Cricket World Cup."},
		{Source: model.MessageSourceUser, Body: "Who was player of the final?"},
	}, storage.All())
	assert.Equal(t, 3, storage.Len())
}

func TestConversationStorageAllReturnsCopy(t *testing.T) {
	storage := NewConversationStorage()
	storage.Append(model.NewUserMessage("original"))

	messages := storage.All()
	messages[0].Body = "edited"

	assert.Equal(t, []model.Message{model.NewUserMessage("original")}, storage.All())
}
