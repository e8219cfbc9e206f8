package usecase

import (
	"github.com/iamvkosarev/cricket-guru-bot/internal/model"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestPromptBuildEmptyHistory(t *testing.T) {
	prompt := NewPromptUsecase("").Build(nil)

	require.Len(t, prompt, 1)
	assert.Equal(t, openai.ChatMessageRoleSystem, prompt[0].Role)
	assert.Contains(t, prompt[0].Content, "cricket")
	assert.Contains(t, prompt[0].Content, "training data")
}

func TestPromptBuildKeepsChronologicalOrder(t *testing.T) {
	history := []model.Message{
		model.NewUserMessage("Who won the 2019 Cricket World Cup?"),
		model.NewAssistantMessage("England."),
		model.NewUserMessage("Who captained them?"),
	}

	prompt := NewPromptUsecase("").Build(history)

	assert.Equal(t, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: CricketSystemInstruction},
		{Role: openai.ChatMessageRoleUser, Content: "Who won the 2019 Cricket World Cup?"},
		{Role: openai.ChatMessageRoleAssistant, Content: "England."},
		{Role: openai.ChatMessageRoleUser, Content: "Who captained them?"},
	}, prompt)
}

func TestPromptBuildCustomInstruction(t *testing.T) {
	prompt := NewPromptUsecase("Only talk about the Ashes.").Build([]model.Message{model.NewUserMessage("hi")})

	require.Len(t, prompt, 2)
	assert.Equal(t, "Only talk about the Ashes.", prompt[0].Content)
}

func TestPromptBuildDoesNotWindowLongHistory(t *testing.T) {
	history := make([]model.Message, 0, 200)
	for i := 0; i < 100; i++ {
		history = append(history, model.NewUserMessage("q"), model.NewAssistantMessage("a"))
	}

	prompt := NewPromptUsecase("").Build(history)

	assert.Len(t, prompt, 201)
}
