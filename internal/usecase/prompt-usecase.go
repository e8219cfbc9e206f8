package usecase

import (
	"github.com/iamvkosarev/cricket-guru-bot/internal/model"
	"github.com/sashabaranov/go-openai"
)

const (
	OpenAIRoleSystem    = openai.ChatMessageRoleSystem
	OpenAIRoleUser      = openai.ChatMessageRoleUser
	OpenAIRoleAssistant = openai.ChatMessageRoleAssistant
	OpenAIRoleUnknown   = "unknown"

	CricketSystemInstruction = "You are a cricket expert. Strictly answer questions only related to cricket. " +
		"Do not answer any other question. Also, for answers of cricket which are later than your training data, " +
		"do not hallucinate. Just display the text describing that you don't know."
)

// PromptUsecase turns the stored conversation into the message list sent to the
// model. The whole history is resent on every turn.
type PromptUsecase struct {
	systemInstruction string
}

func NewPromptUsecase(systemInstruction string) *PromptUsecase {
	if systemInstruction == "" {
		systemInstruction = CricketSystemInstruction
	}
	return &PromptUsecase{
		systemInstruction: systemInstruction,
	}
}

func (p *PromptUsecase) Build(history []model.Message) []openai.ChatCompletionMessage {
	prompt := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	prompt = append(
		prompt, openai.ChatCompletionMessage{
			Role:    OpenAIRoleSystem,
			Content: p.systemInstruction,
		},
	)
	for _, message := range history {
		prompt = append(
			prompt, openai.ChatCompletionMessage{
				Role:    parseMessageSourceToRole(message.Source),
				Content: message.Body,
			},
		)
	}
	return prompt
}

func parseMessageSourceToRole(source model.MessageSource) string {
	switch source {
	case model.MessageSourceUser:
		return OpenAIRoleUser
	case model.MessageSourceAssistant:
		return OpenAIRoleAssistant
	default:
		return OpenAIRoleUnknown
	}
}
