package openai_tools

import (
	"fmt"
	"github.com/pkoukk/tiktoken-go"
	"github.com/sashabaranov/go-openai"
)

const fallbackEncoding = "cl100k_base"

// CountToken estimates the prompt tokens of messages for chatModel, following the
// OpenAI cookbook accounting: a fixed overhead per message and per name, plus three
// tokens priming the reply.
func CountToken(messages []openai.ChatCompletionMessage, chatModel string) (int, error) {
	enc, err := tiktoken.EncodingForModel(chatModel)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return 0, fmt.Errorf("failed to get %s encoding: %w", fallbackEncoding, err)
		}
	}

	tokensPerMessage, tokensPerName := messageOverhead(chatModel)
	numTokens := 0
	for _, message := range messages {
		numTokens += tokensPerMessage
		numTokens += len(enc.Encode(message.Content, nil, nil))
		numTokens += len(enc.Encode(message.Role, nil, nil))
		if message.Name != "" {
			numTokens += len(enc.Encode(message.Name, nil, nil))
			numTokens += tokensPerName
		}
	}
	numTokens += 3
	return numTokens, nil
}

func messageOverhead(chatModel string) (tokensPerMessage, tokensPerName int) {
	if chatModel == "gpt-3.5-turbo-0301" {
		return 4, -1
	}
	return 3, 1
}
