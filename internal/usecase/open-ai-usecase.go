package usecase

import (
	"context"
	"errors"
	"fmt"
	"github.com/iamvkosarev/cricket-guru-bot/config"
	"github.com/iamvkosarev/cricket-guru-bot/internal/model"
	"github.com/sashabaranov/go-openai"
	"io"
	"net/http"
)

// FragmentStream yields completion text in arrival order and io.EOF once the
// model is done. It cannot be restarted.
type FragmentStream interface {
	Next() (string, error)
	Close() error
}

type Provider interface {
	OpenStream(
		ctx context.Context,
		credential model.Credential,
		modelCfg model.ModelConfig,
		prompt []openai.ChatCompletionMessage,
	) (FragmentStream, error)
}

type OpenAIUsecase struct {
	cfg        config.OpenAI
	httpClient *http.Client
}

func NewOpenAIUsecase(cfg config.OpenAI) *OpenAIUsecase {
	return &OpenAIUsecase{
		cfg: cfg,
	}
}

// WithHTTPClient replaces the transport used for provider calls.
func (o *OpenAIUsecase) WithHTTPClient(httpClient *http.Client) *OpenAIUsecase {
	o.httpClient = httpClient
	return o
}

func (o *OpenAIUsecase) OpenStream(
	ctx context.Context,
	credential model.Credential,
	modelCfg model.ModelConfig,
	prompt []openai.ChatCompletionMessage,
) (FragmentStream, error) {
	clientConfig := openai.DefaultConfig(string(credential))
	clientConfig.BaseURL = o.cfg.OpenAIBaseURL
	if o.httpClient != nil {
		clientConfig.HTTPClient = o.httpClient
	}
	c := openai.NewClientWithConfig(clientConfig)

	req := openai.ChatCompletionRequest{
		Model:       modelCfg.Model,
		Temperature: modelCfg.Temperature,
		MaxTokens:   modelCfg.MaxOutputTokens,
		TopP:        1,
		N:           1,
		Messages:    prompt,
		Stream:      modelCfg.Streaming,
	}

	if !modelCfg.Streaming {
		resp, err := c.CreateChatCompletion(ctx, req)
		if err != nil {
			return nil, classifyOpenAIError(err, false)
		}
		if len(resp.Choices) == 0 {
			return nil, model.NewResponseError(model.ErrorKindProviderError, errors.New("completion has no choices"))
		}
		return &singleFragmentStream{fragment: resp.Choices[0].Message.Content}, nil
	}

	stream, err := c.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, classifyOpenAIError(err, false)
	}
	return &chatCompletionFragmentStream{stream: stream}, nil
}

type chatCompletionFragmentStream struct {
	stream *openai.ChatCompletionStream
}

func (s *chatCompletionFragmentStream) Next() (string, error) {
	for {
		response, err := s.stream.Recv()
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		if err != nil {
			return "", classifyOpenAIError(err, true)
		}
		// role-only and empty deltas carry no text
		if len(response.Choices) == 0 || response.Choices[0].Delta.Content == "" {
			continue
		}
		return response.Choices[0].Delta.Content, nil
	}
}

func (s *chatCompletionFragmentStream) Close() error {
	return s.stream.Close()
}

type singleFragmentStream struct {
	fragment string
	done     bool
}

func (s *singleFragmentStream) Next() (string, error) {
	if s.done {
		return "", io.EOF
	}
	s.done = true
	if s.fragment == "" {
		return "", io.EOF
	}
	return s.fragment, nil
}

func (s *singleFragmentStream) Close() error {
	return nil
}

// classifyOpenAIError maps go-openai errors onto error kinds. A rejected key is
// reported with 401 either as a parsed APIError or as a bare RequestError.
// Anything without an HTTP status is a transport failure unless the stream had
// already started, in which case the stream ended abnormally.
func classifyOpenAIError(err error, midStream bool) *model.ResponseError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusUnauthorized {
			return model.NewResponseError(model.ErrorKindAuthenticationFailed, err)
		}
		return model.NewResponseError(model.ErrorKindProviderError, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusUnauthorized {
			return model.NewResponseError(model.ErrorKindAuthenticationFailed, err)
		}
		return model.NewResponseError(model.ErrorKindProviderError, err)
	}
	if midStream {
		return model.NewResponseError(model.ErrorKindProviderError, err)
	}
	return model.NewResponseError(model.ErrorKindTransportFailure, fmt.Errorf("openai request failed: %w", err))
}
