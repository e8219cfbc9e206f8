package usecase

import (
	"context"
	"errors"
	"fmt"
	"github.com/iamvkosarev/cricket-guru-bot/internal/model"
	"github.com/iamvkosarev/cricket-guru-bot/pkg/logger"
	"github.com/sashabaranov/go-openai"
	"io"
	"strings"
)

type ResponderUsecaseDeps struct {
	Provider Provider
}

// ResponderUsecase streams one completion and accumulates it.
type ResponderUsecase struct {
	ResponderUsecaseDeps
	modelCfg model.ModelConfig
}

func NewResponderUsecase(deps ResponderUsecaseDeps, modelCfg model.ModelConfig) *ResponderUsecase {
	return &ResponderUsecase{
		ResponderUsecaseDeps: deps,
		modelCfg:             modelCfg,
	}
}

func (r *ResponderUsecase) ModelConfig() model.ModelConfig {
	return r.modelCfg
}

// Respond calls onPartial with the whole answer so far after every fragment, in
// arrival order. The returned text equals the last value passed to onPartial.
// Failures are *model.ResponseError and are never retried.
func (r *ResponderUsecase) Respond(
	ctx context.Context,
	prompt []openai.ChatCompletionMessage,
	credential model.Credential,
	onPartial func(textSoFar string),
) (string, error) {
	stream, err := r.Provider.OpenStream(ctx, credential, r.modelCfg, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to open completion stream: %w", asResponseError(err, model.ErrorKindTransportFailure))
	}
	turnLogger := logger.FromContext(ctx)
	defer func() {
		if err := stream.Close(); err != nil {
			turnLogger.Debug("failed to close completion stream", "error", err)
		}
	}()

	var currentAnswer strings.Builder
	fragments := 0
	for {
		fragment, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			turnLogger.Warn("completion stream failed", "fragments", fragments, "error", err)
			return "", fmt.Errorf("completion stream failed: %w", asResponseError(err, model.ErrorKindProviderError))
		}
		fragments++
		currentAnswer.WriteString(fragment)
		if onPartial != nil {
			onPartial(currentAnswer.String())
		}
	}
	turnLogger.Debug("completion stream finished", "fragments", fragments, "length", currentAnswer.Len())
	return currentAnswer.String(), nil
}

func asResponseError(err error, fallback model.ErrorKind) error {
	var respErr *model.ResponseError
	if errors.As(err, &respErr) {
		return err
	}
	return model.NewResponseError(fallback, err)
}
