package usecase

import (
	"context"
	"errors"
	"github.com/google/uuid"
	"github.com/iamvkosarev/cricket-guru-bot/internal/model"
	"github.com/iamvkosarev/cricket-guru-bot/pkg/local"
	"github.com/iamvkosarev/cricket-guru-bot/pkg/logger"
	"github.com/sashabaranov/go-openai"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"
)

// Renderer is the UI side of a chat. RenderStreamingMessage overwrites a single
// in-progress assistant message until FinishStreamingMessage or RenderError.
type Renderer interface {
	RenderMessage(source model.MessageSource, text string)
	RenderStreamingMessage(textSoFar string)
	FinishStreamingMessage(text string)
	RenderWarning(text string)
	RenderError(text string)
}

type ConversationStorage interface {
	Append(message model.Message)
	All() []model.Message
}

type Responder interface {
	Respond(
		ctx context.Context,
		prompt []openai.ChatCompletionMessage,
		credential model.Credential,
		onPartial func(textSoFar string),
	) (string, error)
	ModelConfig() model.ModelConfig
}

type Tracer interface {
	TraceTurn(ctx context.Context, turn TurnTrace)
}

type ChatUsecaseDeps struct {
	Conversation ConversationStorage
	Prompt       *PromptUsecase
	Responder    Responder
	Tracer       Tracer
	Logger       *slog.Logger
}

type ChatConfig struct {
	SessionID        uuid.UUID
	CredentialPrefix string
	Language         local.Language
}

// ChatUsecase drives the turns of one session. A turn runs to completion before
// the next HandleInput call; the usecase is not safe for concurrent use.
type ChatUsecase struct {
	ChatUsecaseDeps
	cfg   ChatConfig
	state model.ChatState
}

func NewChatUsecase(deps ChatUsecaseDeps, cfg ChatConfig) *ChatUsecase {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if cfg.CredentialPrefix == "" {
		cfg.CredentialPrefix = model.DefaultCredentialPrefix
	}
	return &ChatUsecase{
		ChatUsecaseDeps: deps,
		cfg:             cfg,
		state:           model.ChatStateIdle,
	}
}

func (c *ChatUsecase) SessionID() uuid.UUID {
	return c.cfg.SessionID
}

func (c *ChatUsecase) State() model.ChatState {
	return c.state
}

func (c *ChatUsecase) History() []model.Message {
	return c.Conversation.All()
}

// HandleInput processes one user turn and returns the state the turn ended in:
// AwaitingCredential, Displayed or Failed. Blank input is ignored and returns Idle.
// The conversation grows only on success, by the question and its answer.
// The controller is back in Idle when HandleInput returns.
func (c *ChatUsecase) HandleInput(
	ctx context.Context,
	text string,
	credential model.Credential,
	renderer Renderer,
) (turnState model.ChatState) {
	turnLogger := c.Logger.With("session_id", c.cfg.SessionID)
	ctx = logger.WithContext(ctx, turnLogger)
	defer func() {
		if r := recover(); r != nil {
			turnLogger.Error("turn panicked", "panic", r, "stack", string(debug.Stack()))
			renderer.RenderError(TextUnexpectedError.Text(c.cfg.Language))
			turnState = model.ChatStateFailed
		}
		c.setState(turnLogger, model.ChatStateIdle)
	}()

	if strings.TrimSpace(text) == "" {
		return model.ChatStateIdle
	}

	renderer.RenderMessage(model.MessageSourceUser, text)

	if !credential.WellFormed(c.cfg.CredentialPrefix) {
		c.setState(turnLogger, model.ChatStateAwaitingCredential)
		turnLogger.Info("turn rejected", "error", model.ErrCredentialMissingOrMalformed)
		renderer.RenderWarning(TextEnterAPIKey.Text(c.cfg.Language))
		return model.ChatStateAwaitingCredential
	}

	userMessage := model.NewUserMessage(text)
	c.setState(turnLogger, model.ChatStateStreaming)

	prompt := c.Prompt.Build(append(c.Conversation.All(), userMessage))
	startedAt := time.Now()
	answer, err := c.Responder.Respond(ctx, prompt, credential, renderer.RenderStreamingMessage)
	finishedAt := time.Now()

	if err != nil {
		c.setState(turnLogger, model.ChatStateFailed)
		turnLogger.Warn("failed to get answer", "error_kind", model.ErrorKindOf(err), "error", err)
		renderer.RenderError(c.formatTurnError(err))
		c.trace(ctx, prompt, "", err, startedAt, finishedAt)
		return model.ChatStateFailed
	}

	c.Conversation.Append(userMessage)
	c.Conversation.Append(model.NewAssistantMessage(answer))
	renderer.FinishStreamingMessage(answer)
	c.setState(turnLogger, model.ChatStateDisplayed)
	c.trace(ctx, prompt, answer, nil, startedAt, finishedAt)
	return model.ChatStateDisplayed
}

func (c *ChatUsecase) formatTurnError(err error) string {
	var respErr *model.ResponseError
	if errors.As(err, &respErr) {
		return TextErrorFormat.Format(c.cfg.Language, respErr.Message)
	}
	return TextErrorFormat.Format(c.cfg.Language, err.Error())
}

func (c *ChatUsecase) setState(turnLogger *slog.Logger, state model.ChatState) {
	if c.state == state {
		return
	}
	turnLogger.Debug("chat state changed", "from", c.state, "to", state)
	c.state = state
}

func (c *ChatUsecase) trace(
	ctx context.Context,
	prompt []openai.ChatCompletionMessage,
	output string,
	err error,
	startedAt, finishedAt time.Time,
) {
	if c.Tracer == nil {
		return
	}
	c.Tracer.TraceTurn(
		ctx, TurnTrace{
			SessionID:  c.cfg.SessionID,
			Model:      c.Responder.ModelConfig().Model,
			Prompt:     prompt,
			Output:     output,
			Err:        err,
			StartedAt:  startedAt,
			FinishedAt: finishedAt,
		},
	)
}
