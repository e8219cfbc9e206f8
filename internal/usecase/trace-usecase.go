package usecase

import (
	"context"
	"github.com/google/uuid"
	"github.com/iamvkosarev/cricket-guru-bot/config"
	"github.com/iamvkosarev/cricket-guru-bot/internal/model"
	"github.com/iamvkosarev/cricket-guru-bot/pkg/logger"
	openai_tools "github.com/iamvkosarev/cricket-guru-bot/pkg/openai-tools"
	"github.com/sashabaranov/go-openai"
	"log/slog"
	"time"
)

// TurnTrace is what the chat controller knows about a finished turn.
type TurnTrace struct {
	SessionID  uuid.UUID
	Model      string
	Prompt     []openai.ChatCompletionMessage
	Output     string
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

type TraceStorage interface {
	SaveRun(ctx context.Context, run model.TraceRun) error
}

type TokenCounter func(messages []openai.ChatCompletionMessage, chatModel string) (int, error)

type TraceUsecaseDeps struct {
	TraceStorage TraceStorage
	CountToken   TokenCounter
	Logger       *slog.Logger
}

// TraceUsecase reports every turn to the tracing backend under the configured
// project. Export is best effort: failures are logged with the turn's logger and
// never reach the chat.
type TraceUsecase struct {
	TraceUsecaseDeps
	cfg     config.Tracing
	enabled bool
}

func NewTraceUsecase(deps TraceUsecaseDeps, cfg config.Tracing) *TraceUsecase {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.CountToken == nil {
		deps.CountToken = openai_tools.CountToken
	}
	t := &TraceUsecase{
		TraceUsecaseDeps: deps,
		cfg:              cfg,
		enabled:          cfg.Enabled,
	}
	switch {
	case !cfg.Enabled:
		deps.Logger.Info("tracing disabled")
	case deps.TraceStorage == nil:
		deps.Logger.Warn("tracing has no storage, tracing disabled", "project", cfg.Project)
		t.enabled = false
	case cfg.Exporter == config.TraceExporterHTTP && cfg.APIKey == "":
		deps.Logger.Warn("tracing api key is not set, tracing disabled", "project", cfg.Project)
		t.enabled = false
	default:
		deps.Logger.Info("tracing initialized", "project", cfg.Project, "exporter", cfg.Exporter)
	}
	return t
}

func (t *TraceUsecase) Enabled() bool {
	return t.enabled
}

func (t *TraceUsecase) TraceTurn(ctx context.Context, turn TurnTrace) {
	if !t.enabled {
		return
	}
	run := model.TraceRun{
		RunID:      uuid.New(),
		SessionID:  turn.SessionID,
		Project:    t.cfg.Project,
		Model:      turn.Model,
		Prompt:     toTracePrompt(turn.Prompt),
		Output:     turn.Output,
		StartedAt:  turn.StartedAt,
		FinishedAt: turn.FinishedAt,
	}
	if turn.Err != nil {
		run.ErrorKind = model.ErrorKindOf(turn.Err)
		run.Error = turn.Err.Error()
	}
	turnLogger := logger.FromContext(ctx)
	promptTokens, err := t.CountToken(turn.Prompt, turn.Model)
	if err != nil {
		turnLogger.Debug("failed to count prompt tokens", "run_id", run.RunID, "error", err)
	}
	run.PromptTokens = promptTokens

	if t.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.cfg.Timeout)
		defer cancel()
	}
	if err = t.TraceStorage.SaveRun(ctx, run); err != nil {
		turnLogger.Warn("failed to export trace run", "run_id", run.RunID, "project", run.Project, "error", err)
	}
}

func toTracePrompt(prompt []openai.ChatCompletionMessage) []model.TracePromptMessage {
	messages := make([]model.TracePromptMessage, 0, len(prompt))
	for _, msg := range prompt {
		messages = append(messages, model.TracePromptMessage{Role: msg.Role, Content: msg.Content})
	}
	return messages
}

// LogTraceStorage writes trace runs to the process log.
type LogTraceStorage struct {
	logger *slog.Logger
}

func NewLogTraceStorage(l *slog.Logger) *LogTraceStorage {
	return &LogTraceStorage{logger: l}
}

func (l *LogTraceStorage) SaveRun(ctx context.Context, run model.TraceRun) error {
	l.logger.InfoContext(
		ctx, "trace run",
		"run_id", run.RunID,
		"session_id", run.SessionID,
		"project", run.Project,
		"model", run.Model,
		"prompt_messages", len(run.Prompt),
		"prompt_tokens", run.PromptTokens,
		"output_length", len(run.Output),
		"error_kind", run.ErrorKind,
		"latency", run.FinishedAt.Sub(run.StartedAt),
	)
	return nil
}
