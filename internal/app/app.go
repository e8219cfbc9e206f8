package app

import (
	"context"
	"fmt"
	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/google/uuid"
	"github.com/iamvkosarev/cricket-guru-bot/config"
	"github.com/iamvkosarev/cricket-guru-bot/internal/model"
	in_memory "github.com/iamvkosarev/cricket-guru-bot/internal/storage/in-memory"
	key_value "github.com/iamvkosarev/cricket-guru-bot/internal/storage/key-value"
	"github.com/iamvkosarev/cricket-guru-bot/internal/storage/remote"
	"github.com/iamvkosarev/cricket-guru-bot/internal/tui"
	"github.com/iamvkosarev/cricket-guru-bot/internal/usecase"
	"github.com/iamvkosarev/cricket-guru-bot/pkg/local"
	"github.com/redis/go-redis/v9"
	"log/slog"
	"net/http"
	"net/url"
)

// Run wires the chat core to the configured frontend and blocks until ctx is
// done or the frontend stops.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	baseURL, err := url.JoinPath(cfg.OpenAI.OpenAIBaseURL, "/v1")
	if err != nil {
		return fmt.Errorf("failed to build openai base url: %w", err)
	}
	cfg.OpenAI.OpenAIBaseURL = baseURL

	openAIUsecase := usecase.NewOpenAIUsecase(cfg.OpenAI)

	responderUsecase := usecase.NewResponderUsecase(
		usecase.ResponderUsecaseDeps{
			Provider: openAIUsecase,
		},
		model.ModelConfig{
			Model:           cfg.OpenAI.OpenAIModel,
			Temperature:     cfg.OpenAI.ModelTemperature,
			MaxOutputTokens: cfg.OpenAI.MaxOutputTokens,
			Streaming:       cfg.OpenAI.Streaming,
		},
	)

	promptUsecase := usecase.NewPromptUsecase(usecase.CricketSystemInstruction)

	traceStorage, closeTraceStorage, err := newTraceStorage(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeTraceStorage()

	traceUsecase := usecase.NewTraceUsecase(
		usecase.TraceUsecaseDeps{
			TraceStorage: traceStorage,
			Logger:       logger,
		},
		cfg.Tracing,
	)

	newChat := func(sessionID uuid.UUID, language local.Language) *usecase.ChatUsecase {
		return usecase.NewChatUsecase(
			usecase.ChatUsecaseDeps{
				Conversation: in_memory.NewConversationStorage(),
				Prompt:       promptUsecase,
				Responder:    responderUsecase,
				Tracer:       traceUsecase,
				Logger:       logger,
			},
			usecase.ChatConfig{
				SessionID:        sessionID,
				CredentialPrefix: cfg.OpenAI.CredentialPrefix,
				Language:         language,
			},
		)
	}

	switch cfg.App.Frontend {
	case config.FrontendTUI:
		chat := newChat(uuid.New(), local.Eng)
		logger.Info("starting terminal chat", "session_id", chat.SessionID())
		return tui.NewChatProgram(ctx, chat, logger).Run(ctx)
	case config.FrontendTelegram:
		return runTelegram(ctx, cfg, logger, newChat)
	default:
		return fmt.Errorf("%w: %q", config.ErrUnknownFrontend, cfg.App.Frontend)
	}
}

func runTelegram(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	newChat func(sessionID uuid.UUID, language local.Language) *usecase.ChatUsecase,
) error {
	bot, err := api.NewBotAPI(cfg.Telegram.TelegramAPIToken)
	if err != nil {
		return fmt.Errorf("failed to create new bot: %w", err)
	}
	logger.Info("authorized on telegram", "account", bot.Self.UserName)

	sessionUsecase := usecase.NewSessionUsecase(
		usecase.SessionUsecaseDeps{
			SessionStorage: in_memory.NewSessionStorage(),
			NewChat: func(session model.Session) *usecase.ChatUsecase {
				return newChat(session.SessionID, local.ParseLanguage(session.LanguageCode))
			},
			Logger: logger,
		},
		cfg.Telegram.SessionIdleTimeout,
	)

	telegramUsecase, err := usecase.NewTelegramUsecase(
		cfg.Telegram, usecase.TelegramUsecaseDeps{
			Session: sessionUsecase,
			Bot:     bot,
			Logger:  logger,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create telegram usecase: %w", err)
	}

	return telegramUsecase.Run(ctx)
}

// newTraceStorage picks where trace runs go. The returned func releases the
// storage connections.
func newTraceStorage(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
) (usecase.TraceStorage, func(), error) {
	switch cfg.Tracing.Exporter {
	case config.TraceExporterLog:
		return usecase.NewLogTraceStorage(logger), func() {}, nil
	case config.TraceExporterRedis:
		rdb := redis.NewClient(
			&redis.Options{
				Addr:     cfg.Redis.Endpoint,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			},
		)
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis is not reachable, trace runs may be lost", "endpoint", cfg.Redis.Endpoint, "error", err)
		}
		closeRedis := func() {
			if err := rdb.Close(); err != nil {
				logger.Warn("failed to close redis client", "error", err)
			}
		}
		return key_value.NewTraceStorage(rdb, cfg.Tracing.Retention), closeRedis, nil
	case config.TraceExporterHTTP:
		if cfg.Tracing.Endpoint == "" {
			return nil, nil, fmt.Errorf("tracing endpoint is required for %s exporter", config.TraceExporterHTTP)
		}
		httpClient := &http.Client{Timeout: cfg.Tracing.Timeout}
		return remote.NewTraceStorage(cfg.Tracing.Endpoint, cfg.Tracing.APIKey, httpClient), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", config.ErrUnknownTraceExporter, cfg.Tracing.Exporter)
	}
}
