package usecase

import (
	"context"
	"fmt"
	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/iamvkosarev/cricket-guru-bot/config"
	"github.com/iamvkosarev/cricket-guru-bot/internal/model"
	"github.com/iamvkosarev/cricket-guru-bot/pkg/local"
	"github.com/sourcegraph/conc"
	"log/slog"
	"strings"
)

const (
	CommandStart = "start"
	CommandHelp  = "help"
	CommandKey   = "key"
	CommandNew   = "new"
)

// Bot is the part of *api.BotAPI the frontend uses.
type Bot interface {
	Send(c api.Chattable) (api.Message, error)
	Request(c api.Chattable) (*api.APIResponse, error)
	GetUpdatesChan(config api.UpdateConfig) api.UpdatesChannel
	StopReceivingUpdates()
}

type TelegramUsecaseDeps struct {
	Session *SessionUsecase
	Bot     Bot
	Logger  *slog.Logger
}

type TelegramUsecase struct {
	TelegramUsecaseDeps
	cfg config.Telegram
}

type incomingMessage struct {
	chatID       int64
	messageID    int
	text         string
	command      string
	commandArgs  string
	languageCode string
}

func NewTelegramUsecase(cfg config.Telegram, deps TelegramUsecaseDeps) (*TelegramUsecase, error) {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	_, err := deps.Bot.Request(
		api.NewSetMyCommands(
			[]api.BotCommand{
				{
					Command:     CommandHelp,
					Description: "Get help",
				},
				{
					Command:     CommandKey,
					Description: "Set your OpenAI API key for this session",
				},
				{
					Command:     CommandNew,
					Description: "End the session and start a new conversation",
				},
			}...,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set bot commands: %w", err)
	}

	return &TelegramUsecase{
		TelegramUsecaseDeps: deps,
		cfg:                 cfg,
	}, nil
}

// Run handles updates one at a time until ctx is done, so turns of the same chat
// never overlap.
func (t *TelegramUsecase) Run(ctx context.Context) error {
	u := api.NewUpdate(0)
	u.Timeout = 60

	updates := t.Bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			t.Bot.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			if err := t.handleMessage(ctx, toIncomingMessage(update.Message)); err != nil {
				t.Logger.Error("error handling message", "chat_id", update.Message.Chat.ID, "error", err)
			}
		}
	}
}

func toIncomingMessage(message *api.Message) incomingMessage {
	msg := incomingMessage{
		chatID:    message.Chat.ID,
		messageID: message.MessageID,
		text:      message.Text,
	}
	if message.From != nil {
		msg.languageCode = message.From.LanguageCode
	}
	if message.IsCommand() {
		msg.command = message.Command()
		msg.commandArgs = message.CommandArguments()
	}
	return msg
}

func (t *TelegramUsecase) handleMessage(ctx context.Context, msg incomingMessage) error {
	session, expired, err := t.Session.GetSessionForTelegramUser(msg.chatID, msg.languageCode)
	if err != nil {
		t.sendMessageAndHandleErr(msg.chatID, TextServerError.Text(local.ParseLanguage(msg.languageCode)))
		return fmt.Errorf("failed to get session for telegram user: %w", err)
	}
	language := local.ParseLanguage(session.LanguageCode)
	if expired {
		t.sendMessageAndHandleErr(msg.chatID, TextSessionExpired.Text(language))
	}

	if msg.command != "" {
		return t.handleCommand(msg, session, language)
	}

	chat := t.Session.Chat(session)
	state := t.answer(ctx, msg.chatID, chat, msg.text, session.Credential, language)
	t.Logger.Debug("turn finished", "session_id", session.SessionID, "state", state)
	return nil
}

func (t *TelegramUsecase) handleCommand(msg incomingMessage, session model.Session, language local.Language) error {
	var answerText string
	switch msg.command {
	case CommandStart:
		answerText = TextCommandStart.Text(language)
	case CommandHelp:
		answerText = TextCommandHelp.Text(language)
	case CommandKey:
		credential := strings.TrimSpace(msg.commandArgs)
		if credential == "" {
			answerText = TextKeyMissing.Text(language)
			break
		}
		if _, err := t.Bot.Request(api.NewDeleteMessage(msg.chatID, msg.messageID)); err != nil {
			t.Logger.Warn("failed to delete message with api key", "chat_id", msg.chatID, "error", err)
		}
		if err := t.Session.UpdateSessionCredential(session.SessionID, model.Credential(credential)); err != nil {
			t.sendMessageAndHandleErr(msg.chatID, TextServerError.Text(language))
			return fmt.Errorf("failed to update session credential: %w", err)
		}
		answerText = TextKeySaved.Text(language)
	case CommandNew:
		if err := t.Session.EndSession(session.SessionID); err != nil {
			t.sendMessageAndHandleErr(msg.chatID, TextServerError.Text(language))
			return fmt.Errorf("failed to end session: %w", err)
		}
		answerText = TextNewSession.Text(language)
	default:
		answerText = TextCommandUnknown.Text(language)
	}
	t.sendMessageAndHandleErr(msg.chatID, answerText)
	return nil
}

// answer runs the turn and the telegram rendering side by side: the turn pushes
// render events, the writer turns them into sent and edited messages.
func (t *TelegramUsecase) answer(
	ctx context.Context,
	chatID int64,
	chat *ChatUsecase,
	text string,
	credential model.Credential,
	language local.Language,
) model.ChatState {
	events := make(chan renderEvent)
	writer := newTelegramStreamWriter(t.Bot, chatID, t.cfg.EditInterval, TextEmptyAnswer.Text(language), t.Logger)

	var state model.ChatState
	wg := conc.NewWaitGroup()
	wg.Go(
		func() {
			defer close(events)
			state = chat.HandleInput(ctx, text, credential, channelRenderer{events: events})
		},
	)
	wg.Go(
		func() {
			if _, err := t.Bot.Request(api.NewChatAction(chatID, api.ChatTyping)); err != nil {
				t.Logger.Warn("failed to send chat action", "chat_id", chatID, "error", err)
			}
			writer.consume(events)
		},
	)
	wg.Wait()
	return state
}

func (t *TelegramUsecase) sendMessageAndHandleErr(chatID int64, message string) api.Message {
	msg, err := t.Bot.Send(api.NewMessage(chatID, message))
	if err != nil {
		t.Logger.Warn("failed to send new message to bot", "chat_id", chatID, "error", err)
	}
	return msg
}
