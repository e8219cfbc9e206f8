package usecase

import (
	"context"
	"errors"
	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/iamvkosarev/cricket-guru-bot/config"
	"github.com/iamvkosarev/cricket-guru-bot/internal/model"
	in_memory "github.com/iamvkosarev/cricket-guru-bot/internal/storage/in-memory"
	"github.com/iamvkosarev/cricket-guru-bot/pkg/local"
	"github.com/iamvkosarev/cricket-guru-bot/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

const testChatID = int64(42)

type telegramFixture struct {
	telegram *TelegramUsecase
	bot      *fakeBot
	provider *fakeProvider
}

func newTelegramFixture(t *testing.T, provider *fakeProvider, editInterval time.Duration) telegramFixture {
	sessions := NewSessionUsecase(
		SessionUsecaseDeps{
			SessionStorage: in_memory.NewSessionStorage(),
			NewChat: func(session model.Session) *ChatUsecase {
				return NewChatUsecase(
					ChatUsecaseDeps{
						Conversation: in_memory.NewConversationStorage(),
						Prompt:       NewPromptUsecase(""),
						Responder:    newTestResponder(provider),
						Logger:       logger.Discard(),
					},
					ChatConfig{SessionID: session.SessionID, Language: local.ParseLanguage(session.LanguageCode)},
				)
			},
			Logger: logger.Discard(),
		},
		0,
	)
	bot := newFakeBot()
	telegram, err := NewTelegramUsecase(
		config.Telegram{EditInterval: editInterval},
		TelegramUsecaseDeps{Session: sessions, Bot: bot, Logger: logger.Discard()},
	)
	require.NoError(t, err)
	return telegramFixture{telegram: telegram, bot: bot, provider: provider}
}

func textMessage(text string) incomingMessage {
	return incomingMessage{chatID: testChatID, messageID: 1, text: text, languageCode: "en"}
}

func commandMessage(command, args string) incomingMessage {
	return incomingMessage{
		chatID:       testChatID,
		messageID:    2,
		text:         "/" + command + " " + args,
		command:      command,
		commandArgs:  args,
		languageCode: "en",
	}
}

func (f telegramFixture) handle(t *testing.T, msg incomingMessage) {
	require.NoError(t, f.telegram.handleMessage(context.Background(), msg))
}

func TestTelegramRegistersCommands(t *testing.T) {
	f := newTelegramFixture(t, newFakeProvider(), 0)

	require.NotEmpty(t, f.bot.requests)
	_, ok := f.bot.requests[0].(api.SetMyCommandsConfig)
	assert.True(t, ok)
}

func TestTelegramKeyCommand(t *testing.T) {
	f := newTelegramFixture(t, newFakeProvider(), 0)

	f.handle(t, commandMessage(CommandKey, " sk-test "))

	assert.Equal(t, 1, f.bot.deleteRequests())
	assert.Equal(t, []string{TextKeySaved.Text(local.Eng)}, f.bot.texts())

	session, _, err := f.telegram.Session.GetSessionForTelegramUser(testChatID, "en")
	require.NoError(t, err)
	assert.Equal(t, model.Credential("sk-test"), session.Credential)
}

func TestTelegramKeyCommandWithoutKey(t *testing.T) {
	f := newTelegramFixture(t, newFakeProvider(), 0)

	f.handle(t, commandMessage(CommandKey, ""))

	assert.Equal(t, 0, f.bot.deleteRequests())
	assert.Equal(t, []string{TextKeyMissing.Text(local.Eng)}, f.bot.texts())
}

func TestTelegramQuestionWithoutKey(t *testing.T) {
	f := newTelegramFixture(t, newFakeProvider("never"), 0)

	f.handle(t, textMessage(worldCupQuestion))

	assert.Equal(t, []string{"⚠️ Please enter your OpenAI API key!"}, f.bot.texts())
	assert.Equal(t, 0, f.provider.calls)
}

func TestTelegramStreamsAnswerByEditing(t *testing.T) {
	f := newTelegramFixture(t, newFakeProvider("England", " won", "."), 0)
	f.handle(t, commandMessage(CommandKey, "sk-test"))

	f.handle(t, textMessage(worldCupQuestion))

	assert.Equal(t, []string{
		TextKeySaved.Text(local.Eng),
		"England",
		"England won",
		"England won.",
	}, f.bot.texts())
	assert.Equal(t, 2, f.bot.edits())
	require.Len(t, f.provider.credentials, 1)
	assert.Equal(t, model.Credential("sk-test"), f.provider.credentials[0])
}

func TestTelegramThrottledEditsAlwaysShowFinalAnswer(t *testing.T) {
	f := newTelegramFixture(t, newFakeProvider("England", " won", " the", " final."), time.Hour)
	f.handle(t, commandMessage(CommandKey, "sk-test"))

	f.handle(t, textMessage(worldCupQuestion))

	assert.Equal(t, []string{
		TextKeySaved.Text(local.Eng),
		"England",
		"England won the final.",
	}, f.bot.texts())
	assert.Equal(t, 1, f.bot.edits())
}

func TestTelegramProviderErrorIsShownInline(t *testing.T) {
	provider := &fakeProvider{
		openErr: model.NewResponseError(model.ErrorKindAuthenticationFailed, errors.New("Incorrect API key provided")),
	}
	f := newTelegramFixture(t, provider, 0)
	f.handle(t, commandMessage(CommandKey, "sk-wrong"))

	f.handle(t, textMessage(worldCupQuestion))

	assert.Equal(t, []string{
		TextKeySaved.Text(local.Eng),
		"⚠️ Error: Incorrect API key provided",
	}, f.bot.texts())
}

func TestTelegramNewCommandClearsSession(t *testing.T) {
	f := newTelegramFixture(t, newFakeProvider("England."), 0)
	f.handle(t, commandMessage(CommandKey, "sk-test"))
	f.handle(t, textMessage(worldCupQuestion))

	f.handle(t, commandMessage(CommandNew, ""))
	f.handle(t, textMessage("Who was the captain?"))

	texts := f.bot.texts()
	require.Len(t, texts, 4)
	assert.Equal(t, TextNewSession.Text(local.Eng), texts[2])
	assert.Equal(t, "⚠️ Please enter your OpenAI API key!", texts[3])
	assert.Equal(t, 1, f.provider.calls)
}

func TestTelegramCommands(t *testing.T) {
	tests := []struct {
		command string
		want    string
	}{
		{command: CommandStart, want: TextCommandStart.Text(local.Eng)},
		{command: CommandHelp, want: TextCommandHelp.Text(local.Eng)},
		{command: "settings", want: TextCommandUnknown.Text(local.Eng)},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			f := newTelegramFixture(t, newFakeProvider(), 0)

			f.handle(t, commandMessage(tt.command, ""))

			assert.Equal(t, []string{tt.want}, f.bot.texts())
		})
	}
}

func TestTelegramRussianUser(t *testing.T) {
	f := newTelegramFixture(t, newFakeProvider(), 0)

	msg := textMessage(worldCupQuestion)
	msg.languageCode = "ru"
	f.handle(t, msg)

	assert.Equal(t, []string{"⚠️ " + TextEnterAPIKey.Text(local.Rus)}, f.bot.texts())
}

func TestTelegramRunStopsWithContext(t *testing.T) {
	f := newTelegramFixture(t, newFakeProvider(), 0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- f.telegram.Run(ctx)
	}()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after context cancel")
	}
	assert.True(t, f.bot.stopped)
}

func TestTelegramEmptyAnswerGetsVisibleReply(t *testing.T) {
	f := newTelegramFixture(t, newFakeProvider(), 0)
	f.handle(t, commandMessage(CommandKey, "sk-test"))

	f.handle(t, textMessage(worldCupQuestion))

	assert.Equal(t, []string{
		TextKeySaved.Text(local.Eng),
		TextEmptyAnswer.Text(local.Eng),
	}, f.bot.texts())
	assert.Equal(t, 1, f.provider.calls)
}
