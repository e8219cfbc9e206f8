package usecase

import (
	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/iamvkosarev/cricket-guru-bot/internal/model"
	"golang.org/x/time/rate"
	"log/slog"
	"time"
)

const warningMarker = "⚠️ "

type renderEventKind int8

const (
	renderEventMessage = renderEventKind(iota)
	renderEventStreaming
	renderEventFinish
	renderEventWarning
	renderEventError
)

type renderEvent struct {
	kind   renderEventKind
	source model.MessageSource
	text   string
}

// channelRenderer hands render calls to another goroutine, keeping their order.
type channelRenderer struct {
	events chan<- renderEvent
}

func (r channelRenderer) RenderMessage(source model.MessageSource, text string) {
	r.events <- renderEvent{kind: renderEventMessage, source: source, text: text}
}

func (r channelRenderer) RenderStreamingMessage(textSoFar string) {
	r.events <- renderEvent{kind: renderEventStreaming, text: textSoFar}
}

func (r channelRenderer) FinishStreamingMessage(text string) {
	r.events <- renderEvent{kind: renderEventFinish, text: text}
}

func (r channelRenderer) RenderWarning(text string) {
	r.events <- renderEvent{kind: renderEventWarning, text: text}
}

func (r channelRenderer) RenderError(text string) {
	r.events <- renderEvent{kind: renderEventError, text: text}
}

// telegramStreamWriter shows the streaming answer as one telegram message that
// is edited in place. Edits are rate limited because telegram throttles bots
// editing faster than about once a second:
// https://core.telegram.org/bots/faq#my-bot-is-hitting-limits-how-do-i-avoid-this
// The final text is always sent regardless of the limit.
type telegramStreamWriter struct {
	bot         Bot
	chatID      int64
	limiter     *rate.Limiter
	logger      *slog.Logger
	emptyAnswer string
	answerMsgID int
	lastSent    string
	pending     string
}

// emptyAnswer is shown instead of an answer with no text, telegram rejects empty messages.
func newTelegramStreamWriter(
	bot Bot,
	chatID int64,
	editInterval time.Duration,
	emptyAnswer string,
	logger *slog.Logger,
) *telegramStreamWriter {
	limit := rate.Inf
	if editInterval > 0 {
		limit = rate.Every(editInterval)
	}
	return &telegramStreamWriter{
		bot:         bot,
		chatID:      chatID,
		limiter:     rate.NewLimiter(limit, 1),
		logger:      logger,
		emptyAnswer: emptyAnswer,
	}
}

func (w *telegramStreamWriter) consume(events <-chan renderEvent) {
	for event := range events {
		switch event.kind {
		case renderEventMessage:
			// telegram already shows what the user typed
			if event.source == model.MessageSourceAssistant {
				w.send(event.text)
			}
		case renderEventStreaming:
			w.pending = event.text
			if w.limiter.Allow() {
				w.flush()
			}
		case renderEventFinish:
			w.pending = event.text
			if w.pending == "" {
				w.pending = w.emptyAnswer
			}
			w.flush()
		case renderEventWarning, renderEventError:
			w.send(warningMarker + event.text)
		}
	}
}

func (w *telegramStreamWriter) flush() {
	if len(w.pending) == 0 || w.pending == w.lastSent {
		return
	}
	if w.answerMsgID == 0 {
		msg, err := w.bot.Send(api.NewMessage(w.chatID, w.pending))
		if err != nil {
			w.logger.Warn("failed to send answer to bot", "chat_id", w.chatID, "error", err)
			return
		}
		w.answerMsgID = msg.MessageID
	} else {
		if _, err := w.bot.Send(api.NewEditMessageText(w.chatID, w.answerMsgID, w.pending)); err != nil {
			w.logger.Warn("failed to send new edit message to bot", "chat_id", w.chatID, "error", err)
			return
		}
	}
	w.lastSent = w.pending
}

func (w *telegramStreamWriter) send(text string) {
	if _, err := w.bot.Send(api.NewMessage(w.chatID, text)); err != nil {
		w.logger.Warn("failed to send new message to bot", "chat_id", w.chatID, "error", err)
	}
}
