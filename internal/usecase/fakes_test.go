package usecase

import (
	"context"
	api "github.com/OvyFlash/telegram-bot-api"
	"github.com/iamvkosarev/cricket-guru-bot/internal/model"
	"github.com/sashabaranov/go-openai"
	"io"
	"sync"
)

type fakeProvider struct {
	fragments []string
	// streamErr is returned by Next once failAt fragments were read.
	streamErr error
	failAt    int
	openErr   error

	calls       int
	prompts     [][]openai.ChatCompletionMessage
	credentials []model.Credential
	modelCfgs   []model.ModelConfig
	lastStream  *fakeStream
}

func newFakeProvider(fragments ...string) *fakeProvider {
	return &fakeProvider{fragments: fragments}
}

func (p *fakeProvider) OpenStream(
	_ context.Context,
	credential model.Credential,
	modelCfg model.ModelConfig,
	prompt []openai.ChatCompletionMessage,
) (FragmentStream, error) {
	p.calls++
	p.prompts = append(p.prompts, prompt)
	p.credentials = append(p.credentials, credential)
	p.modelCfgs = append(p.modelCfgs, modelCfg)
	if p.openErr != nil {
		return nil, p.openErr
	}
	p.lastStream = &fakeStream{fragments: p.fragments, err: p.streamErr, failAt: p.failAt}
	return p.lastStream, nil
}

type fakeStream struct {
	fragments []string
	err       error
	failAt    int
	pos       int
	closed    bool
}

func (s *fakeStream) Next() (string, error) {
	if s.err != nil && s.pos == s.failAt {
		return "", s.err
	}
	if s.pos >= len(s.fragments) {
		return "", io.EOF
	}
	fragment := s.fragments[s.pos]
	s.pos++
	return fragment, nil
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

type recordingRenderer struct {
	messages []model.Message
	partials []string
	finished []string
	warnings []string
	errors   []string
}

func (r *recordingRenderer) RenderMessage(source model.MessageSource, text string) {
	r.messages = append(r.messages, model.Message{Source: source, Body: text})
}

func (r *recordingRenderer) RenderStreamingMessage(textSoFar string) {
	r.partials = append(r.partials, textSoFar)
}

func (r *recordingRenderer) FinishStreamingMessage(text string) {
	r.finished = append(r.finished, text)
}

func (r *recordingRenderer) RenderWarning(text string) {
	r.warnings = append(r.warnings, text)
}

func (r *recordingRenderer) RenderError(text string) {
	r.errors = append(r.errors, text)
}

type fakeTracer struct {
	turns []TurnTrace
}

func (f *fakeTracer) TraceTurn(_ context.Context, turn TurnTrace) {
	f.turns = append(f.turns, turn)
}

type fakeTraceStorage struct {
	runs []model.TraceRun
	err  error
}

func (f *fakeTraceStorage) SaveRun(_ context.Context, run model.TraceRun) error {
	f.runs = append(f.runs, run)
	return f.err
}

// fakeBot records everything the frontend sends to telegram.
type fakeBot struct {
	mu        sync.Mutex
	sent      []api.Chattable
	requests  []api.Chattable
	nextMsgID int
	updates   chan api.Update
	stopped   bool
}

func newFakeBot() *fakeBot {
	return &fakeBot{
		nextMsgID: 100,
		updates:   make(chan api.Update),
	}
}

func (b *fakeBot) Send(c api.Chattable) (api.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, c)
	b.nextMsgID++
	return api.Message{MessageID: b.nextMsgID}, nil
}

func (b *fakeBot) Request(c api.Chattable) (*api.APIResponse, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, c)
	return &api.APIResponse{Ok: true}, nil
}

func (b *fakeBot) GetUpdatesChan(api.UpdateConfig) api.UpdatesChannel {
	return b.updates
}

func (b *fakeBot) StopReceivingUpdates() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
}

// texts returns the text of every new or edited message, in send order.
func (b *fakeBot) texts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var texts []string
	for _, c := range b.sent {
		switch msg := c.(type) {
		case api.MessageConfig:
			texts = append(texts, msg.Text)
		case api.EditMessageTextConfig:
			texts = append(texts, msg.Text)
		}
	}
	return texts
}

func (b *fakeBot) edits() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	edits := 0
	for _, c := range b.sent {
		if _, ok := c.(api.EditMessageTextConfig); ok {
			edits++
		}
	}
	return edits
}

func (b *fakeBot) deleteRequests() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	deletes := 0
	for _, c := range b.requests {
		if _, ok := c.(api.DeleteMessageConfig); ok {
			deletes++
		}
	}
	return deletes
}
