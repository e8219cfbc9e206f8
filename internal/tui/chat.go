package tui

import (
	"context"
	"fmt"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/iamvkosarev/cricket-guru-bot/internal/model"
	"github.com/iamvkosarev/cricket-guru-bot/internal/usecase"
	"github.com/mattn/go-runewidth"
	"log/slog"
	"strings"
)

const (
	pageTitle        = "Cricket Guru🏏"
	pageCaption      = "Your go-to assistant for cricket stats, trivia, and more!🚀"
	inputPlaceholder = "What's up?"
	keyPlaceholder   = "OpenAI API key"
	warningMarker    = "⚠️ "

	defaultWindowWidth   = 100
	defaultWindowHeight  = 40
	inputCharLimit       = 4000
	keyCharLimit         = 200
	chromeHeightReserved = 8
	minContentHeight     = 5
	markdownWrapWidth    = 80
	minWrapWidth         = 10
	wrapPadding          = 4
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	boldStyle    = lipgloss.NewStyle().Bold(true)
	accentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
)

type focusedInput int8

const (
	focusMessage = focusedInput(iota)
	focusKey
)

type entryKind int8

const (
	entryMessage = entryKind(iota)
	entryWarning
	entryError
)

type transcriptEntry struct {
	kind   entryKind
	source model.MessageSource
	text   string
}

// Messages the renderer sends to the program while a turn runs.
type (
	renderMessageMsg struct {
		source model.MessageSource
		text   string
	}
	streamingMsg  struct{ text string }
	finishMsg     struct{ text string }
	warningMsg    struct{ text string }
	errorMsg      struct{ text string }
	turnFinishMsg struct{ state model.ChatState }
)

// programRenderer forwards render calls to the running program. send blocks until
// the program takes the message, so the program sees them in call order.
type programRenderer struct {
	send func(msg tea.Msg)
}

func (r programRenderer) RenderMessage(source model.MessageSource, text string) {
	r.send(renderMessageMsg{source: source, text: text})
}

func (r programRenderer) RenderStreamingMessage(textSoFar string) {
	r.send(streamingMsg{text: textSoFar})
}

func (r programRenderer) FinishStreamingMessage(text string) {
	r.send(finishMsg{text: text})
}

func (r programRenderer) RenderWarning(text string) {
	r.send(warningMsg{text: text})
}

func (r programRenderer) RenderError(text string) {
	r.send(errorMsg{text: text})
}

type programSender struct {
	program *tea.Program
}

func (s *programSender) send(msg tea.Msg) {
	s.program.Send(msg)
}

// ChatProgram is the terminal frontend: one session for the lifetime of the
// program, with the API key typed into a masked input.
type ChatProgram struct {
	model  chatModel
	sender *programSender
	logger *slog.Logger
}

func NewChatProgram(ctx context.Context, chat *usecase.ChatUsecase, logger *slog.Logger) *ChatProgram {
	if logger == nil {
		logger = slog.Default()
	}
	markdown, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(markdownWrapWidth),
	)
	if err != nil {
		logger.Warn("failed to create markdown renderer, answers are shown as plain text", "error", err)
	}
	sender := &programSender{}
	return &ChatProgram{
		model:  newChatModel(ctx, chat, programRenderer{send: sender.send}, markdown),
		sender: sender,
		logger: logger,
	}
}

// Run blocks until the user quits or ctx is done.
func (p *ChatProgram) Run(ctx context.Context) error {
	program := tea.NewProgram(p.model, tea.WithAltScreen())
	p.sender.program = program

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			program.Quit()
		case <-stop:
		}
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run chat program: %w", err)
	}
	p.logger.Info("chat program finished", "session_id", p.model.chat.SessionID())
	return nil
}

type chatModel struct {
	ctx      context.Context
	chat     *usecase.ChatUsecase
	renderer usecase.Renderer
	markdown *glamour.TermRenderer

	input       textinput.Model
	keyInput    textinput.Model
	focus       focusedInput
	contentView viewport.Model

	entries   []transcriptEntry
	streaming string
	busy      bool
	lastState model.ChatState

	width  int
	height int
}

func newChatModel(
	ctx context.Context,
	chat *usecase.ChatUsecase,
	renderer usecase.Renderer,
	markdown *glamour.TermRenderer,
) chatModel {
	input := textinput.New()
	input.Placeholder = inputPlaceholder
	input.CharLimit = inputCharLimit
	input.Prompt = ""
	input.Focus()

	keyInput := textinput.New()
	keyInput.Placeholder = keyPlaceholder
	keyInput.CharLimit = keyCharLimit
	keyInput.Prompt = ""
	keyInput.EchoMode = textinput.EchoPassword
	keyInput.EchoCharacter = '•'

	m := chatModel{
		ctx:         ctx,
		chat:        chat,
		renderer:    renderer,
		markdown:    markdown,
		input:       input,
		keyInput:    keyInput,
		focus:       focusMessage,
		contentView: viewport.New(defaultWindowWidth, defaultWindowHeight-chromeHeightReserved),
		lastState:   model.ChatStateIdle,
		width:       defaultWindowWidth,
		height:      defaultWindowHeight,
	}
	m.resize(defaultWindowWidth, defaultWindowHeight)
	return m
}

func (m chatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m chatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if cmd, handled := m.handleKeyPress(msg); handled {
			return m, cmd
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case renderMessageMsg:
		m.entries = append(m.entries, transcriptEntry{kind: entryMessage, source: msg.source, text: msg.text})
		m.refreshContent()
	case streamingMsg:
		m.streaming = msg.text
		m.refreshContent()
	case finishMsg:
		m.streaming = ""
		m.entries = append(m.entries, transcriptEntry{kind: entryMessage, source: model.MessageSourceAssistant, text: msg.text})
		m.refreshContent()
	case warningMsg:
		m.entries = append(m.entries, transcriptEntry{kind: entryWarning, text: msg.text})
		m.refreshContent()
	case errorMsg:
		m.streaming = ""
		m.entries = append(m.entries, transcriptEntry{kind: entryError, text: msg.text})
		m.refreshContent()
	case turnFinishMsg:
		m.busy = false
		m.lastState = msg.state
		m.streaming = ""
		m.refreshContent()
	}

	var cmd tea.Cmd
	if m.focus == focusKey {
		m.keyInput, cmd = m.keyInput.Update(msg)
	} else if !m.busy {
		m.input, cmd = m.input.Update(msg)
	}
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *chatModel) handleKeyPress(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return tea.Quit, true
	case tea.KeyTab:
		m.toggleFocus()
		return nil, true
	case tea.KeyEnter:
		if m.focus == focusKey {
			m.toggleFocus()
			return nil, true
		}
		if m.busy {
			return nil, true
		}
		return m.submit(), true
	case tea.KeyPgUp:
		m.contentView.ViewUp()
		return nil, true
	case tea.KeyPgDown:
		m.contentView.ViewDown()
		return nil, true
	}
	return nil, false
}

func (m *chatModel) toggleFocus() {
	if m.focus == focusMessage {
		m.focus = focusKey
		m.input.Blur()
		m.keyInput.Focus()
		return
	}
	m.focus = focusMessage
	m.keyInput.Blur()
	m.input.Focus()
}

// submit starts a turn with the current key. The turn runs outside the update
// loop and reports back through the renderer, then with turnFinishMsg.
func (m *chatModel) submit() tea.Cmd {
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	m.input.Reset()
	m.busy = true

	ctx, chat, renderer := m.ctx, m.chat, m.renderer
	credential := model.Credential(strings.TrimSpace(m.keyInput.Value()))
	return func() tea.Msg {
		return turnFinishMsg{state: chat.HandleInput(ctx, text, credential, renderer)}
	}
}

func (m *chatModel) resize(width, height int) {
	m.width = width
	m.height = height

	contentHeight := height - chromeHeightReserved
	if contentHeight < minContentHeight {
		contentHeight = minContentHeight
	}
	m.contentView.Width = width
	m.contentView.Height = contentHeight
	m.input.Width = width - 3
	m.keyInput.Width = width - 3

	m.refreshContent()
}

func (m *chatModel) refreshContent() {
	var content strings.Builder
	for _, entry := range m.entries {
		content.WriteString(m.renderEntry(entry))
		content.WriteString("\n\n")
	}
	if m.streaming != "" {
		content.WriteString(accentStyle.Render(model.MessageSourceAssistant.DisplayName()))
		content.WriteString("\n")
		content.WriteString(wrapText(m.streaming, m.width))
		content.WriteString("\n")
	}
	m.contentView.SetContent(content.String())
	m.contentView.GotoBottom()
}

func (m *chatModel) renderEntry(entry transcriptEntry) string {
	switch entry.kind {
	case entryWarning:
		return warningStyle.Render(wrapText(warningMarker+entry.text, m.width))
	case entryError:
		return errorStyle.Render(wrapText(warningMarker+entry.text, m.width))
	}
	if entry.source == model.MessageSourceUser {
		return boldStyle.Render(entry.source.DisplayName()) + "\n" + wrapText(entry.text, m.width)
	}
	return accentStyle.Render(entry.source.DisplayName()) + "\n" + m.renderMarkdown(entry.text)
}

func (m *chatModel) renderMarkdown(text string) string {
	if m.markdown == nil {
		return wrapText(text, m.width)
	}
	rendered, err := m.markdown.Render(text)
	if err != nil {
		return wrapText(text, m.width)
	}
	return strings.Trim(rendered, "\n")
}

func (m chatModel) View() string {
	header := titleStyle.Render(pageTitle) + "\n" + dimStyle.Render(pageCaption)

	status := dimStyle.Render("ready")
	switch {
	case m.busy:
		status = dimStyle.Render("answering...")
	case m.lastState == model.ChatStateAwaitingCredential:
		status = warningStyle.Render("press Tab to enter your OpenAI API key")
	}

	keyLabel := dimStyle.Render("key ")
	messageLabel := promptStyle.Render("> ")
	if m.focus == focusKey {
		keyLabel = promptStyle.Render("key ")
		messageLabel = dimStyle.Render("> ")
	}

	help := dimStyle.Render("Enter send • Tab switch key/message • PgUp/PgDn scroll • Esc quit")

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		keyLabel+m.keyInput.View(),
		m.contentView.View(),
		status,
		messageLabel+m.input.View(),
		help,
	)
}

// wrapText wraps every line to maxWidth terminal cells, counting wide runes as two.
func wrapText(text string, maxWidth int) string {
	if maxWidth <= minWrapWidth {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = wrapLine(line, maxWidth-wrapPadding)
	}
	return strings.Join(lines, "\n")
}

func wrapLine(line string, maxWidth int) string {
	if runewidth.StringWidth(line) <= maxWidth {
		return line
	}

	var result strings.Builder
	currentWidth := 0
	for _, r := range line {
		runeW := runewidth.RuneWidth(r)
		if currentWidth+runeW > maxWidth && currentWidth > 0 {
			result.WriteString("\n")
			currentWidth = 0
		}
		result.WriteRune(r)
		currentWidth += runeW
	}
	return result.String()
}
