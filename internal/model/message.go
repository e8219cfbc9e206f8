package model

type MessageSource string

const (
	MessageSourceUser      = MessageSource("user")
	MessageSourceAssistant = MessageSource("assistant")
)

// DisplayName is the label frontends put above a rendered message.
func (s MessageSource) DisplayName() string {
	switch s {
	case MessageSourceUser:
		return "You"
	case MessageSourceAssistant:
		return "Cricket Guru"
	default:
		return string(s)
	}
}

// Message is one turn side. Messages are never edited once appended.
type Message struct {
	Source MessageSource
	Body   string
}

func NewUserMessage(body string) Message {
	return Message{Source: MessageSourceUser, Body: body}
}

func NewAssistantMessage(body string) Message {
	return Message{Source: MessageSourceAssistant, Body: body}
}
