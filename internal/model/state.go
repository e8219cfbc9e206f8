package model

// ChatState is where the chat controller is within a turn.
type ChatState int8

const (
	ChatStateIdle = ChatState(iota)
	ChatStateAwaitingCredential
	ChatStateStreaming
	ChatStateDisplayed
	ChatStateFailed
)

func (s ChatState) String() string {
	switch s {
	case ChatStateIdle:
		return "idle"
	case ChatStateAwaitingCredential:
		return "awaiting_credential"
	case ChatStateStreaming:
		return "streaming"
	case ChatStateDisplayed:
		return "displayed"
	case ChatStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
