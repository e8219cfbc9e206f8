package model

import (
	"github.com/google/uuid"
	"time"
)

type TracePromptMessage struct {
	Role    string
	Content string
}

// TraceRun is what the tracing backend receives for one turn.
type TraceRun struct {
	RunID        uuid.UUID
	SessionID    uuid.UUID
	Project      string
	Model        string
	Prompt       []TracePromptMessage
	Output       string
	ErrorKind    ErrorKind
	Error        string
	PromptTokens int
	StartedAt    time.Time
	FinishedAt   time.Time
}

func (r TraceRun) Succeeded() bool {
	return r.Error == ""
}
