package model

import (
	"github.com/google/uuid"
	"time"
)

type Session struct {
	SessionID      uuid.UUID
	TelegramID     int64
	Credential     Credential
	LanguageCode   string
	StartedAt      time.Time
	LastActiveTime time.Time
}
