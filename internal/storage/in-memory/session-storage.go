package in_memory

import (
	"github.com/google/uuid"
	"github.com/iamvkosarev/cricket-guru-bot/internal/model"
	"sync"
	"time"
)

// SessionStorage indexes live sessions by id and by telegram chat.
type SessionStorage struct {
	mu               sync.RWMutex
	sessions         map[uuid.UUID]*model.Session
	telegramSessions map[int64]uuid.UUID
	now              func() time.Time
}

func NewSessionStorage() *SessionStorage {
	return &SessionStorage{
		sessions:         make(map[uuid.UUID]*model.Session),
		telegramSessions: make(map[int64]uuid.UUID),
		now:              time.Now,
	}
}

func (s *SessionStorage) CreateNewTelegramSession(telegramID int64, languageCode string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.telegramSessions[telegramID]; ok {
		return uuid.Nil, model.ErrSessionAlreadyExists
	}
	sessionID := uuid.New()
	now := s.now()
	s.telegramSessions[telegramID] = sessionID
	s.sessions[sessionID] = &model.Session{
		SessionID:      sessionID,
		TelegramID:     telegramID,
		LanguageCode:   languageCode,
		StartedAt:      now,
		LastActiveTime: now,
	}
	return sessionID, nil
}

func (s *SessionStorage) GetSessionIDForTelegramUser(telegramID int64) (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessionID, ok := s.telegramSessions[telegramID]
	if !ok {
		return uuid.Nil, model.ErrTelegramSessionDoesNotExist
	}
	return sessionID, nil
}

func (s *SessionStorage) GetSession(sessionID uuid.UUID) (model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return model.Session{}, model.ErrSessionDoesNotExist
	}
	return *session, nil
}

func (s *SessionStorage) UpdateSessionCredential(sessionID uuid.UUID, credential model.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return model.ErrSessionDoesNotExist
	}
	session.Credential = credential
	return nil
}

func (s *SessionStorage) TouchSession(sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return model.ErrSessionDoesNotExist
	}
	session.LastActiveTime = s.now()
	return nil
}

// DeleteSession ends the session. The telegram chat gets a fresh session on its
// next message.
func (s *SessionStorage) DeleteSession(sessionID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return model.ErrSessionDoesNotExist
	}
	if s.telegramSessions[session.TelegramID] == sessionID {
		delete(s.telegramSessions, session.TelegramID)
	}
	delete(s.sessions, sessionID)
	return nil
}
