package usecase

import (
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/iamvkosarev/cricket-guru-bot/internal/model"
	"log/slog"
	"sync"
	"time"
)

type SessionStorage interface {
	CreateNewTelegramSession(telegramID int64, languageCode string) (uuid.UUID, error)
	GetSessionIDForTelegramUser(telegramID int64) (uuid.UUID, error)
	GetSession(sessionID uuid.UUID) (model.Session, error)
	UpdateSessionCredential(sessionID uuid.UUID, credential model.Credential) error
	TouchSession(sessionID uuid.UUID) error
	DeleteSession(sessionID uuid.UUID) error
}

// ChatFactory builds the chat controller of a new session, each with its own
// conversation storage.
type ChatFactory func(session model.Session) *ChatUsecase

type SessionUsecaseDeps struct {
	SessionStorage SessionStorage
	NewChat        ChatFactory
	Logger         *slog.Logger
}

type SessionUsecase struct {
	SessionUsecaseDeps
	idleTimeout time.Duration
	mu          sync.Mutex
	chats       map[uuid.UUID]*ChatUsecase
	now         func() time.Time
}

// NewSessionUsecase ends sessions idle for longer than idleTimeout; zero keeps
// them for the process lifetime.
func NewSessionUsecase(deps SessionUsecaseDeps, idleTimeout time.Duration) *SessionUsecase {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &SessionUsecase{
		SessionUsecaseDeps: deps,
		idleTimeout:        idleTimeout,
		chats:              make(map[uuid.UUID]*ChatUsecase),
		now:                time.Now,
	}
}

// GetSessionForTelegramUser returns the live session of a telegram chat, creating
// one when there is none. expired reports that an idle session was just ended
// to make room for the returned one.
func (s *SessionUsecase) GetSessionForTelegramUser(
	telegramID int64,
	languageCode string,
) (session model.Session, expired bool, err error) {
	sessionID, err := s.SessionStorage.GetSessionIDForTelegramUser(telegramID)
	switch {
	case errors.Is(err, model.ErrTelegramSessionDoesNotExist):
		session, err = s.createTelegramSession(telegramID, languageCode)
		return session, false, err
	case err != nil:
		return model.Session{}, false, fmt.Errorf("failed to get telegram session: %w", err)
	}

	session, err = s.SessionStorage.GetSession(sessionID)
	if err != nil {
		return model.Session{}, false, fmt.Errorf("failed to get session %s: %w", sessionID, err)
	}

	if s.idleTimeout > 0 && session.LastActiveTime.Add(s.idleTimeout).Before(s.now()) {
		s.Logger.Info("session expired", "session_id", sessionID, "idle", s.now().Sub(session.LastActiveTime))
		if err = s.EndSession(sessionID); err != nil {
			return model.Session{}, false, fmt.Errorf("failed to end expired session: %w", err)
		}
		session, err = s.createTelegramSession(telegramID, languageCode)
		return session, true, err
	}

	if err = s.SessionStorage.TouchSession(sessionID); err != nil {
		return model.Session{}, false, fmt.Errorf("failed to touch session %s: %w", sessionID, err)
	}
	return session, false, nil
}

func (s *SessionUsecase) UpdateSessionCredential(sessionID uuid.UUID, credential model.Credential) error {
	return s.SessionStorage.UpdateSessionCredential(sessionID, credential)
}

// Chat returns the controller of the session, building it on first use.
func (s *SessionUsecase) Chat(session model.Session) *ChatUsecase {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat, ok := s.chats[session.SessionID]
	if !ok {
		chat = s.NewChat(session)
		s.chats[session.SessionID] = chat
	}
	return chat
}

// EndSession drops the session together with its conversation.
func (s *SessionUsecase) EndSession(sessionID uuid.UUID) error {
	s.mu.Lock()
	delete(s.chats, sessionID)
	s.mu.Unlock()

	if err := s.SessionStorage.DeleteSession(sessionID); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	return nil
}

func (s *SessionUsecase) createTelegramSession(telegramID int64, languageCode string) (model.Session, error) {
	sessionID, err := s.SessionStorage.CreateNewTelegramSession(telegramID, languageCode)
	if err != nil {
		return model.Session{}, fmt.Errorf("failed to create telegram session: %w", err)
	}
	s.Logger.Info("session started", "session_id", sessionID)
	return s.SessionStorage.GetSession(sessionID)
}
