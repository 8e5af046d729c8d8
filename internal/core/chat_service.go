package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/campuscare/wellbeing-chat/internal/auth"
	"github.com/campuscare/wellbeing-chat/internal/logger"
	"github.com/campuscare/wellbeing-chat/internal/store"
)

// Responder produces the bot reply for a new message given the rendered
// conversation context.
type Responder interface {
	Compose(ctx context.Context, conversation, issue string) (string, error)
}

type ChatService struct {
	store         store.Store
	responder     Responder
	historyWindow int
	log           *logger.Logger
}

func NewChatService(s store.Store, responder Responder, historyWindow int, log *logger.Logger) *ChatService {
	if log == nil {
		log = logger.Discard()
	}
	return &ChatService{
		store:         s,
		responder:     responder,
		historyWindow: historyWindow,
		log:           log,
	}
}

// Register creates a user with a hashed password.
func (s *ChatService) Register(ctx context.Context, username, password string) (*store.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, &ValidationError{Detail: "Username and password are required"}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			return nil, &ValidationError{Detail: "Password must be at most 72 bytes"}
		}
		return nil, fmt.Errorf("failed to process password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, username, hash)
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log.Info("User registered", logrus.Fields{"user_id": user.ID})
	return user, nil
}

// Login verifies credentials. Unknown users and wrong passwords are
// indistinguishable to the caller.
func (s *ChatService) Login(ctx context.Context, username, password string) (*store.User, error) {
	user, err := s.store.GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if !auth.CheckPasswordHash(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *ChatService) CurrentUser(ctx context.Context, userID string) (*store.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// PostMessage runs one chat turn: render recent history, compose the
// reply and append the exchange. Nothing is stored when composition fails.
func (s *ChatService) PostMessage(ctx context.Context, userID, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", &ValidationError{Detail: "Message text cannot be empty"}
	}

	var history []store.Exchange
	transcript, err := s.store.GetTranscript(ctx, userID)
	switch {
	case err == nil:
		history = transcript.Messages
	case errors.Is(err, store.ErrNotFound):
		// first message, transcript is created by the append below
	default:
		s.log.Error("Failed to load chat history", logrus.Fields{"user_id": userID, "error": err.Error()})
		return "", fmt.Errorf("%w: load history: %w", ErrProcessing, err)
	}

	conversation := RenderContext(history, s.historyWindow, text)

	start := time.Now()
	reply, err := s.responder.Compose(ctx, conversation, text)
	if err != nil {
		s.log.Error("Error in chatbot response", logrus.Fields{"user_id": userID, "error": err.Error()})
		if errors.Is(err, ErrProcessing) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrProcessing, err)
	}

	exchange := store.Exchange{User: text, Bot: reply, Timestamp: time.Now().UTC()}
	if err := s.store.AppendExchange(ctx, userID, exchange); err != nil {
		s.log.Error("Failed to store exchange", logrus.Fields{"user_id": userID, "error": err.Error()})
		return "", fmt.Errorf("%w: store exchange: %w", ErrProcessing, err)
	}

	s.log.Info("Chat turn completed", logrus.Fields{
		"user_id":     userID,
		"history":     len(history),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return reply, nil
}

// History returns the user's transcript, or ErrNotFound before their first
// message.
func (s *ChatService) History(ctx context.Context, userID string) (*store.Transcript, error) {
	transcript, err := s.store.GetTranscript(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get chat history: %w", err)
	}
	return transcript, nil
}
