package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps everything in process memory. It backs tests and
// local runs with STORE_DRIVER=memory.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[string]*User
	byUsername  map[string]string
	transcripts map[string][]Exchange
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]*User),
		byUsername:  make(map[string]string),
		transcripts: make(map[string][]Exchange),
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[username]; exists {
		return nil, ErrDuplicateUsername
	}

	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[user.ID] = user
	s.byUsername[username] = user.ID

	copied := *user
	return &copied, nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[username]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s.users[id]
	return &copied, nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *MemoryStore) AppendExchange(ctx context.Context, userID string, ex Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ex.Timestamp.IsZero() {
		ex.Timestamp = time.Now().UTC()
	}
	s.transcripts[userID] = append(s.transcripts[userID], ex)
	return nil
}

func (s *MemoryStore) GetTranscript(ctx context.Context, userID string) (*Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages, ok := s.transcripts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &Transcript{
		UserID:   userID,
		Messages: append([]Exchange(nil), messages...),
	}, nil
}

func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
