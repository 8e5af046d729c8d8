package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3" // SQLite driver
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers, which keeps the
	// history upsert and message insert of AppendExchange atomic.
	db.SetMaxOpenConns(1)

	if err = db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY, -- UUID
        username TEXT UNIQUE NOT NULL,
        password_hash TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS chat_histories (
        user_id TEXT PRIMARY KEY,
        created_at DATETIME NOT NULL
    );

    CREATE TABLE IF NOT EXISTS chat_messages (
        seq INTEGER PRIMARY KEY AUTOINCREMENT, -- arrival order
        user_id TEXT NOT NULL,
        user_text TEXT NOT NULL,
        bot_text TEXT NOT NULL,
        timestamp DATETIME NOT NULL,
        FOREIGN KEY (user_id) REFERENCES chat_histories (user_id)
    );

    CREATE INDEX IF NOT EXISTS idx_chat_messages_user ON chat_messages (user_id, seq);
    `
	_, err := s.db.Exec(schema)
	return err
}

// User methods
func (s *SQLiteStore) CreateUser(ctx context.Context, username, passwordHash string) (*User, error) {
	user := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, username, password_hash, created_at) VALUES (?, ?, ?, ?)",
		user.ID, user.Username, user.PasswordHash, user.CreatedAt)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	return user, nil
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*User, error) {
	return s.queryUser(ctx, "SELECT id, username, password_hash, created_at FROM users WHERE username = ?", username)
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*User, error) {
	return s.queryUser(ctx, "SELECT id, username, password_hash, created_at FROM users WHERE id = ?", id)
}

func (s *SQLiteStore) queryUser(ctx context.Context, query string, arg string) (*User, error) {
	var user User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

// Chat methods
func (s *SQLiteStore) AppendExchange(ctx context.Context, userID string, ex Exchange) error {
	if ex.Timestamp.IsZero() {
		ex.Timestamp = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin append: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO chat_histories (user_id, created_at) VALUES (?, ?) ON CONFLICT(user_id) DO NOTHING",
		userID, ex.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to upsert chat history: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO chat_messages (user_id, user_text, bot_text, timestamp) VALUES (?, ?, ?, ?)",
		userID, ex.User, ex.Bot, ex.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit append: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTranscript(ctx context.Context, userID string) (*Transcript, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM chat_histories WHERE user_id = ?", userID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT user_text, bot_text, timestamp FROM chat_messages WHERE user_id = ? ORDER BY seq ASC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	transcript := &Transcript{UserID: userID, Messages: []Exchange{}}
	for rows.Next() {
		var ex Exchange
		if err := rows.Scan(&ex.User, &ex.Bot, &ex.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		transcript.Messages = append(transcript.Messages, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}
	return transcript, nil
}
