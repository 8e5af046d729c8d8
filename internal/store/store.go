// Package store persists users and their chat transcripts.
//
// Two logical collections exist: users and chat histories. A transcript is
// created lazily by the first AppendExchange for a user and only ever grows.
// Every driver must make AppendExchange atomic per user so concurrent
// messages from the same user never overwrite each other.
package store

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates the requested user or transcript does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateUsername indicates a user with the same username exists.
	ErrDuplicateUsername = errors.New("username already taken")
)

type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
}

type ChatStore interface {
	// AppendExchange adds ex to the end of the user's transcript, creating
	// the transcript when it does not exist yet.
	AppendExchange(ctx context.Context, userID string, ex Exchange) error

	// GetTranscript returns ErrNotFound when the user never chatted.
	GetTranscript(ctx context.Context, userID string) (*Transcript, error)
}

type Store interface {
	UserStore
	ChatStore
	Close(ctx context.Context) error
}
