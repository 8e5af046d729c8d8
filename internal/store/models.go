package store

import "time"

type User struct {
	ID           string    `json:"id" bson:"-"`
	Username     string    `json:"username" bson:"username"`
	PasswordHash string    `json:"-" bson:"password"` // bcrypt hash, never plain text
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// Exchange is one user message paired with the bot's reply.
type Exchange struct {
	User      string    `json:"user" bson:"user"`
	Bot       string    `json:"bot" bson:"bot"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// Transcript is the ordered exchange history of one user.
type Transcript struct {
	UserID   string     `json:"user_id" bson:"user_id"`
	Messages []Exchange `json:"messages" bson:"messages"`
}
