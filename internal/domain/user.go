package domain

import "time"

// User represents a registered account.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Tokens       []UserToken
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserToken is one entry of a user's credential list. A user may hold several
// concurrent tokens with the same scope (one per active session).
type UserToken struct {
	Scope string
	Token string
}
