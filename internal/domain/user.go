// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const MaxUsernameLen = 36

var (
	ErrUsernameEmpty   = errors.New("username empty")
	ErrUsernameTooLong = errors.New("username too long")
	ErrUserIDEmpty     = errors.New("user id empty")
)

type UserID string

// User is the identity resolved from a verified credential.
// Immutable for the lifetime of a connection.
type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(id UserID, username string) (*User, error) {
	if id == "" {
		return nil, ErrUserIDEmpty
	}
	if len(username) == 0 {
		return nil, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	return &User{ID: id, Username: username}, nil
}
