// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"strings"
)

const (
	MaxUsernameLen  = 36
	MaxRoomNameLen  = 64
	MaxTokenLen     = 128
	MaxMessageIDLen = 128
)

var (
	ErrUsernameTooLong  = errors.New("username too long")
	ErrUsernameEmpty    = errors.New("username empty")
	ErrRoomNameTooLong  = errors.New("room name too long")
	ErrTokenTooLong     = errors.New("room token too long")
	ErrMessageIDTooLong = errors.New("message id too long")
	ErrMissingFields    = errors.New("all fields are required")
)

// ValidateUsername trims surrounding whitespace and checks the length limits.
func ValidateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if len(username) == 0 {
		return "", ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return "", ErrUsernameTooLong
	}
	return username, nil
}
