// Package domain contains entity without logic, just meta-data
package domain

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxUserIDLen   = 64
	MaxUsernameLen = 64
)

var (
	ErrUsernameTooLong = newError(KindValidation, "validation", "username too long")
	ErrUsernameEmpty   = newError(KindValidation, "validation", "username empty")
)

type (
	UserID string
	ConnID string
)

// NormalizeUsername trims the display name and enforces its bounds. A
// non-positive maxLen falls back to MaxUsernameLen.
func NormalizeUsername(username string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = MaxUsernameLen
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return "", ErrUsernameEmpty
	}
	if utf8.RuneCountInString(username) > maxLen {
		return "", ErrUsernameTooLong
	}
	return username, nil
}
