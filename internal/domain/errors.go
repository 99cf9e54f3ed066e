package domain

import (
	"errors"
	"net/http"
)

// ErrorKind groups failures by how callers react to them.
type ErrorKind string

const (
	KindValidation    ErrorKind = "validation"
	KindCapacity      ErrorKind = "capacity"
	KindAuthorization ErrorKind = "authorization"
	KindModeration    ErrorKind = "moderation"
	KindNotFound      ErrorKind = "not_found"
	KindConflict      ErrorKind = "conflict"
	KindRateLimit     ErrorKind = "rate_limit"
	KindInternal      ErrorKind = "internal"
)

// Error is a domain failure. Reason is the short machine-readable code sent to clients.
type Error struct {
	Kind   ErrorKind
	Reason string
	Msg    string
}

func newError(kind ErrorKind, reason, msg string) *Error {
	return &Error{Kind: kind, Reason: reason, Msg: msg}
}

func (e *Error) Error() string { return e.Msg }

// Is matches any *Error with the same kind and reason, so ad-hoc
// validation errors still compare equal to ErrValidation.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Reason == t.Reason
}

var (
	ErrValidation = newError(KindValidation, "validation", "invalid payload")

	ErrRoomFull = newError(KindCapacity, "capacity", "room is full")

	ErrBadPassword         = newError(KindAuthorization, "password", "incorrect room password")
	ErrNotInRoom           = newError(KindAuthorization, "not_in_room", "connection has not joined this room")
	ErrNotHost             = newError(KindAuthorization, "not_host", "only the host can do that")
	ErrForbidden           = newError(KindAuthorization, "forbidden", "insufficient permissions")
	ErrChatDisabled        = newError(KindAuthorization, "chat_disabled", "chat is disabled in this room")
	ErrReactionsDisabled   = newError(KindAuthorization, "reactions_disabled", "reactions are disabled in this room")
	ErrRecordingDisabled   = newError(KindAuthorization, "recording_disabled", "recording is disabled in this room")
	ErrCoHostsDisabled     = newError(KindAuthorization, "cohosts_disabled", "co-hosts are disabled in this room")
	ErrScreenShareDisabled = newError(KindAuthorization, "screen_share_disabled", "screen sharing is not permitted")

	ErrBlocked   = newError(KindModeration, "blocked", "participant is blocked")
	ErrSuspended = newError(KindModeration, "suspended", "participant is suspended")

	ErrRoomNotFound        = newError(KindNotFound, "room_not_found", "room not found")
	ErrParticipantNotFound = newError(KindNotFound, "participant_not_found", "participant not found")
	ErrPollNotFound        = newError(KindNotFound, "poll_not_found", "poll not found")
	ErrMeetingNotFound     = newError(KindNotFound, "meeting_not_found", "meeting not found")
	ErrConnNotFound        = newError(KindNotFound, "connection_not_found", "connection not registered")

	ErrAlreadyJoined     = newError(KindConflict, "already_joined", "participant already in room")
	ErrPollActive        = newError(KindConflict, "poll_active", "a poll is already open")
	ErrPollClosed        = newError(KindConflict, "poll_closed", "poll is closed")
	ErrInvalidTransition = newError(KindConflict, "invalid_transition", "invalid state transition")
	ErrRoomLinked        = newError(KindConflict, "room_linked", "room is linked to another meeting")

	ErrRateLimited = newError(KindRateLimit, "rate_limited", "too many messages")

	ErrInternal = newError(KindInternal, "internal", "internal error")
)

// Validation builds a validation error carrying a specific message.
func Validation(msg string) error {
	return newError(KindValidation, "validation", msg)
}

func asError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func KindOf(err error) ErrorKind {
	if de, ok := asError(err); ok {
		return de.Kind
	}
	return KindInternal
}

// ReasonOf returns the client-facing reason code; unknown errors become "error".
func ReasonOf(err error) string {
	if err == nil {
		return ""
	}
	if de, ok := asError(err); ok {
		return de.Reason
	}
	return "error"
}

// JoinRejectReason narrows any join failure to blocked|suspended|capacity|password|error.
func JoinRejectReason(err error) string {
	switch {
	case errors.Is(err, ErrBlocked):
		return "blocked"
	case errors.Is(err, ErrSuspended):
		return "suspended"
	case errors.Is(err, ErrRoomFull):
		return "capacity"
	case errors.Is(err, ErrBadPassword):
		return "password"
	}
	return "error"
}

func HTTPStatusOf(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindCapacity, KindConflict:
		return http.StatusConflict
	case KindAuthorization, KindModeration:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindRateLimit:
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}
