package domain

import "time"

// ModerationEntry holds both moderation axes for one participant id.
// A zero SuspendedUntil means no suspension.
type ModerationEntry struct {
	UserID         UserID    `json:"userId"`
	Blocked        bool      `json:"blocked"`
	BlockReason    string    `json:"blockReason,omitempty"`
	BlockedAt      time.Time `json:"blockedAt,omitempty"`
	SuspendedUntil time.Time `json:"suspendedUntil,omitempty"`
	SuspendReason  string    `json:"suspendReason,omitempty"`
}

func (e ModerationEntry) SuspendedAt(now time.Time) bool {
	return !e.SuspendedUntil.IsZero() && now.Before(e.SuspendedUntil)
}
