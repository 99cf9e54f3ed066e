package core

import (
	"context"

	"github.com/dkeye/Huddle/internal/domain"
)

// MeetingBridge is the boundary to the meeting scheduling service.
// Lookup returns (nil, nil) when the room id is not linked to any meeting.
type MeetingBridge interface {
	Lookup(ctx context.Context, roomID domain.RoomID) (*domain.MeetingSnapshot, error)
	SetStatus(ctx context.Context, id domain.MeetingID, status domain.MeetingStatus) error
}
