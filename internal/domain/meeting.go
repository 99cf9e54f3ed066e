package domain

type MeetingID string

type MeetingStatus string

const (
	MeetingScheduled MeetingStatus = "scheduled"
	MeetingLive      MeetingStatus = "live"
	MeetingEnded     MeetingStatus = "ended"
)

// MeetingSnapshot is what the meeting bridge knows about a room id.
// It is consulted once, when the room is created.
type MeetingSnapshot struct {
	ID       MeetingID     `json:"id"`
	RoomID   RoomID        `json:"roomId"`
	Name     string        `json:"name"`
	Kind     RoomKind      `json:"kind"`
	HostID   UserID        `json:"hostId"`
	Settings RoomSettings  `json:"settings"`
	Status   MeetingStatus `json:"status"`
}
