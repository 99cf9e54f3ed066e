package domain

import "time"

type RoomID string

type RoomKind string

const (
	RoomStandard RoomKind = "standard"
	RoomWebinar  RoomKind = "webinar"
)

func (k RoomKind) Valid() bool {
	return k == RoomStandard || k == RoomWebinar
}

type RecordingStatus string

const (
	RecordingStopped RecordingStatus = "stopped"
	RecordingActive  RecordingStatus = "recording"
	RecordingPaused  RecordingStatus = "paused"
)

type RecordingAction string

const (
	RecordingStart  RecordingAction = "start"
	RecordingPause  RecordingAction = "pause"
	RecordingResume RecordingAction = "resume"
	RecordingStop   RecordingAction = "stop"
)

// RoomSettings are fixed when the room is created.
// MaxParticipants <= 0 means no limit.
type RoomSettings struct {
	Password         string `json:"-"`
	MaxParticipants  int    `json:"maxParticipants"`
	AllowScreenShare bool   `json:"allowScreenShare"`
	AllowChat        bool   `json:"allowChat"`
	AllowReactions   bool   `json:"allowReactions"`
	AllowRecording   bool   `json:"allowRecording"`
	MuteOnEntry      bool   `json:"muteOnEntry"`
	WaitingRoom      bool   `json:"waitingRoom"`
	AllowCoHosts     bool   `json:"allowCoHosts"`
}

func DefaultSettings(maxParticipants int) RoomSettings {
	return RoomSettings{
		MaxParticipants:  maxParticipants,
		AllowScreenShare: true,
		AllowChat:        true,
		AllowReactions:   true,
		AllowRecording:   true,
		AllowCoHosts:     true,
	}
}

type Room struct {
	ID        RoomID
	Name      string
	Kind      RoomKind
	HostID    UserID
	Settings  RoomSettings
	Recording RecordingStatus
	MeetingID MeetingID
	CreatedAt time.Time
}

// RoomView is the client-facing projection of a room. The password never leaves the process.
type RoomView struct {
	ID               RoomID          `json:"id"`
	Name             string          `json:"name"`
	Kind             RoomKind        `json:"kind"`
	HostID           UserID          `json:"hostId"`
	Settings         RoomSettings    `json:"settings"`
	HasPassword      bool            `json:"hasPassword"`
	Recording        RecordingStatus `json:"recordingStatus"`
	MeetingID        MeetingID       `json:"meetingId,omitempty"`
	ParticipantCount int             `json:"participantCount"`
	CreatedAt        time.Time       `json:"createdAt"`
}

type RoomInfo struct {
	ID               RoomID   `json:"id"`
	Name             string   `json:"name"`
	Kind             RoomKind `json:"kind"`
	HostID           UserID   `json:"hostId"`
	ParticipantCount int      `json:"participantCount"`
}
